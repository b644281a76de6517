package dto

import "github.com/hucha-app/hucha/internal/core/domain"

// SnapshotPayload is the full-document wire format exchanged on every pull
// and push. Settings is a pointer so a fresh remote (no settings written
// yet) is distinguishable from explicit defaults.
type SnapshotPayload struct {
	Transactions []domain.Transaction `json:"transactions"`
	Categories   []domain.Category    `json:"categories"`
	Tags         []domain.Tag         `json:"tags"`
	Settings     *domain.Settings     `json:"settings,omitempty"`
	Todos        []domain.Todo        `json:"todos"`
}

// ToSnapshotPayload converts a domain snapshot to its wire form.
func ToSnapshotPayload(s domain.Snapshot) SnapshotPayload {
	settings := s.Settings
	return SnapshotPayload{
		Transactions: s.Transactions,
		Categories:   s.Categories,
		Tags:         s.Tags,
		Settings:     &settings,
		Todos:        s.Todos,
	}
}

// ToDomain converts the wire form back to a domain snapshot, normalizing
// nil collections to empty ones and absent settings to defaults.
func (p SnapshotPayload) ToDomain() domain.Snapshot {
	snap := domain.Snapshot{
		Transactions: p.Transactions,
		Categories:   p.Categories,
		Tags:         p.Tags,
		Settings:     domain.DefaultSettings(),
		Todos:        p.Todos,
	}
	if p.Settings != nil {
		snap.Settings = *p.Settings
	}
	if snap.Transactions == nil {
		snap.Transactions = []domain.Transaction{}
	}
	if snap.Categories == nil {
		snap.Categories = []domain.Category{}
	}
	if snap.Tags == nil {
		snap.Tags = []domain.Tag{}
	}
	if snap.Todos == nil {
		snap.Todos = []domain.Todo{}
	}
	return snap
}
