package ports

import (
	"context"

	"github.com/hucha-app/hucha/internal/core/domain"
)

// SnapshotRepository is the server-side persistence port: one full snapshot
// document per deployment, loaded and replaced wholesale. Implementations
// exist for PostgreSQL, SQLite and a flat JSON file.
type SnapshotRepository interface {
	// Load returns the persisted snapshot. A fresh store returns an empty
	// snapshot, not apperrors.ErrNotFound.
	Load(ctx context.Context) (*domain.Snapshot, error)

	// Save replaces the persisted snapshot atomically.
	Save(ctx context.Context, snapshot domain.Snapshot) error
}
