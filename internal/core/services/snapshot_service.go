package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hucha-app/hucha/internal/core/domain"
	"github.com/hucha-app/hucha/internal/core/ports"
	"github.com/hucha-app/hucha/internal/middleware"
)

// SnapshotService is the server-side counterpart of the sync protocol: it
// loads and replaces the one persisted snapshot document behind the
// configured repository backend.
type SnapshotService struct {
	repo ports.SnapshotRepository
}

// NewSnapshotService creates a snapshot service over the given repository.
func NewSnapshotService(repo ports.SnapshotRepository) *SnapshotService {
	return &SnapshotService{repo: repo}
}

// GetData returns the persisted snapshot; an empty store yields an empty
// snapshot, never an error.
func (s *SnapshotService) GetData(ctx context.Context) (*domain.Snapshot, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to load snapshot", slog.String("error", err.Error()))
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

// SaveData replaces the persisted snapshot wholesale. Every push overwrites
// the previous document; the last full write wins.
func (s *SnapshotService) SaveData(ctx context.Context, snap domain.Snapshot) error {
	if err := s.repo.Save(ctx, snap); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to save snapshot", slog.String("error", err.Error()))
		return fmt.Errorf("save snapshot: %w", err)
	}
	middleware.GetLoggerFromCtx(ctx).Info("Snapshot saved",
		slog.Int("transactions", len(snap.Transactions)),
		slog.Int("categories", len(snap.Categories)),
		slog.Int("tags", len(snap.Tags)),
		slog.Int("todos", len(snap.Todos)),
	)
	return nil
}
