package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/hucha-app/hucha/internal/core/domain"
	"github.com/hucha-app/hucha/internal/core/ports"
)

// FileSnapshotRepository keeps the snapshot in a single JSON file. Writes go
// through a temp file plus rename so a crash mid-save leaves the previous
// document intact.
type FileSnapshotRepository struct {
	mu   sync.Mutex
	path string
}

var _ ports.SnapshotRepository = (*FileSnapshotRepository)(nil)

// NewSnapshotRepository creates the parent directory if needed.
func NewSnapshotRepository(path string) (*FileSnapshotRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	return &FileSnapshotRepository{path: path}, nil
}

// Load reads the stored document. A missing file yields an empty snapshot.
func (r *FileSnapshotRepository) Load(ctx context.Context) (*domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &domain.Snapshot{
			Transactions: []domain.Transaction{},
			Categories:   []domain.Category{},
			Tags:         []domain.Tag{},
			Settings:     domain.DefaultSettings(),
			Todos:        []domain.Todo{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot file: %w", err)
	}
	return &snap, nil
}

// Save replaces the stored document atomically.
func (r *FileSnapshotRepository) Save(ctx context.Context, snap domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}
	return nil
}
