package flatfile

import (
	"context"

	"github.com/hucha-app/hucha/internal/core/domain"
	"github.com/hucha-app/hucha/internal/core/ports"
	"github.com/hucha-app/hucha/internal/repositories/file"
)

// Transport syncs against a local JSON file instead of a remote server. It is
// what the CLI uses when no server is configured and is also handy in tests.
type Transport struct {
	repo *file.FileSnapshotRepository
}

var _ ports.SyncTransport = (*Transport)(nil)

// New builds a transport backed by the given file path.
func New(path string) (*Transport, error) {
	repo, err := file.NewSnapshotRepository(path)
	if err != nil {
		return nil, err
	}
	return &Transport{repo: repo}, nil
}

func (t *Transport) Pull(ctx context.Context) (*domain.Snapshot, error) {
	return t.repo.Load(ctx)
}

func (t *Transport) Push(ctx context.Context, snap domain.Snapshot) error {
	return t.repo.Save(ctx, snap)
}
