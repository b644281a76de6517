package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/hucha-app/hucha/internal/core/domain"
	"github.com/hucha-app/hucha/internal/core/ports"
)

// SqliteSnapshotRepository stores the snapshot as a single JSON document in
// one row. The snapshot is always read and written whole, so there is nothing
// to gain from normalizing it here; the embedded driver keeps the server
// dependency-free for small installs.
type SqliteSnapshotRepository struct {
	db *sql.DB
}

var _ ports.SnapshotRepository = (*SqliteSnapshotRepository)(nil)

// NewSnapshotRepository opens (and if needed creates) the database file and
// prepares the document table.
func NewSnapshotRepository(path string) (*SqliteSnapshotRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// The driver is embedded and single-writer; one connection avoids
	// SQLITE_BUSY on concurrent saves.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshot (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			document TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot table: %w", err)
	}
	return &SqliteSnapshotRepository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *SqliteSnapshotRepository) Close() error {
	return r.db.Close()
}

// Load reads the stored document. A missing row yields an empty snapshot.
func (r *SqliteSnapshotRepository) Load(ctx context.Context) (*domain.Snapshot, error) {
	var document string
	err := r.db.QueryRowContext(ctx, `SELECT document FROM snapshot WHERE id = 1;`).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.Snapshot{
			Transactions: []domain.Transaction{},
			Categories:   []domain.Category{},
			Tags:         []domain.Tag{},
			Settings:     domain.DefaultSettings(),
			Todos:        []domain.Todo{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot document: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(document), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot document: %w", err)
	}
	return &snap, nil
}

// Save replaces the stored document.
func (r *SqliteSnapshotRepository) Save(ctx context.Context, snap domain.Snapshot) error {
	document, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot document: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO snapshot (id, document) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET document = excluded.document;
	`, string(document))
	if err != nil {
		return fmt.Errorf("failed to write snapshot document: %w", err)
	}
	return nil
}
