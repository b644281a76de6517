package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hucha-app/hucha/internal/core/domain"
	"github.com/hucha-app/hucha/internal/repositories/file"
)

func TestFileRepository_LoadMissingFileYieldsEmptySnapshot(t *testing.T) {
	repo, err := file.NewSnapshotRepository(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)

	snap, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Transactions)
	assert.Empty(t, snap.Categories)
	assert.Empty(t, snap.Tags)
	assert.Empty(t, snap.Todos)
}

func TestFileRepository_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "db.json")
	repo, err := file.NewSnapshotRepository(path)
	require.NoError(t, err)

	saved := domain.Snapshot{
		Transactions: []domain.Transaction{{ID: "t1", Date: "2024-01-01", Amount: decimal.RequireFromString("-3.33"), CategoryID: "c1", TagIDs: []string{"g1"}, IsPinned: true}},
		Categories:   []domain.Category{{ID: "c1", Code: "TERR", Name: "Terreno", Debt: decimal.NewFromInt(20), IsFixed: true}},
		Tags:         []domain.Tag{{ID: "g1", Code: "IMP", Name: "Impuestos"}},
		Settings:     domain.Settings{InitialBalance: decimal.NewFromInt(750), DarkMode: true},
		Todos:        []domain.Todo{},
	}
	require.NoError(t, repo.Save(ctx, saved))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, "t1", got.Transactions[0].ID)
	assert.True(t, got.Transactions[0].IsPinned)
	assert.True(t, got.Categories[0].Debt.Equal(decimal.NewFromInt(20)))
	assert.True(t, got.Categories[0].IsFixed)
	assert.True(t, got.Settings.DarkMode)
}

func TestFileRepository_SaveLeavesNoTempFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := file.NewSnapshotRepository(filepath.Join(dir, "db.json"))
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, domain.Snapshot{Settings: domain.DefaultSettings()}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "db.json", entries[0].Name())
}

func TestFileRepository_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o644))

	repo, err := file.NewSnapshotRepository(path)
	require.NoError(t, err)

	_, err = repo.Load(context.Background())
	require.Error(t, err)
}
