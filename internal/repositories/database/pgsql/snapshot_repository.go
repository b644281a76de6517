package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hucha-app/hucha/internal/core/domain"
	"github.com/hucha-app/hucha/internal/core/ports"
)

// PgxSnapshotRepository persists the snapshot in normalized tables. Save
// replaces every row inside one transaction so a concurrent pull never sees
// a half-written document; Load reassembles the collections in their stored
// order.
type PgxSnapshotRepository struct {
	Pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new repository for the snapshot document.
func NewSnapshotRepository(pool *pgxpool.Pool) *PgxSnapshotRepository {
	return &PgxSnapshotRepository{Pool: pool}
}

// Ensure implementation matches interface
var _ ports.SnapshotRepository = (*PgxSnapshotRepository)(nil)

// Load reads the whole snapshot. A fresh database yields an empty snapshot.
func (r *PgxSnapshotRepository) Load(ctx context.Context) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{
		Transactions: []domain.Transaction{},
		Categories:   []domain.Category{},
		Tags:         []domain.Tag{},
		Settings:     domain.DefaultSettings(),
		Todos:        []domain.Todo{},
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT transaction_id, date, amount, description, category_id, tag_ids, is_pinned
		FROM transactions ORDER BY position;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.Date, &t.Amount, &t.Description, &t.CategoryID, &t.TagIDs, &t.IsPinned); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if t.TagIDs == nil {
			t.TagIDs = []string{}
		}
		snap.Transactions = append(snap.Transactions, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	rows, err = r.Pool.Query(ctx, `
		SELECT category_id, code, name, color, icon, is_fixed, debt, show_in_expense, show_in_income
		FROM categories ORDER BY position;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Color, &c.Icon, &c.IsFixed, &c.Debt, &c.ShowInExpense, &c.ShowInIncome); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		snap.Categories = append(snap.Categories, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}

	rows, err = r.Pool.Query(ctx, `SELECT tag_id, code, name, color FROM tags ORDER BY position;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Code, &t.Name, &t.Color); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		snap.Tags = append(snap.Tags, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	rows, err = r.Pool.Query(ctx, `SELECT todo_id, text, done, created_at FROM todos ORDER BY position;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	for rows.Next() {
		var t domain.Todo
		if err := rows.Scan(&t.ID, &t.Text, &t.Done, &t.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		snap.Todos = append(snap.Todos, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read todos: %w", err)
	}

	err = r.Pool.QueryRow(ctx, `SELECT initial_balance, dark_mode FROM settings WHERE id = 1;`).
		Scan(&snap.Settings.InitialBalance, &snap.Settings.DarkMode)
	if err != nil && err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	return snap, nil
}

// Save replaces the persisted snapshot atomically.
func (r *PgxSnapshotRepository) Save(ctx context.Context, snap domain.Snapshot) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot save: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"transactions", "categories", "tags", "todos"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table+";"); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, t := range snap.Transactions {
		_, err := tx.Exec(ctx, `
			INSERT INTO transactions (transaction_id, date, amount, description, category_id, tag_ids, is_pinned, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
		`, t.ID, t.Date, t.Amount, t.Description, t.CategoryID, t.TagIDs, t.IsPinned, i)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", t.ID, err)
		}
	}

	for i, c := range snap.Categories {
		_, err := tx.Exec(ctx, `
			INSERT INTO categories (category_id, code, name, color, icon, is_fixed, debt, show_in_expense, show_in_income, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
		`, c.ID, c.Code, c.Name, c.Color, c.Icon, c.IsFixed, c.Debt, c.ShowInExpense, c.ShowInIncome, i)
		if err != nil {
			return fmt.Errorf("failed to insert category %s: %w", c.ID, err)
		}
	}

	for i, t := range snap.Tags {
		_, err := tx.Exec(ctx, `
			INSERT INTO tags (tag_id, code, name, color, position) VALUES ($1, $2, $3, $4, $5);
		`, t.ID, t.Code, t.Name, t.Color, i)
		if err != nil {
			return fmt.Errorf("failed to insert tag %s: %w", t.ID, err)
		}
	}

	for i, t := range snap.Todos {
		_, err := tx.Exec(ctx, `
			INSERT INTO todos (todo_id, text, done, created_at, position) VALUES ($1, $2, $3, $4, $5);
		`, t.ID, t.Text, t.Done, t.CreatedAt, i)
		if err != nil {
			return fmt.Errorf("failed to insert todo %s: %w", t.ID, err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO settings (id, initial_balance, dark_mode) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET
			initial_balance = EXCLUDED.initial_balance,
			dark_mode = EXCLUDED.dark_mode;
	`, snap.Settings.InitialBalance, snap.Settings.DarkMode)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot save: %w", err)
	}
	return nil
}
