package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hucha-app/hucha/internal/apperrors"
	"github.com/hucha-app/hucha/internal/core/domain"
	"github.com/hucha-app/hucha/internal/core/store"
	"github.com/hucha-app/hucha/internal/middleware"
)

// dateLayout is the calendar-date shape transactions carry on the wire.
const dateLayout = "2006-01-02"

// MutationService is the mutation engine: it applies one logical operation
// to the record store, enforcing the debt side effect and input validation,
// and reports which collections were touched so the sync layer knows what is
// dirty. All transforms are pure in-memory; the caller serializes access.
type MutationService struct {
	store *store.Store
}

// NewMutationService creates a mutation engine bound to the given store.
func NewMutationService(st *store.Store) *MutationService {
	return &MutationService{store: st}
}

func validateTransaction(t domain.Transaction) error {
	if t.Date == "" {
		return fmt.Errorf("%w: transaction date is required", apperrors.ErrValidation)
	}
	if _, err := time.Parse(dateLayout, t.Date); err != nil {
		return fmt.Errorf("%w: transaction date %q is not a calendar date", apperrors.ErrValidation, t.Date)
	}
	return nil
}

// warnDanglingRefs logs referential warnings for foreign keys that do not
// resolve. The write is still accepted; read paths degrade to placeholders.
func (s *MutationService) warnDanglingRefs(ctx context.Context, t domain.Transaction) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if t.CategoryID != "" {
		if _, ok := s.store.Category(t.CategoryID); !ok {
			logger.Warn("Transaction references unknown category",
				slog.String("transaction_id", t.ID), slog.String("category_id", t.CategoryID))
		}
	}
	for _, tagID := range t.TagIDs {
		if _, ok := s.store.Tag(tagID); !ok {
			logger.Warn("Transaction references unknown tag",
				slog.String("transaction_id", t.ID), slog.String("tag_id", tagID))
		}
	}
}

// AddTransaction inserts a transaction, generating an id when the caller
// supplies none. Adding an expense against a category that is paying down a
// debt reduces that debt in the same logical apply: either both changes land
// or neither.
func (s *MutationService) AddTransaction(ctx context.Context, t domain.Transaction) (domain.Transaction, domain.ChangeSet, error) {
	if err := validateTransaction(t); err != nil {
		return domain.Transaction{}, domain.ChangeSet{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	} else if _, ok := s.store.Transaction(t.ID); ok {
		return domain.Transaction{}, domain.ChangeSet{}, fmt.Errorf("%w: transaction %s already exists", apperrors.ErrDuplicate, t.ID)
	}
	if t.TagIDs == nil {
		t.TagIDs = []string{}
	}
	s.warnDanglingRefs(ctx, t)

	changed := domain.ChangeSet{Transactions: true}

	// Debt auto-reduction: only on expense insert, never recomputed on later
	// edits or removals of the transaction.
	if t.IsExpense() && t.CategoryID != "" {
		if cat, ok := s.store.Category(t.CategoryID); ok && cat.Debt.IsPositive() {
			cat.Debt = decimal.Max(decimal.Zero, cat.Debt.Sub(t.Amount.Abs()))
			s.store.PutCategory(cat)
			changed.Categories = true
		}
	}

	s.store.PutTransaction(t)
	return t, changed, nil
}

// UpdateTransaction replaces a transaction by id. An id that no longer
// exists is a no-op, mirroring remove semantics. The debt side effect is not
// re-derived here.
func (s *MutationService) UpdateTransaction(ctx context.Context, t domain.Transaction) (domain.ChangeSet, error) {
	if t.ID == "" {
		return domain.ChangeSet{}, fmt.Errorf("%w: transaction id is required for update", apperrors.ErrValidation)
	}
	if err := validateTransaction(t); err != nil {
		return domain.ChangeSet{}, err
	}
	if _, ok := s.store.Transaction(t.ID); !ok {
		return domain.ChangeSet{}, nil
	}
	if t.TagIDs == nil {
		t.TagIDs = []string{}
	}
	s.warnDanglingRefs(ctx, t)
	s.store.PutTransaction(t)
	return domain.ChangeSet{Transactions: true}, nil
}

// RemoveTransaction deletes a transaction by id. Missing ids are a no-op,
// not an error.
func (s *MutationService) RemoveTransaction(ctx context.Context, id string) (domain.ChangeSet, error) {
	if !s.store.RemoveTransaction(id) {
		return domain.ChangeSet{}, nil
	}
	return domain.ChangeSet{Transactions: true}, nil
}

func validateCategory(c domain.Category) error {
	if c.Name == "" {
		return fmt.Errorf("%w: category name is required", apperrors.ErrValidation)
	}
	if c.Debt.IsNegative() {
		return fmt.Errorf("%w: category debt cannot be negative", apperrors.ErrValidation)
	}
	return nil
}

// AddCategory inserts a category, generating id and display code when absent.
// A category offered on neither form is unreachable, so callers that leave
// both visibility flags unset get the shown-everywhere default.
func (s *MutationService) AddCategory(ctx context.Context, c domain.Category) (domain.Category, domain.ChangeSet, error) {
	if err := validateCategory(c); err != nil {
		return domain.Category{}, domain.ChangeSet{}, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	} else if _, ok := s.store.Category(c.ID); ok {
		return domain.Category{}, domain.ChangeSet{}, fmt.Errorf("%w: category %s already exists", apperrors.ErrDuplicate, c.ID)
	}
	if c.Code == "" {
		c.Code = domain.DeriveCode(c.Name)
	}
	if !c.ShowInExpense && !c.ShowInIncome {
		c.ShowInExpense = true
		c.ShowInIncome = true
	}
	s.store.PutCategory(c)
	return c, domain.ChangeSet{Categories: true}, nil
}

// UpdateCategory replaces a category by id. Fixed categories may be edited;
// only their removal is protected.
func (s *MutationService) UpdateCategory(ctx context.Context, c domain.Category) (domain.ChangeSet, error) {
	if c.ID == "" {
		return domain.ChangeSet{}, fmt.Errorf("%w: category id is required for update", apperrors.ErrValidation)
	}
	if err := validateCategory(c); err != nil {
		return domain.ChangeSet{}, err
	}
	if _, ok := s.store.Category(c.ID); !ok {
		return domain.ChangeSet{}, nil
	}
	if c.Code == "" {
		c.Code = domain.DeriveCode(c.Name)
	}
	s.store.PutCategory(c)
	return domain.ChangeSet{Categories: true}, nil
}

// RemoveCategory deletes a category by id. Built-in (fixed) categories are
// refused. Removal does not cascade: transactions keep the dangling id and
// read paths resolve it to the placeholder.
func (s *MutationService) RemoveCategory(ctx context.Context, id string) (domain.ChangeSet, error) {
	if cat, ok := s.store.Category(id); ok && cat.IsFixed {
		return domain.ChangeSet{}, fmt.Errorf("%w: category %q is fixed and cannot be removed", apperrors.ErrValidation, cat.Name)
	}
	if !s.store.RemoveCategory(id) {
		return domain.ChangeSet{}, nil
	}
	return domain.ChangeSet{Categories: true}, nil
}

// AddTag inserts a tag, generating id and display code when absent.
func (s *MutationService) AddTag(ctx context.Context, t domain.Tag) (domain.Tag, domain.ChangeSet, error) {
	if t.Name == "" {
		return domain.Tag{}, domain.ChangeSet{}, fmt.Errorf("%w: tag name is required", apperrors.ErrValidation)
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	} else if _, ok := s.store.Tag(t.ID); ok {
		return domain.Tag{}, domain.ChangeSet{}, fmt.Errorf("%w: tag %s already exists", apperrors.ErrDuplicate, t.ID)
	}
	if t.Code == "" {
		t.Code = domain.DeriveCode(t.Name)
	}
	s.store.PutTag(t)
	return t, domain.ChangeSet{Tags: true}, nil
}

// UpdateTag replaces a tag by id. Unknown ids are a no-op.
func (s *MutationService) UpdateTag(ctx context.Context, t domain.Tag) (domain.ChangeSet, error) {
	if t.ID == "" {
		return domain.ChangeSet{}, fmt.Errorf("%w: tag id is required for update", apperrors.ErrValidation)
	}
	if t.Name == "" {
		return domain.ChangeSet{}, fmt.Errorf("%w: tag name is required", apperrors.ErrValidation)
	}
	if _, ok := s.store.Tag(t.ID); !ok {
		return domain.ChangeSet{}, nil
	}
	if t.Code == "" {
		t.Code = domain.DeriveCode(t.Name)
	}
	s.store.PutTag(t)
	return domain.ChangeSet{Tags: true}, nil
}

// RemoveTag deletes a tag by id without cascading into transactions.
func (s *MutationService) RemoveTag(ctx context.Context, id string) (domain.ChangeSet, error) {
	if !s.store.RemoveTag(id) {
		return domain.ChangeSet{}, nil
	}
	return domain.ChangeSet{Tags: true}, nil
}

// UpdateSettings replaces the singleton settings record.
func (s *MutationService) UpdateSettings(ctx context.Context, settings domain.Settings) (domain.ChangeSet, error) {
	s.store.SetSettings(settings)
	return domain.ChangeSet{Settings: true}, nil
}

// AddTodo appends a checklist item with a fresh id and creation timestamp.
func (s *MutationService) AddTodo(ctx context.Context, text string) (domain.Todo, domain.ChangeSet, error) {
	if text == "" {
		return domain.Todo{}, domain.ChangeSet{}, fmt.Errorf("%w: todo text is required", apperrors.ErrValidation)
	}
	todo := domain.Todo{
		ID:        uuid.NewString(),
		Text:      text,
		Done:      false,
		CreatedAt: time.Now().UTC(),
	}
	s.store.PutTodo(todo)
	return todo, domain.ChangeSet{Todos: true}, nil
}

// ToggleTodo flips the done flag. Unknown ids are a no-op.
func (s *MutationService) ToggleTodo(ctx context.Context, id string) (domain.ChangeSet, error) {
	todo, ok := s.store.Todo(id)
	if !ok {
		return domain.ChangeSet{}, nil
	}
	todo.Done = !todo.Done
	s.store.PutTodo(todo)
	return domain.ChangeSet{Todos: true}, nil
}

// DeleteTodo removes a checklist item. Unknown ids are a no-op.
func (s *MutationService) DeleteTodo(ctx context.Context, id string) (domain.ChangeSet, error) {
	if !s.store.RemoveTodo(id) {
		return domain.ChangeSet{}, nil
	}
	return domain.ChangeSet{Todos: true}, nil
}

// ImportSnapshot applies a bulk import: every collection present in the
// payload replaces the corresponding store collection wholesale, preserving
// supplied ids verbatim so re-imports stay idempotent; absent collections
// are left untouched. The whole payload is validated before anything is
// applied, so a malformed import leaves the store unchanged.
func (s *MutationService) ImportSnapshot(ctx context.Context, imp domain.SnapshotImport) (domain.ChangeSet, error) {
	if imp.Transactions != nil {
		for _, t := range *imp.Transactions {
			if t.ID == "" {
				return domain.ChangeSet{}, fmt.Errorf("%w: imported transaction is missing an id", apperrors.ErrValidation)
			}
			if err := validateTransaction(t); err != nil {
				return domain.ChangeSet{}, err
			}
		}
	}
	if imp.Categories != nil {
		for _, c := range *imp.Categories {
			if c.ID == "" {
				return domain.ChangeSet{}, fmt.Errorf("%w: imported category is missing an id", apperrors.ErrValidation)
			}
			if err := validateCategory(c); err != nil {
				return domain.ChangeSet{}, err
			}
		}
	}
	if imp.Tags != nil {
		for _, t := range *imp.Tags {
			if t.ID == "" {
				return domain.ChangeSet{}, fmt.Errorf("%w: imported tag is missing an id", apperrors.ErrValidation)
			}
		}
	}

	var changed domain.ChangeSet
	if imp.Transactions != nil {
		s.store.ReplaceTransactions(*imp.Transactions)
		changed.Transactions = true
	}
	if imp.Categories != nil {
		s.store.ReplaceCategories(*imp.Categories)
		changed.Categories = true
	}
	if imp.Tags != nil {
		s.store.ReplaceTags(*imp.Tags)
		changed.Tags = true
	}
	if imp.Settings != nil {
		s.store.SetSettings(*imp.Settings)
		changed.Settings = true
	}
	if imp.Todos != nil {
		s.store.ReplaceTodos(*imp.Todos)
		changed.Todos = true
	}
	middleware.GetLoggerFromCtx(ctx).Info("Snapshot import applied",
		slog.Bool("transactions", changed.Transactions),
		slog.Bool("categories", changed.Categories),
		slog.Bool("tags", changed.Tags),
		slog.Bool("settings", changed.Settings),
		slog.Bool("todos", changed.Todos),
	)
	return changed, nil
}
