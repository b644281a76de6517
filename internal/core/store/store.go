// Package store holds the authoritative in-memory copy of the five record
// collections. It is a passive container: no validation, no I/O, no locking.
// The session service owns the single store instance and serializes access
// to it; everything the store hands out is a copy.
package store

import "github.com/hucha-app/hucha/internal/core/domain"

// Store keeps each collection in insertion order with an id index for O(1)
// lookup. It is replaced wholesale on pull and updated incrementally by the
// mutation service.
type Store struct {
	transactions []domain.Transaction
	categories   []domain.Category
	tags         []domain.Tag
	todos        []domain.Todo
	settings     domain.Settings

	txnIndex  map[string]int
	catIndex  map[string]int
	tagIndex  map[string]int
	todoIndex map[string]int
}

// New creates a store populated from the given snapshot.
func New(snapshot domain.Snapshot) *Store {
	s := &Store{}
	s.ReplaceAll(snapshot)
	return s
}

// ReplaceAll swaps in a whole snapshot, the unit of consistency for sync.
func (s *Store) ReplaceAll(snapshot domain.Snapshot) {
	snap := snapshot.Clone()
	s.transactions = snap.Transactions
	s.categories = snap.Categories
	s.tags = snap.Tags
	s.todos = snap.Todos
	s.settings = snap.Settings
	s.reindex()
}

func (s *Store) reindex() {
	s.txnIndex = make(map[string]int, len(s.transactions))
	for i, t := range s.transactions {
		s.txnIndex[t.ID] = i
	}
	s.catIndex = make(map[string]int, len(s.categories))
	for i, c := range s.categories {
		s.catIndex[c.ID] = i
	}
	s.tagIndex = make(map[string]int, len(s.tags))
	for i, t := range s.tags {
		s.tagIndex[t.ID] = i
	}
	s.todoIndex = make(map[string]int, len(s.todos))
	for i, t := range s.todos {
		s.todoIndex[t.ID] = i
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		Transactions: s.transactions,
		Categories:   s.categories,
		Tags:         s.tags,
		Settings:     s.settings,
		Todos:        s.todos,
	}.Clone()
}

// Transactions returns all transactions in insertion order.
func (s *Store) Transactions() []domain.Transaction {
	out := make([]domain.Transaction, len(s.transactions))
	for i, t := range s.transactions {
		t.TagIDs = append([]string(nil), t.TagIDs...)
		out[i] = t
	}
	return out
}

// Categories returns all categories in insertion order.
func (s *Store) Categories() []domain.Category {
	return append([]domain.Category(nil), s.categories...)
}

// Tags returns all tags in insertion order.
func (s *Store) Tags() []domain.Tag {
	return append([]domain.Tag(nil), s.tags...)
}

// Todos returns all todos in insertion order.
func (s *Store) Todos() []domain.Todo {
	return append([]domain.Todo(nil), s.todos...)
}

// Settings returns the singleton settings record.
func (s *Store) Settings() domain.Settings {
	return s.settings
}

// Transaction looks up a transaction by id.
func (s *Store) Transaction(id string) (domain.Transaction, bool) {
	i, ok := s.txnIndex[id]
	if !ok {
		return domain.Transaction{}, false
	}
	t := s.transactions[i]
	t.TagIDs = append([]string(nil), t.TagIDs...)
	return t, true
}

// Category looks up a category by id.
func (s *Store) Category(id string) (domain.Category, bool) {
	i, ok := s.catIndex[id]
	if !ok {
		return domain.Category{}, false
	}
	return s.categories[i], true
}

// Tag looks up a tag by id.
func (s *Store) Tag(id string) (domain.Tag, bool) {
	i, ok := s.tagIndex[id]
	if !ok {
		return domain.Tag{}, false
	}
	return s.tags[i], true
}

// Todo looks up a todo by id.
func (s *Store) Todo(id string) (domain.Todo, bool) {
	i, ok := s.todoIndex[id]
	if !ok {
		return domain.Todo{}, false
	}
	return s.todos[i], true
}

// ResolveCategory returns the category for id, or the placeholder when the
// reference dangles. Read paths must never fail on a missing category.
func (s *Store) ResolveCategory(id string) domain.Category {
	if c, ok := s.Category(id); ok {
		return c
	}
	return domain.PlaceholderCategory()
}

// KnownTags filters the given tag ids down to tags that still exist,
// silently dropping dangling references.
func (s *Store) KnownTags(ids []string) []domain.Tag {
	out := make([]domain.Tag, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.Tag(id); ok {
			out = append(out, t)
		}
	}
	return out
}

// --- incremental mutations, called by the mutation service only ---

// PutTransaction inserts or replaces a transaction by id, keeping insertion
// order for existing entries.
func (s *Store) PutTransaction(t domain.Transaction) {
	if i, ok := s.txnIndex[t.ID]; ok {
		s.transactions[i] = t
		return
	}
	s.transactions = append(s.transactions, t)
	s.txnIndex[t.ID] = len(s.transactions) - 1
}

// RemoveTransaction deletes a transaction by id. Missing ids are a no-op.
func (s *Store) RemoveTransaction(id string) bool {
	i, ok := s.txnIndex[id]
	if !ok {
		return false
	}
	s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
	s.reindex()
	return true
}

// PutCategory inserts or replaces a category by id.
func (s *Store) PutCategory(c domain.Category) {
	if i, ok := s.catIndex[c.ID]; ok {
		s.categories[i] = c
		return
	}
	s.categories = append(s.categories, c)
	s.catIndex[c.ID] = len(s.categories) - 1
}

// RemoveCategory deletes a category by id. Missing ids are a no-op.
func (s *Store) RemoveCategory(id string) bool {
	i, ok := s.catIndex[id]
	if !ok {
		return false
	}
	s.categories = append(s.categories[:i], s.categories[i+1:]...)
	s.reindex()
	return true
}

// PutTag inserts or replaces a tag by id.
func (s *Store) PutTag(t domain.Tag) {
	if i, ok := s.tagIndex[t.ID]; ok {
		s.tags[i] = t
		return
	}
	s.tags = append(s.tags, t)
	s.tagIndex[t.ID] = len(s.tags) - 1
}

// RemoveTag deletes a tag by id. Missing ids are a no-op.
func (s *Store) RemoveTag(id string) bool {
	i, ok := s.tagIndex[id]
	if !ok {
		return false
	}
	s.tags = append(s.tags[:i], s.tags[i+1:]...)
	s.reindex()
	return true
}

// PutTodo inserts or replaces a todo by id.
func (s *Store) PutTodo(t domain.Todo) {
	if i, ok := s.todoIndex[t.ID]; ok {
		s.todos[i] = t
		return
	}
	s.todos = append(s.todos, t)
	s.todoIndex[t.ID] = len(s.todos) - 1
}

// RemoveTodo deletes a todo by id. Missing ids are a no-op.
func (s *Store) RemoveTodo(id string) bool {
	i, ok := s.todoIndex[id]
	if !ok {
		return false
	}
	s.todos = append(s.todos[:i], s.todos[i+1:]...)
	s.reindex()
	return true
}

// SetSettings replaces the singleton settings record.
func (s *Store) SetSettings(settings domain.Settings) {
	s.settings = settings
}

// ReplaceTransactions swaps the transaction collection wholesale (import).
func (s *Store) ReplaceTransactions(transactions []domain.Transaction) {
	snap := domain.Snapshot{Transactions: transactions}.Clone()
	s.transactions = snap.Transactions
	s.reindex()
}

// ReplaceCategories swaps the category collection wholesale (import).
func (s *Store) ReplaceCategories(categories []domain.Category) {
	s.categories = append([]domain.Category(nil), categories...)
	s.reindex()
}

// ReplaceTags swaps the tag collection wholesale (import).
func (s *Store) ReplaceTags(tags []domain.Tag) {
	s.tags = append([]domain.Tag(nil), tags...)
	s.reindex()
}

// ReplaceTodos swaps the todo collection wholesale (import).
func (s *Store) ReplaceTodos(todos []domain.Todo) {
	s.todos = append([]domain.Todo(nil), todos...)
	s.reindex()
}
