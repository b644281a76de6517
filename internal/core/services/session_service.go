package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hucha-app/hucha/internal/apperrors"
	"github.com/hucha-app/hucha/internal/core/domain"
	"github.com/hucha-app/hucha/internal/core/ports"
	"github.com/hucha-app/hucha/internal/core/store"
	"github.com/hucha-app/hucha/internal/middleware"
)

// SyncState describes where the session currently is in the sync cycle.
type SyncState string

const (
	StateIdle     SyncState = "idle"
	StateLoading  SyncState = "loading"  // pull in flight
	StateMutating SyncState = "mutating" // local mutation applied, push in flight
	StateError    SyncState = "error"
)

// SessionService owns the record store for one client session and reconciles
// it with the remote snapshot store. Mutations apply synchronously through
// the mutation engine and schedule an asynchronous push of the whole store;
// Refresh pulls and replaces the store wholesale. Pushes always transmit the
// latest snapshot, so rapid successive edits coalesce into fewer pushes.
//
// The store is exclusively owned here: no other component mutates it.
type SessionService struct {
	mu      sync.Mutex
	cond    *sync.Cond
	store   *store.Store
	mutator *MutationService

	transport ports.SyncTransport
	logger    *slog.Logger

	state       SyncState
	lastErr     error
	authExpired bool             // pushes are suspended until Resume
	pushing     bool             // push goroutine in flight
	dirty       bool             // store changed since the snapshot now being pushed
	pending     domain.ChangeSet // collections touched since the last acknowledged push
}

// NewSessionService creates a session around an initial snapshot. The usual
// lifecycle is New -> Refresh -> mutate* -> Flush.
func NewSessionService(initial domain.Snapshot, transport ports.SyncTransport, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	st := store.New(initial)
	s := &SessionService{
		store:     st,
		mutator:   NewMutationService(st),
		transport: transport,
		logger:    logger,
		state:     StateIdle,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// SyncState returns the current state of the sync cycle.
func (s *SessionService) SyncState() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the most recent sync failure, nil after a clean cycle.
func (s *SessionService) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Refresh pulls the remote snapshot and replaces local state wholesale. On
// failure the previous local snapshot is left untouched and the error is
// returned for the session layer to surface; the store is never cleared
// here, even on credential expiry.
func (s *SessionService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	// An in-flight push owns the state until it drains.
	if !s.pushing {
		s.state = StateLoading
	}
	s.mu.Unlock()

	snap, err := s.transport.Pull(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateError
		s.lastErr = err
		if errors.Is(err, apperrors.ErrAuthExpired) {
			s.authExpired = true
		}
		s.logger.Warn("Snapshot pull failed, keeping local state", slog.String("error", err.Error()))
		return err
	}

	seeded := *snap
	if len(seeded.Categories) == 0 {
		seeded.Categories = domain.DefaultCategories()
	}
	if len(seeded.Tags) == 0 {
		seeded.Tags = domain.DefaultTags()
	}
	s.store.ReplaceAll(seeded)
	s.authExpired = false
	s.lastErr = nil
	if !s.pushing {
		s.state = StateIdle
	}
	s.logger.Info("Snapshot pulled",
		slog.Int("transactions", len(seeded.Transactions)),
		slog.Int("categories", len(seeded.Categories)),
		slog.Int("tags", len(seeded.Tags)),
		slog.Int("todos", len(seeded.Todos)),
	)
	return nil
}

// Resume re-enables pushes after the session layer has re-authenticated,
// immediately pushing any local changes made while suspended.
func (s *SessionService) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authExpired = false
	if s.dirty {
		s.startPushLocked()
	}
}

// Flush waits until no push is pending or in flight. Used at shutdown so the
// last mutation reaches the remote. Context cancellation wakes the wait via
// Broadcast so no waiter stays parked on the condition.
func (s *SessionService) Flush(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	})
	defer stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for (s.pushing || (s.dirty && !s.authExpired)) && ctx.Err() == nil {
		s.cond.Wait()
	}
	return ctx.Err()
}

// schedulePushLocked marks the store dirty and makes sure a push goroutine
// is running. Callers hold s.mu.
func (s *SessionService) schedulePushLocked(changed domain.ChangeSet) {
	if !changed.Any() {
		return
	}
	s.dirty = true
	s.pending = s.pending.Merge(changed)
	s.state = StateMutating
	if s.authExpired {
		// Local-first: keep mutating, push once the session re-authenticates.
		return
	}
	s.startPushLocked()
}

func (s *SessionService) startPushLocked() {
	if s.pushing {
		return
	}
	s.pushing = true
	go s.pushLoop()
}

// pushLoop drains the dirty flag, always pushing the latest full snapshot.
// A push failure is logged and surfaced via LastError but never rolls back
// the local store; the next mutation or manual refresh re-attempts sync.
func (s *SessionService) pushLoop() {
	ctx := context.Background()
	for {
		s.mu.Lock()
		if !s.dirty || s.authExpired {
			s.pushing = false
			if s.state == StateMutating {
				s.state = StateIdle
			}
			s.cond.Broadcast()
			s.mu.Unlock()
			return
		}
		s.dirty = false
		snap := s.store.Snapshot()
		s.mu.Unlock()

		err := s.transport.Push(ctx, snap)

		s.mu.Lock()
		if err != nil {
			s.lastErr = err
			s.state = StateError
			if errors.Is(err, apperrors.ErrAuthExpired) {
				s.authExpired = true
				s.dirty = true // changes remain unpersisted
				s.logger.Warn("Snapshot push rejected, credentials expired; sync suspended")
			} else {
				s.logger.Warn("Snapshot push failed, local state kept as source of truth",
					slog.String("error", err.Error()))
			}
		} else {
			s.lastErr = nil
			// Mutations that landed while the push was in flight stay in
			// pending and ride the next iteration.
			if !s.dirty {
				s.logger.Info("Snapshot pushed",
					slog.Bool("transactions", s.pending.Transactions),
					slog.Bool("categories", s.pending.Categories),
					slog.Bool("tags", s.pending.Tags),
					slog.Bool("settings", s.pending.Settings),
					slog.Bool("todos", s.pending.Todos),
				)
				s.pending = domain.ChangeSet{}
			}
		}
		s.mu.Unlock()
	}
}

// --- read accessors ---

// Snapshot returns a deep copy of the current local snapshot.
func (s *SessionService) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// Transactions returns all transactions in insertion order.
func (s *SessionService) Transactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Transactions()
}

// Categories returns all categories in insertion order.
func (s *SessionService) Categories() []domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Categories()
}

// Tags returns all tags in insertion order.
func (s *SessionService) Tags() []domain.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Tags()
}

// Todos returns all todos in insertion order.
func (s *SessionService) Todos() []domain.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Todos()
}

// Settings returns the singleton settings record.
func (s *SessionService) Settings() domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Settings()
}

// Category resolves a category id, falling back to the placeholder for
// dangling references.
func (s *SessionService) Category(id string) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ResolveCategory(id)
}

// TransactionTags returns the resolvable tags of a transaction, silently
// filtering dangling ids.
func (s *SessionService) TransactionTags(t domain.Transaction) []domain.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.KnownTags(t.TagIDs)
}

// --- mutations ---

// AddTransaction applies the add locally and schedules a push.
func (s *SessionService) AddTransaction(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added, changed, err := s.mutator.AddTransaction(ctx, t)
	if err != nil {
		return domain.Transaction{}, err
	}
	s.schedulePushLocked(changed)
	return added, nil
}

// UpdateTransaction applies the update locally and schedules a push.
func (s *SessionService) UpdateTransaction(ctx context.Context, t domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := s.mutator.UpdateTransaction(ctx, t)
	if err != nil {
		return err
	}
	s.schedulePushLocked(changed)
	return nil
}

// RemoveTransaction applies the removal locally and schedules a push.
func (s *SessionService) RemoveTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := s.mutator.RemoveTransaction(ctx, id)
	if err != nil {
		return err
	}
	s.schedulePushLocked(changed)
	return nil
}

// AddCategory applies the add locally and schedules a push.
func (s *SessionService) AddCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added, changed, err := s.mutator.AddCategory(ctx, c)
	if err != nil {
		return domain.Category{}, err
	}
	s.schedulePushLocked(changed)
	return added, nil
}

// UpdateCategory applies the update locally and schedules a push.
func (s *SessionService) UpdateCategory(ctx context.Context, c domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := s.mutator.UpdateCategory(ctx, c)
	if err != nil {
		return err
	}
	s.schedulePushLocked(changed)
	return nil
}

// RemoveCategory applies the removal locally and schedules a push.
func (s *SessionService) RemoveCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := s.mutator.RemoveCategory(ctx, id)
	if err != nil {
		return err
	}
	s.schedulePushLocked(changed)
	return nil
}

// AddTag applies the add locally and schedules a push.
func (s *SessionService) AddTag(ctx context.Context, t domain.Tag) (domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added, changed, err := s.mutator.AddTag(ctx, t)
	if err != nil {
		return domain.Tag{}, err
	}
	s.schedulePushLocked(changed)
	return added, nil
}

// UpdateTag applies the update locally and schedules a push.
func (s *SessionService) UpdateTag(ctx context.Context, t domain.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := s.mutator.UpdateTag(ctx, t)
	if err != nil {
		return err
	}
	s.schedulePushLocked(changed)
	return nil
}

// RemoveTag applies the removal locally and schedules a push.
func (s *SessionService) RemoveTag(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := s.mutator.RemoveTag(ctx, id)
	if err != nil {
		return err
	}
	s.schedulePushLocked(changed)
	return nil
}

// UpdateSettings applies the settings change locally and schedules a push.
func (s *SessionService) UpdateSettings(ctx context.Context, settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := s.mutator.UpdateSettings(ctx, settings)
	if err != nil {
		return err
	}
	s.schedulePushLocked(changed)
	return nil
}

// AddTodo applies the add locally and schedules a push.
func (s *SessionService) AddTodo(ctx context.Context, text string) (domain.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added, changed, err := s.mutator.AddTodo(ctx, text)
	if err != nil {
		return domain.Todo{}, err
	}
	s.schedulePushLocked(changed)
	return added, nil
}

// ToggleTodo applies the toggle locally and schedules a push.
func (s *SessionService) ToggleTodo(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := s.mutator.ToggleTodo(ctx, id)
	if err != nil {
		return err
	}
	s.schedulePushLocked(changed)
	return nil
}

// DeleteTodo applies the delete locally and schedules a push.
func (s *SessionService) DeleteTodo(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := s.mutator.DeleteTodo(ctx, id)
	if err != nil {
		return err
	}
	s.schedulePushLocked(changed)
	return nil
}

// ImportSnapshot applies a bulk import locally and schedules a push.
func (s *SessionService) ImportSnapshot(ctx context.Context, imp domain.SnapshotImport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := s.mutator.ImportSnapshot(ctx, imp)
	if err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	middleware.GetLoggerFromCtx(ctx).Info("Import applied locally, scheduling push")
	s.schedulePushLocked(changed)
	return nil
}
