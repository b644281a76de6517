package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/hucha-app/hucha/internal/apperrors"
	"github.com/hucha-app/hucha/internal/core/domain"
	"github.com/hucha-app/hucha/internal/core/services"
)

// --- Mock SyncTransport ---
type MockSyncTransport struct {
	mock.Mock

	mu     sync.Mutex
	pushed []domain.Snapshot
}

func (m *MockSyncTransport) Pull(ctx context.Context) (*domain.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockSyncTransport) Push(ctx context.Context, snap domain.Snapshot) error {
	m.mu.Lock()
	m.pushed = append(m.pushed, snap)
	m.mu.Unlock()
	args := m.Called(ctx, snap)
	return args.Error(0)
}

// Pushed returns every snapshot pushed so far, oldest first.
func (m *MockSyncTransport) Pushed() []domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Snapshot(nil), m.pushed...)
}

func emptySnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Transactions: []domain.Transaction{},
		Categories:   []domain.Category{},
		Tags:         []domain.Tag{},
		Settings:     domain.DefaultSettings(),
		Todos:        []domain.Todo{},
	}
}

// --- Test Suite ---
type SessionServiceTestSuite struct {
	suite.Suite
	transport *MockSyncTransport
	session   *services.SessionService
}

func (suite *SessionServiceTestSuite) SetupTest() {
	suite.transport = new(MockSyncTransport)
	suite.session = services.NewSessionService(domain.Snapshot{Settings: domain.DefaultSettings()}, suite.transport, nil)
}

// --- Refresh ---

func (suite *SessionServiceTestSuite) TestRefresh_SeedsDefaultsWhenRemoteEmpty() {
	ctx := context.Background()
	suite.transport.On("Pull", ctx).Return(emptySnapshot(), nil).Once()

	err := suite.session.Refresh(ctx)

	suite.Require().NoError(err)
	suite.Equal(services.StateIdle, suite.session.SyncState())
	suite.Equal(domain.DefaultCategories(), suite.session.Categories())
	suite.Equal(domain.DefaultTags(), suite.session.Tags())
	suite.transport.AssertExpectations(suite.T())
}

func (suite *SessionServiceTestSuite) TestRefresh_DoesNotSeedOverExistingData() {
	ctx := context.Background()
	remote := emptySnapshot()
	remote.Categories = []domain.Category{{ID: "mine", Name: "Mía"}}
	remote.Tags = []domain.Tag{{ID: "t", Name: "Etiqueta"}}
	suite.transport.On("Pull", ctx).Return(remote, nil).Once()

	suite.Require().NoError(suite.session.Refresh(ctx))

	cats := suite.session.Categories()
	suite.Require().Len(cats, 1)
	suite.Equal("mine", cats[0].ID)
}

func (suite *SessionServiceTestSuite) TestRefresh_FailureKeepsLocalState() {
	ctx := context.Background()
	suite.transport.On("Pull", ctx).Return(emptySnapshot(), nil).Once()
	suite.Require().NoError(suite.session.Refresh(ctx))
	suite.transport.On("Push", mock.Anything, mock.AnythingOfType("domain.Snapshot")).Return(nil)
	_, err := suite.session.AddTransaction(ctx, domain.Transaction{Date: "2024-01-01", Amount: decimal.NewFromInt(-3)})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.session.Flush(ctx))

	suite.transport.On("Pull", ctx).Return(nil, apperrors.ErrSyncFailed).Once()
	err = suite.session.Refresh(ctx)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrSyncFailed)
	suite.Equal(services.StateError, suite.session.SyncState())
	suite.ErrorIs(suite.session.LastError(), apperrors.ErrSyncFailed)
	// The optimistic local state survives the failed pull.
	suite.Len(suite.session.Transactions(), 1)
}

// --- Push scheduling ---

func (suite *SessionServiceTestSuite) TestMutationSchedulesPushOfLatestSnapshot() {
	ctx := context.Background()
	suite.transport.On("Pull", ctx).Return(emptySnapshot(), nil).Once()
	suite.Require().NoError(suite.session.Refresh(ctx))

	suite.transport.On("Push", mock.Anything, mock.AnythingOfType("domain.Snapshot")).Return(nil)

	_, err := suite.session.AddTransaction(ctx, domain.Transaction{Date: "2024-01-01", Amount: decimal.NewFromInt(-3)})
	suite.Require().NoError(err)
	_, err = suite.session.AddTransaction(ctx, domain.Transaction{Date: "2024-01-02", Amount: decimal.NewFromInt(7)})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.session.Flush(ctx))

	pushed := suite.transport.Pushed()
	suite.Require().NotEmpty(pushed)
	// Whatever the coalescing did, the final push carries the full state.
	last := pushed[len(pushed)-1]
	suite.Len(last.Transactions, 2)
	suite.Equal(services.StateIdle, suite.session.SyncState())
	suite.NoError(suite.session.LastError())
}

func (suite *SessionServiceTestSuite) TestNoOpMutationDoesNotPush() {
	ctx := context.Background()
	suite.transport.On("Pull", ctx).Return(emptySnapshot(), nil).Once()
	suite.Require().NoError(suite.session.Refresh(ctx))

	// Removing a transaction that does not exist changes nothing.
	suite.Require().NoError(suite.session.RemoveTransaction(ctx, "ghost"))
	suite.Require().NoError(suite.session.Flush(ctx))

	suite.Empty(suite.transport.Pushed())
	suite.transport.AssertNotCalled(suite.T(), "Push", mock.Anything, mock.Anything)
}

func (suite *SessionServiceTestSuite) TestPushFailureKeepsLocalState() {
	ctx := context.Background()
	suite.transport.On("Pull", ctx).Return(emptySnapshot(), nil).Once()
	suite.Require().NoError(suite.session.Refresh(ctx))

	suite.transport.On("Push", mock.Anything, mock.AnythingOfType("domain.Snapshot")).Return(apperrors.ErrSyncFailed)

	_, err := suite.session.AddTransaction(ctx, domain.Transaction{Date: "2024-01-01", Amount: decimal.NewFromInt(-3)})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.session.Flush(ctx))

	// Local state is the source of truth even when the push was rejected.
	suite.Len(suite.session.Transactions(), 1)
	suite.ErrorIs(suite.session.LastError(), apperrors.ErrSyncFailed)
}

// --- Auth expiry ---

func (suite *SessionServiceTestSuite) TestAuthExpirySuspendsPushesUntilResume() {
	ctx := context.Background()
	suite.transport.On("Pull", ctx).Return(emptySnapshot(), nil).Once()
	suite.Require().NoError(suite.session.Refresh(ctx))

	suite.transport.On("Push", mock.Anything, mock.AnythingOfType("domain.Snapshot")).Return(apperrors.ErrAuthExpired).Once()

	_, err := suite.session.AddTransaction(ctx, domain.Transaction{Date: "2024-01-01", Amount: decimal.NewFromInt(-3)})
	suite.Require().NoError(err)
	suite.waitForPushes(1)

	// Further mutations apply locally but are not pushed while suspended.
	_, err = suite.session.AddTransaction(ctx, domain.Transaction{Date: "2024-01-02", Amount: decimal.NewFromInt(4)})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.session.Flush(ctx))
	suite.Len(suite.transport.Pushed(), 1)
	suite.Len(suite.session.Transactions(), 2)

	// Resume retries with the full accumulated state.
	suite.transport.On("Push", mock.Anything, mock.AnythingOfType("domain.Snapshot")).Return(nil).Once()
	suite.session.Resume()
	suite.Require().NoError(suite.session.Flush(ctx))

	pushed := suite.transport.Pushed()
	suite.Require().Len(pushed, 2)
	suite.Len(pushed[1].Transactions, 2)
	suite.transport.AssertExpectations(suite.T())
}

// --- Flush and refresh under an in-flight push ---

func (suite *SessionServiceTestSuite) TestFlush_CanceledContextUnblocks() {
	ctx := context.Background()
	suite.transport.On("Pull", ctx).Return(emptySnapshot(), nil).Once()
	suite.Require().NoError(suite.session.Refresh(ctx))

	release := make(chan struct{})
	suite.transport.On("Push", mock.Anything, mock.AnythingOfType("domain.Snapshot")).Return(nil).Run(func(mock.Arguments) {
		<-release
	})

	_, err := suite.session.AddTransaction(ctx, domain.Transaction{Date: "2024-01-01", Amount: decimal.NewFromInt(-3)})
	suite.Require().NoError(err)

	flushCtx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- suite.session.Flush(flushCtx) }()
	time.Sleep(20 * time.Millisecond) // let the flush park behind the blocked push
	cancel()

	select {
	case err := <-done:
		suite.ErrorIs(err, context.Canceled)
	case <-time.After(2 * time.Second):
		suite.FailNow("flush did not return after cancellation")
	}

	close(release)
	suite.Require().NoError(suite.session.Flush(ctx))
	suite.Equal(services.StateIdle, suite.session.SyncState())
}

func (suite *SessionServiceTestSuite) TestRefreshDuringInFlightPushKeepsMutatingState() {
	ctx := context.Background()
	suite.transport.On("Pull", ctx).Return(emptySnapshot(), nil)
	suite.Require().NoError(suite.session.Refresh(ctx))

	release := make(chan struct{})
	suite.transport.On("Push", mock.Anything, mock.AnythingOfType("domain.Snapshot")).Return(nil).Run(func(mock.Arguments) {
		<-release
	})

	_, err := suite.session.AddTransaction(ctx, domain.Transaction{Date: "2024-01-01", Amount: decimal.NewFromInt(-3)})
	suite.Require().NoError(err)

	// A pull completing while a push is still in flight must not mask it.
	suite.Require().NoError(suite.session.Refresh(ctx))
	suite.Equal(services.StateMutating, suite.session.SyncState())

	close(release)
	suite.Require().NoError(suite.session.Flush(ctx))
	suite.Equal(services.StateIdle, suite.session.SyncState())
}

// waitForPushes blocks until the transport has seen at least n pushes. Flush
// cannot be used while pushes are suspended mid-flight.
func (suite *SessionServiceTestSuite) waitForPushes(n int) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(suite.transport.Pushed()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	suite.FailNow("timed out waiting for pushes")
}

// --- Reads ---

func (suite *SessionServiceTestSuite) TestCategoryResolvesPlaceholder() {
	ctx := context.Background()
	suite.transport.On("Pull", ctx).Return(emptySnapshot(), nil).Once()
	suite.Require().NoError(suite.session.Refresh(ctx))

	suite.Equal(domain.PlaceholderCategory(), suite.session.Category("ghost"))
	suite.Equal("Otros", suite.session.Category("cat_other").Name)
}

func (suite *SessionServiceTestSuite) TestTransactionTagsFilterDangling() {
	ctx := context.Background()
	suite.transport.On("Pull", ctx).Return(emptySnapshot(), nil).Once()
	suite.Require().NoError(suite.session.Refresh(ctx))

	tags := suite.session.TransactionTags(domain.Transaction{TagIDs: []string{"tag_1", "ghost"}})
	suite.Require().Len(tags, 1)
	suite.Equal("Impuestos", tags[0].Name)
}

// --- Run Suite ---
func TestSessionService(t *testing.T) {
	suite.Run(t, new(SessionServiceTestSuite))
}
