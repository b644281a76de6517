package ports

import (
	"context"

	"github.com/hucha-app/hucha/internal/core/domain"
)

// SyncTransport is the full-document wire protocol to the remote snapshot
// store. Every Push overwrites the remote in its entirety and every Pull
// returns the complete remote state; there is no delta format. Concrete
// backends (REST, flat file, SQL, realtime-listener bridges) all implement
// this same two-operation capability.
type SyncTransport interface {
	// Pull retrieves the authoritative remote snapshot. Implementations
	// return apperrors.ErrSyncFailed-wrapped errors on transport failure and
	// apperrors.ErrAuthExpired when credentials are no longer accepted.
	Pull(ctx context.Context) (*domain.Snapshot, error)

	// Push overwrites the remote store with the given snapshot. Error
	// conventions match Pull.
	Push(ctx context.Context, snapshot domain.Snapshot) error
}
