package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks. Mutations
// rejected with this error leave the record store untouched.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrSyncFailed indicates that a pull or push against the remote snapshot
// store could not complete. The local store is preserved; the condition is
// recoverable by the next successful sync.
var ErrSyncFailed = errors.New("sync failed")

// ErrAuthExpired is the credential-expiry subtype of a sync failure. It is
// surfaced distinctly so the session layer can force re-authentication; the
// sync layer itself never clears local state for it.
var ErrAuthExpired = errors.New("authentication expired")

// ErrUnauthorized indicates missing or invalid credentials on a request.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInternal indicates an unexpected failure that should not be exposed in detail.
var ErrInternal = errors.New("internal error")
