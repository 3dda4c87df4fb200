// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across store/session/service layers.
var (
	// ErrNetwork indicates the request could not complete (transport failure, timeout, 5xx).
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized indicates the remote API rejected the token or credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation indicates the remote API (or a local precondition) rejected the payload.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates the requested note does not exist server-side.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable indicates the credential store could not be read or written.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotAuthenticated indicates an operation was attempted without a session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionChanged indicates a response was discarded because the session moved on.
	ErrSessionChanged = errors.New("session changed")
)
