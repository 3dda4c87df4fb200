package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError describes a failed remote call. Kind is one of the sentinels above.
type APIError struct {
	Kind      error
	Status    int    // HTTP status, 0 when the request never completed
	Message   string // server supplied message, if any
	RequestID string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && e.Status != 0 {
		msg = http.StatusText(e.Status)
	}
	if e.Status == 0 {
		return fmt.Sprintf("%v: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%v (status %d): %s", e.Kind, e.Status, msg)
}

// Unwrap exposes the sentinel so callers can use errors.Is.
func (e *APIError) Unwrap() error { return e.Kind }

// FromStatus maps an HTTP status code of a non-2xx response to its sentinel.
func FromStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnauthorized
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusBadRequest || code == http.StatusConflict || code == http.StatusUnprocessableEntity:
		return ErrValidation
	default:
		return ErrNetwork
	}
}

// UserMessage returns a short human readable description for display.
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "session expired or credentials rejected, please log in again"
	case errors.Is(err, ErrNotAuthenticated):
		return "not logged in"
	case errors.Is(err, ErrValidation):
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return apiErr.Message
		}
		return "request rejected by server"
	case errors.Is(err, ErrNotFound):
		return "note no longer exists"
	case errors.Is(err, ErrStorageUnavailable):
		return "could not persist login; it will not survive a restart"
	case errors.Is(err, ErrSessionChanged):
		return "session changed while the request was in flight"
	case errors.Is(err, ErrNetwork):
		return "server unreachable, try again"
	default:
		return err.Error()
	}
}
