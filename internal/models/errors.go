package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession means an operation needing an active wallet session
	// was attempted while logged out.
	ErrNoSession = errors.New("no active wallet session")
	// ErrSessionLocked means the active session has no private key, so it
	// cannot authorize transfers or notification responses. Re-access the
	// wallet with a signing credential to clear it.
	ErrSessionLocked = errors.New("active session has no private key")
	// ErrNoAddress means no wallet address could be resolved from any
	// fallback source.
	ErrNoAddress = errors.New("no wallet address available")
	// ErrSuperseded is returned to a search caller whose query was
	// replaced by a newer one before it resolved.
	ErrSuperseded = errors.New("superseded by a newer query")
)

// BackendError carries an error the backend reported, with its message
// verbatim so it can be surfaced to the user.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.StatusCode == 404
}

// IsBackendError reports whether err was reported by the backend (as
// opposed to a transport failure that never produced a response).
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}
