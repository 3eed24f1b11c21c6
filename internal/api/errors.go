package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized matches every *AuthError.
var ErrUnauthorized = errors.New("unauthorized")

// NetworkError means no response was received (connection refused, DNS, timeout, cancel).
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return "network error: check your connection or API server"
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError is returned after a 401. By the time callers see it the session has already
// been cleared and the unauthorized handler has run; it carries no response data.
type AuthError struct {
	Path    string
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "session expired, please sign in again"
}

func (e *AuthError) Is(target error) bool { return target == ErrUnauthorized }

// APIError is any other non-2xx response. Message is the server's `detail` when present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

func fallbackMessage(status int) string {
	return fmt.Sprintf("Request failed (%d)", status)
}

// IsNetwork reports whether err (or anything it wraps) is a *NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
