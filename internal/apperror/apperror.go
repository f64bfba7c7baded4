// Package apperror defines the application's error taxonomy.
//
// Services return these typed errors; the HTTP layer translates them to
// status codes (see handler/response.go). The sentinels below are the
// full set of failure categories the API distinguishes:
//
//	ErrUnauthenticated → 401 (no valid session)
//	ErrForbidden       → 403 (valid session, insufficient rights)
//	ErrNotFound        → 404
//	ErrValidation      → 400 (empty/oversized input)
//	ErrUpstream        → 500 (feedback service unreachable or timed out)
//
// Anything else is treated as a storage/internal failure and surfaced to
// the client as a generic 500 — raw driver errors stay in the logs.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUpstream        = errors.New("upstream service failure")
)

// AppError carries a sentinel plus a human-readable message that is safe
// to show to clients. The wrapped Err is what errors.Is matches against.
type AppError struct {
	Err     error  // one of the sentinels above
	Message string // client-safe description
	Field   string // optional: input field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthenticated is returned when a request carries no valid session.
// The message is deliberately uniform — it must not reveal whether a
// username exists or whether the guarded resource exists.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// Upstream wraps a failure from the external feedback service. The cause
// is preserved in the chain for logging; Message is what clients see.
func Upstream(message string, cause error) *AppError {
	err := ErrUpstream
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrUpstream, cause)
	}
	return &AppError{
		Err:     err,
		Message: message,
	}
}
