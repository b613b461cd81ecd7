// Package apperr defines the error taxonomy shared by the RBAC controllers and the web layer.
//
// Every domain error wraps exactly one of the kind sentinels below, so callers can branch with
// errors.Is(err, apperr.ErrNotFound) regardless of which package produced the error.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrConflict is the kind of errors caused by a duplicate unique key.
	ErrConflict = errors.New("conflict")

	// ErrValidation is the kind of errors caused by references to ids that do not exist.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is the kind of errors caused by a lookup of an absent record.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied is the kind of errors caused by a failed authorization check
	// or by an attempt to delete a system role.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnauthenticated is the kind of errors caused by a request without a valid principal.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Error is a domain error of a given kind.
type Error struct {
	// Kind is one of the kind sentinels of this package.
	Kind error
	// Message is the human-readable message returned to API clients.
	Message string
	// InvalidIDs lists the referenced ids that do not exist (validation errors only).
	InvalidIDs []uint64
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.InvalidIDs) > 0 {
		return fmt.Sprintf("%s: %v", e.Message, e.InvalidIDs)
	}

	return e.Message
}

// Unwrap returns the kind sentinel.
func (e *Error) Unwrap() error {
	return e.Kind
}

func newf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Conflictf returns a Conflict error.
func Conflictf(format string, args ...any) *Error { return newf(ErrConflict, format, args...) }

// NotFoundf returns a NotFound error.
func NotFoundf(format string, args ...any) *Error { return newf(ErrNotFound, format, args...) }

// Deniedf returns a PermissionDenied error.
func Deniedf(format string, args ...any) *Error { return newf(ErrPermissionDenied, format, args...) }

// Unauthenticatedf returns an Unauthenticated error.
func Unauthenticatedf(format string, args ...any) *Error {
	return newf(ErrUnauthenticated, format, args...)
}

// Invalid returns a Validation error listing all unknown ids.
func Invalid(message string, ids []uint64) *Error {
	return &Error{Kind: ErrValidation, Message: message, InvalidIDs: ids}
}

// Status maps an error to its HTTP status code. Unknown errors map to 500.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// InvalidIDs returns the invalid ids carried by err, if any.
func InvalidIDs(err error) []uint64 {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.InvalidIDs
	}

	return nil
}
