// Package apperr defines the application error taxonomy and its HTTP mapping.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// Validation marks malformed input. No state change.
	Validation Kind = iota
	// NotFound marks a missing referenced resource.
	NotFound
	// Authorization marks an actor lacking permission for the operation.
	Authorization
	// Conflict marks a duplicate or an invalid state transition.
	Conflict
	// ExternalDependency marks a missing external prerequisite the user
	// can fix (e.g., no UPI address configured). Expected, not a fault.
	ExternalDependency
	// Internal marks an unexpected failure (storage, etc.).
	Internal
)

// Error is an application error with a kind and user-facing message.
type Error struct {
	Kind    Kind
	Message string

	// ResourceID references the conflicting resource for Conflict errors
	// (e.g., the existing pending settlement's ID).
	ResourceID string

	// Err is the wrapped cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the error kind to an HTTP status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case Validation, Conflict, ExternalDependency:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Authorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind wrapping a cause.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Conflicting creates a Conflict error referencing an existing resource.
func Conflicting(resourceID, format string, args ...any) *Error {
	return &Error{Kind: Conflict, Message: fmt.Sprintf(format, args...), ResourceID: resourceID}
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// From extracts the application error from err, or wraps it as Internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: Internal, Message: "internal error", Err: err}
}
