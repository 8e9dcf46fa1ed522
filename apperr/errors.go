// Package apperr defines the error taxonomy shared by the store, service and
// handler layers. Every failure that leaves a service carries a stable Kind
// and a reason that is safe to show to the caller.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and for status mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindConflict
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "internal"
	}
}

// Sentinels for errors.Is matching by kind.
var (
	ErrInternal     = &Error{Kind: KindInternal, Reason: "internal error"}
	ErrConflict     = &Error{Kind: KindConflict, Reason: "conflict"}
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Reason: "unauthorized"}
	ErrForbidden    = &Error{Kind: KindForbidden, Reason: "forbidden"}
	ErrNotFound     = &Error{Kind: KindNotFound, Reason: "not found"}
	ErrInvalidInput = &Error{Kind: KindInvalidInput, Reason: "invalid input"}
)

// Error is an application error with a caller-safe Reason. Err holds the
// underlying cause, which is never exposed to clients.
type Error struct {
	Kind   Kind
	Reason string
	Field  string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match when target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Conflict(reason string) *Error {
	return &Error{Kind: KindConflict, Reason: reason}
}

func Unauthorized(reason string) *Error {
	return &Error{Kind: KindUnauthorized, Reason: reason}
}

// UnauthorizedCause keeps the cause for logs while the reason stays generic.
func UnauthorizedCause(reason string, err error) *Error {
	return &Error{Kind: KindUnauthorized, Reason: reason, Err: err}
}

func Forbidden(reason string) *Error {
	return &Error{Kind: KindForbidden, Reason: reason}
}

func NotFound(reason string) *Error {
	return &Error{Kind: KindNotFound, Reason: reason}
}

func Invalid(field, reason string) *Error {
	return &Error{Kind: KindInvalidInput, Field: field, Reason: reason}
}

// Internal wraps an unexpected failure, typically from the storage layer.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Reason: "internal error", Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal for anything unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As returns the first *Error in err's chain, converting unclassified errors
// into an internal error.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
