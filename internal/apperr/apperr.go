// Package apperr defines the error kinds shared across the ingestion
// pipeline, query API, and real-time fan-out, per the kinds catalogued in
// the error-handling design: Validation, FormatError, NotFound, Conflict,
// Internal, InvalidState, and Cancelled.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers across package boundaries can react
// without string-matching messages.
type Kind int

const (
	// KindInternal is the zero value: an unexpected, unclassified error.
	KindInternal Kind = iota
	KindValidation
	KindFormatError
	KindNotFound
	KindConflict
	KindInvalidState
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "Validation"
	case KindFormatError:
		return "FormatError"
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindInvalidState:
		return "InvalidState"
	case KindCancelled:
		return "Cancelled"
	default:
		return "Internal"
	}
}

// Error is the concrete error type carried through the system. Field is
// populated only for Validation errors, naming the violated input field
// per the "User-visible failures" contract.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind, so
// errors.Is(err, apperr.NotFound("")) holds for any NotFound error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Validation builds a field-scoped Validation error.
func Validation(field, message string) error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// FormatError builds a frame-level parse failure.
func FormatError(message string) error {
	return &Error{Kind: KindFormatError, Message: message}
}

// NotFound builds a NotFound error.
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict builds a Conflict error.
func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// InvalidState builds an InvalidState error (e.g. a second connect while
// already connected).
func InvalidState(message string) error {
	return &Error{Kind: KindInvalidState, Message: message}
}

// Cancelled builds a Cancelled error.
func Cancelled(message string) error {
	return &Error{Kind: KindCancelled, Message: message}
}

// Internal wraps an unexpected error, preserving it for errors.Unwrap.
func Internal(message string, err error) error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the Kind of err, or KindInternal if err is not (or does
// not wrap) an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// FieldOf returns the violated field name of a Validation error, or "".
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
