package apperr

import (
	"errors"
	"fmt"

	"github.com/DhavalSuthar-24/clubhub/internal/store"
)

// Kind classifies an error for callers that need to react to it (HTTP
// mapping, retry decisions, user-facing alerts).
type Kind string

const (
	KindPrecondition Kind = "precondition"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindUnavailable  Kind = "unavailable"
	KindInternal     Kind = "internal"
)

// Error carries a kind and a message that is safe to show to end users while
// preserving the original cause via Unwrap.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is match two *Error values of the same kind and message, so
// package-level sentinels keep working after being wrapped.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func Precondition(message string) *Error { return New(KindPrecondition, message) }

func NotFound(resource string) *Error { return New(KindNotFound, resource+" not found") }

// KindOf reports the kind of err. Store-level transient and permission errors
// are recognised even when they were never wrapped in an *Error.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	switch {
	case store.IsTransient(err):
		return KindUnavailable
	case store.IsPermissionDenied(err):
		return KindForbidden
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// UserMessage returns a message suitable for an alert shown to the user.
func UserMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	switch KindOf(err) {
	case KindUnavailable:
		return "The service is temporarily unavailable. Please try again."
	case KindForbidden:
		return "You don't have permission to perform this action"
	}
	return "An unexpected error occurred"
}
