// Package apperror defines the error kinds shared by every storefront module.
//
// Errors render as "<kind>: <message>" so the kind survives the text-only
// request-reply boundary between modules; Parse recovers it on the other side.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a stable, machine-readable error category.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindInvalidInput Kind = "invalid_input"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal"
)

// kinds lists every kind Parse will look for, internal last.
var kinds = []Kind{
	KindNotFound,
	KindInvalidInput,
	KindConflict,
	KindInvalidState,
	KindForbidden,
	KindUnauthorized,
	KindInternal,
}

// Error is a categorized error with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

// Sentinels for errors.Is checks. They match any *Error of the same kind.
var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrInvalidInput = &Error{Kind: KindInvalidInput}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrInvalidState = &Error{Kind: KindInvalidState}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
)

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Message
}

// Is reports whether target is a sentinel of the same kind or an identical error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

func newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a referenced entity that does not exist.
func NotFound(format string, args ...any) error { return newf(KindNotFound, format, args...) }

// InvalidInput reports a malformed or out-of-range field.
func InvalidInput(format string, args ...any) error { return newf(KindInvalidInput, format, args...) }

// Conflict reports a uniqueness violation.
func Conflict(format string, args ...any) error { return newf(KindConflict, format, args...) }

// InvalidState reports an operation that the current state does not allow.
func InvalidState(format string, args ...any) error { return newf(KindInvalidState, format, args...) }

// Forbidden reports a role or ownership violation.
func Forbidden(format string, args ...any) error { return newf(KindForbidden, format, args...) }

// Unauthorized reports missing or rejected credentials.
func Unauthorized(format string, args ...any) error { return newf(KindUnauthorized, format, args...) }

// KindOf returns the kind of err. Errors that are not categorized are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return Parse(err).Kind
}

// Parse recovers a categorized error from err.
//
// It first unwraps err looking for an *Error. Failing that, it scans the text
// for a "<kind>: " marker, which is how errors look after crossing a
// request-reply call. Anything else becomes an internal error carrying the
// original text.
func Parse(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	text := err.Error()
	best := -1
	var found Kind
	for _, k := range kinds {
		idx := strings.Index(text, string(k)+": ")
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best {
			best = idx
			found = k
		}
	}
	if best >= 0 {
		msg := text[best+len(found)+2:]
		return &Error{Kind: found, Message: msg}
	}

	return &Error{Kind: KindInternal, Message: text}
}
