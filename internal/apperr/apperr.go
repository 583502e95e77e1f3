package apperr

import (
	"errors"
	"fmt"

	cr "github.com/cockroachdb/errors"
)

// Kind classifies an error for callers and for the HTTP layer.
type Kind string

const (
	KindValidation    Kind = "VALIDATION"
	KindConflict      Kind = "CONFLICT"
	KindAuthorization Kind = "AUTHORIZATION"
	KindState         Kind = "STATE"
	KindNotFound      Kind = "NOT_FOUND"
	KindNoEarnings    Kind = "NO_EARNINGS"
	KindInternal      Kind = "INTERNAL"
)

// Error is the single error type the settlement engine returns to callers.
// Low-level causes (database errors mostly) are wrapped, never surfaced raw.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e *Error) Unwrap() error {
	return e.err
}

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, msg: msg}
}

func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to a lower-level cause. Returns nil for a
// nil cause so it can sit directly on repository return paths.
func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, msg: msg, err: cr.Wrap(err, msg)}
}

// Internal wraps an unexpected failure (broken connection, scan error).
func Internal(err error, msg string) error {
	return Wrap(err, KindInternal, msg)
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Validation(msg string) error     { return New(KindValidation, msg) }
func Conflict(msg string) error       { return New(KindConflict, msg) }
func Authorization(msg string) error  { return New(KindAuthorization, msg) }
func State(msg string) error          { return New(KindState, msg) }
func NotFound(msg string) error       { return New(KindNotFound, msg) }
func Statef(f string, a ...any) error { return Newf(KindState, f, a...) }
