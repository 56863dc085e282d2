// Package errors defines the error kinds a marking request can end in.
//
// Every failure that reaches a caller carries exactly one Kind plus a
// human-readable message. The underlying cause, when there is one (for
// example the transport error behind a failed fetch), is kept and reachable
// through errors.Unwrap.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a request failure.
type Kind string

const (
	KindUnknown           Kind = ""
	KindSourceUnavailable Kind = "SourceUnavailable"
	KindFetchFailed       Kind = "FetchFailed"
	KindInvalidScale      Kind = "InvalidScale"
	KindInvalidColor      Kind = "InvalidColor"
	KindLayoutError       Kind = "LayoutError"
	KindIOError           Kind = "IOError"
)

// Error is the structured error returned across package boundaries.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "source.resolve"
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("[%s] %s: %s: %v", e.Kind, e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Op, e.Err)
	default:
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Op, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error without an underlying cause.
func New(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to err. A nil err yields nil.
func Wrap(kind Kind, op string, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the human-readable part of err without the kind prefix.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	switch {
	case e.Err != nil && e.Msg != "":
		return e.Msg + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Msg
	}
}
