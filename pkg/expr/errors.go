package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrUndefined is returned when an identifier is not in scope.
	ErrUndefined = errors.New("expr: undefined identifier")

	// ErrNotCallable is returned when calling a value that is not a function.
	ErrNotCallable = errors.New("expr: value is not callable")

	// ErrNotAssignable is returned for assignments the target cannot accept.
	ErrNotAssignable = errors.New("expr: not assignable")

	// ErrNotIterable is returned when a value cannot drive a repeater.
	ErrNotIterable = errors.New("expr: value is not iterable")

	// ErrNilReference is returned when reading a member of nil without ?.
	ErrNilReference = errors.New("expr: member access on nil")

	// ErrUnknownPipe is returned when a pipe name cannot be resolved.
	ErrUnknownPipe = errors.New("expr: unknown pipe")
)

// Error is a parse or evaluation error with the byte offset in the source.
type Error struct {
	Src string
	Pos int
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("expr: %s in %q", e.Msg, e.Src)
	}
	return fmt.Sprintf("expr: %s at column %d in %q", e.Msg, e.Pos+1, e.Src)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

func errorf(src string, pos int, format string, args ...any) *Error {
	return &Error{Src: src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(src string, pos int, err error) *Error {
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}
	return &Error{Src: src, Pos: pos, Msg: err.Error(), Err: err}
}
