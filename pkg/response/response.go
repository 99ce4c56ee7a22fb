// Package response carries the coded errors the dialogue and console
// services hand back to their handlers. The Code is the HTTP status the
// error should surface as, so handlers never switch on error strings.
package response

import (
	"errors"
)

type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

// Is matches on code and message so errors.Is works against the sentinel
// values declared per API package, even when an error crossed a wrap.
func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

// NewError builds a coded error, e.g. NewError(fiber.StatusNotFound,
// "conversation not found").
func NewError(code int, err string) error {
	return &Error{code, errors.New(err)}
}
