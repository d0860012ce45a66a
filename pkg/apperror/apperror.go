// Package apperror defines the error kinds shared by every domain package.
//
// Domains declare their failures as sentinels built with New, and the HTTP
// boundary translates a Kind into a transport status. Wrapping a sentinel with
// fmt.Errorf("%w") or Wrap keeps errors.Is working.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
	KindInternal     Kind = "internal_error"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches a cause to a copy of the sentinel. The original sentinel is
// never mutated.
func Wrap(sentinel *Error, cause error) *Error {
	if sentinel == nil {
		return Internal(cause)
	}
	return &Error{
		Kind:    sentinel.Kind,
		Code:    sentinel.Code,
		Message: sentinel.Message,
		Err:     cause,
	}
}

// Internal wraps an uncategorized failure. The cause stays available to
// operators through Unwrap and is never rendered to clients.
func Internal(cause error) *Error {
	return &Error{
		Kind:    KindInternal,
		Code:    "internal_error",
		Message: "internal server error",
		Err:     cause,
	}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on kind and code so that wrapped copies of a sentinel compare
// equal to the sentinel itself.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// KindOf reports the kind carried by err. Errors that do not carry a kind are
// internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Ensure returns err unchanged when it already carries a kind and wraps it as
// internal otherwise.
func Ensure(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	return Internal(err)
}
