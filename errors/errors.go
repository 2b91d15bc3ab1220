// Package errors defines the error taxonomy shared by all services.
// Business rejections (NotFound, Forbidden, Validation) are surfaced
// synchronously to callers and must not be retried. TransientIO marks
// persistence failures that the caller may retry.
package errors

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeNotFound    Code = "NOT_FOUND"
	CodeForbidden   Code = "FORBIDDEN"
	CodeConflict    Code = "CONFLICT"
	CodeValidation  Code = "VALIDATION"
	CodeTransientIO Code = "TRANSIENT_IO"
)

// Error carries a stable (code, message) pair to the caller.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error sharing the same code, so callers can test
// errors.Is(err, errors.NotFound("")) without comparing messages.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// TransientIO wraps a persistence collaborator failure. The current
// operation is aborted without partial effect; retrying is up to the caller.
func TransientIO(message string, cause error) *Error {
	return &Error{Code: CodeTransientIO, Message: message, cause: cause}
}

func IsNotFound(err error) bool    { return hasCode(err, CodeNotFound) }
func IsForbidden(err error) bool   { return hasCode(err, CodeForbidden) }
func IsConflict(err error) bool    { return hasCode(err, CodeConflict) }
func IsValidation(err error) bool  { return hasCode(err, CodeValidation) }
func IsTransientIO(err error) bool { return hasCode(err, CodeTransientIO) }

func hasCode(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

var ErrWorkerPanic = fmt.Errorf("worker panic")
