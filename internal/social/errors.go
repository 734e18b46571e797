package social

import (
	"errors"
	"fmt"
)

// Code classifies expected, caller-recoverable failures
type Code string

// Error codes
const (
	CodeNotFound         Code = "not_found"
	CodeConflict         Code = "conflict"
	CodeInvalidOperation Code = "invalid_operation"
)

// Error is a domain failure. Unexpected persistence failures are never
// wrapped in an Error; they propagate as plain wrapped errors.
type Error struct {
	Code    Code
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any Error with the same code, so errors.Is(err, ErrNotFound) works
// for every not-found failure
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is
var (
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrConflict         = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInvalidOperation = &Error{Code: CodeInvalidOperation, Message: "invalid operation"}
)

func newError(code Code, op, format string, args ...interface{}) *Error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

func notFound(op, format string, args ...interface{}) error {
	return newError(CodeNotFound, op, format, args...)
}

func conflict(op, format string, args ...interface{}) error {
	return newError(CodeConflict, op, format, args...)
}

func invalidOperation(op, format string, args ...interface{}) error {
	return newError(CodeInvalidOperation, op, format, args...)
}

// CodeOf returns the domain code carried by err, or "" for unexpected errors
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
