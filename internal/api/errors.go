package api

import (
	"errors"
	"fmt"

	apisocial "github.com/bizmesh/bizmesh/internal/api/social"
	"github.com/bizmesh/bizmesh/internal/social"
)

// Error represents an API error
type Error struct {
	Code    int
	Message string
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// Domain error codes, in the JSON-RPC server-defined range
const (
	ErrNotFound     = -32004
	ErrConflict     = -32009
	ErrUnauthorized = -32001
	ErrServerError  = -32000
)

// toAPIError maps a handler error to its JSON-RPC code and message
func toAPIError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, apisocial.ErrNoViewer) {
		return NewError(ErrUnauthorized, "Unauthorized")
	}

	switch social.CodeOf(err) {
	case social.CodeNotFound:
		return NewError(ErrNotFound, "Not found")
	case social.CodeConflict:
		return NewError(ErrConflict, "Conflict")
	case social.CodeInvalidOperation:
		return NewError(ErrInvalidParams, "Invalid params")
	}
	return NewError(ErrServerError, "Server error")
}
