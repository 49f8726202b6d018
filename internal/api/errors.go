package api

import (
	"errors"
	"fmt"

	"github.com/agora-social/agora/internal/apperr"
)

// Standard JSON-RPC error codes
const (
	ErrParseError     = -32700
	ErrInvalidRequest = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternalError  = -32603
)

// Application error codes in the implementation-defined range
const (
	ErrServerError  = -32000
	ErrUnauthorized = -32001
	ErrForbidden    = -32003
	ErrNotFound     = -32004
	ErrConflict     = -32009
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

// toRPCError maps a handler error onto a JSON-RPC code
func toRPCError(err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return NewError(ErrNotFound, "Not found")
	case apperr.KindForbidden:
		return NewError(ErrForbidden, "Forbidden")
	case apperr.KindInvalid:
		return NewError(ErrInvalidParams, "Invalid params")
	case apperr.KindUnauthorized:
		return NewError(ErrUnauthorized, "Unauthorized")
	case apperr.KindConflict:
		return NewError(ErrConflict, "Conflict")
	default:
		return NewError(ErrServerError, "Server error")
	}
}
