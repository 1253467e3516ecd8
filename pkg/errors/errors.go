package errors

import (
	stderrors "errors"
	"fmt"
)

// baseError keeps the formatted message together with the wrapped cause, so
// errors.Is/As see through the typed errors below.
type baseError struct {
	err error
}

func (e *baseError) Error() string {
	return e.err.Error()
}

func (e *baseError) Unwrap() error {
	return stderrors.Unwrap(e.err)
}

func newBase(message string) baseError {
	return baseError{err: stderrors.New(message)}
}

func newBasef(format string, args ...interface{}) baseError {
	return baseError{err: fmt.Errorf(format, args...)}
}

// ValidationError represents malformed caller input (HTTP 400). Never retried.
type ValidationError struct {
	baseError
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{newBase(message)}
}

func NewValidationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{newBasef(format, args...)}
}

// AuthError represents a missing, invalid or expired session, or a login that
// needs a second factor (HTTP 401). Requires a fresh login flow.
type AuthError struct {
	baseError
}

func NewAuthError(message string) *AuthError {
	return &AuthError{newBase(message)}
}

func NewAuthErrorf(format string, args ...interface{}) *AuthError {
	return &AuthError{newBasef(format, args...)}
}

// NotFoundError represents a read that matched nothing (HTTP 404)
type NotFoundError struct {
	baseError
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{newBase(message)}
}

func NewNotFoundErrorf(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{newBasef(format, args...)}
}

// ConnectionError represents a transport that could not be established or
// restored after the internal retries were exhausted (HTTP 503)
type ConnectionError struct {
	baseError
}

func NewConnectionError(message string) *ConnectionError {
	return &ConnectionError{newBase(message)}
}

func NewConnectionErrorf(format string, args ...interface{}) *ConnectionError {
	return &ConnectionError{newBasef(format, args...)}
}

// PartialFailureError reports a batch operation that may have been applied to
// a subset of its items only (HTTP 502). IDs lists the items that were attempted.
type PartialFailureError struct {
	baseError
	IDs []int
}

func NewPartialFailureErrorf(ids []int, format string, args ...interface{}) *PartialFailureError {
	return &PartialFailureError{baseError: newBasef(format, args...), IDs: ids}
}

// InternalError represents an internal server error (HTTP 500)
type InternalError struct {
	baseError
}

func NewInternalError(message string) *InternalError {
	return &InternalError{newBase(message)}
}

func NewInternalErrorf(format string, args ...interface{}) *InternalError {
	return &InternalError{newBasef(format, args...)}
}
