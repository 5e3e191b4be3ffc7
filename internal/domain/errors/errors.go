// Package errors provides domain-specific errors for the playground application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common domain error conditions.
var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrAgentNotFound        = errors.New("agent not found")
	ErrEmptyMessage         = errors.New("message text required")
	ErrModelRequired        = errors.New("model required")
	ErrMissingCredential    = errors.New("missing credential")
	ErrProviderNotFound     = errors.New("provider not registered")
	ErrUnexpectedResponse   = errors.New("unexpected response shape")
	ErrProviderUnreachable  = errors.New("provider unreachable")
	ErrInvalidParameterType = errors.New("invalid parameter value")
)

// ErrorCode categorizes errors for handling and reporting.
type ErrorCode string

const (
	CodeValidation    ErrorCode = "VALIDATION"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeProvider      ErrorCode = "PROVIDER"
	CodeConfiguration ErrorCode = "CONFIG"
	CodeTransport     ErrorCode = "TRANSPORT"
	CodeProtocol      ErrorCode = "PROTOCOL"
	CodeStorage       ErrorCode = "STORAGE"
)

// PlaygroundError wraps errors with additional context for debugging and handling.
type PlaygroundError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error returns a formatted error string including the code, message, and cause if present.
func (e *PlaygroundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for use with errors.Is and errors.As.
func (e *PlaygroundError) Unwrap() error {
	return e.Cause
}

// Describe renders the error without its code prefix. Adapters use it to
// build user-visible reply text.
func (e *PlaygroundError) Describe() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// NewError creates a new PlaygroundError with the given code, message, and optional cause.
func NewError(code ErrorCode, message string, cause error) *PlaygroundError {
	return &PlaygroundError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds a key-value pair to the error's context and returns the error.
func WithContext(err *PlaygroundError, key string, value interface{}) *PlaygroundError {
	if err.Context == nil {
		err.Context = make(map[string]interface{})
	}
	err.Context[key] = value
	return err
}

// CodeOf returns the code of the first PlaygroundError in err's chain, or ""
// when there is none.
func CodeOf(err error) ErrorCode {
	var pe *PlaygroundError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// Is reports whether err matches target using errors.Is semantics.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target and sets target to that error value.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
