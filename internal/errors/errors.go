// Package errors provides coded errors shared by the style core, the
// service layer and the API edge.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable identifier for an error category.
type ErrorCode string

const (
	ErrUnknown             ErrorCode = "UNKNOWN"
	ErrInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrNotFound            ErrorCode = "NOT_FOUND"
	ErrAlreadyExists       ErrorCode = "ALREADY_EXISTS"
	ErrIncompleteSelection ErrorCode = "INCOMPLETE_SELECTION"
	ErrStorage             ErrorCode = "STORAGE"
	ErrConfig              ErrorCode = "CONFIG"
)

// StyleError is an error with a code and optional details.
type StyleError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *StyleError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *StyleError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a StyleError with the same code.
func (e *StyleError) Is(target error) bool {
	var targetErr *StyleError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new StyleError with the given code and message
func New(code ErrorCode, message string) *StyleError {
	return &StyleError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new StyleError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *StyleError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error. It returns nil when err is nil.
func Wrap(err error, code ErrorCode, message string) *StyleError {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *StyleError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail adds a detail to the error
func (e *StyleError) WithDetail(key string, value interface{}) *StyleError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// GetCode returns the code of the first StyleError in err's chain,
// or ErrUnknown.
func GetCode(err error) ErrorCode {
	var se *StyleError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrUnknown
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// GetDetail returns a detail of the first StyleError in err's chain.
func GetDetail(err error, key string) (interface{}, bool) {
	var se *StyleError
	if !errors.As(err, &se) {
		return nil, false
	}
	v, ok := se.Details[key]
	return v, ok
}

// GetMessage returns the message of the first StyleError in err's chain
// without its code, or err.Error().
func GetMessage(err error) string {
	var se *StyleError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
