package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidOption = errors.New("option out of range")
	ErrProcessing    = errors.New("processing failure")
	ErrValidation    = errors.New("validation failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ProcessingError wraps an unexpected failure inside a public operation into
// the single error shape callers branch on.
func ProcessingError(op string, cause error) error {
	return NewAppError("PROCESSING_FAILED", op, errors.Join(ErrProcessing, cause))
}

// InvalidInputErrorf reports malformed caller-supplied data (catalog shape,
// non-string text, option out of range).
func InvalidInputErrorf(format string, args ...interface{}) error {
	return NewAppError("INVALID_INPUT", fmt.Sprintf(format, args...), ErrInvalidInput)
}
