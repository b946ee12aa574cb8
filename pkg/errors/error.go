// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and internal errors
//   - Validation errors (100-199): Invalid or missing request parameters
//   - Data errors (200-299): Missing series, unreadable request files
//   - Indicator errors (300-399): Indicator configuration and calculation
//   - Strategy errors (400-499): Unknown policies, bad policy parameters, signal lookup
//   - Simulation errors (600-699): Daily simulation configuration and input
//   - Report errors (700-799): Report synthesis
//
// The core never returns these errors for degenerate trades. They are
// produced at the request boundary, before a backtest is started.
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeSeriesNotFound, "series not found for code %s", code)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeReadFailed, "failed to read request file", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeSeriesNotFound) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// IsClientError reports whether err carries a code describing bad caller input.
func IsClientError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code.IsClientError()
	}

	return false
}

// MissingParameter builds the error returned when a required request field is absent.
func MissingParameter(name string) *Error {
	return Newf(ErrCodeMissingParameter, "missing required parameter: %s", name)
}

// InvalidParameter builds the error returned when a request field has the wrong shape or value.
func InvalidParameter(name, reason string) *Error {
	return Newf(ErrCodeInvalidParameter, "invalid parameter %s: %s", name, reason)
}
