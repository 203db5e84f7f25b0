// Package errors provides structured error types for the installer.
//
// Error codes let the CLI decide how a failure ends the run:
//   - INVALID_*: input that failed validation
//   - NETWORK_ERROR: the metadata document or an archive could not be fetched
//   - PERMISSION_DENIED: the target directory is not writable
//   - USER_ABORT: the operator chose to leave the installer
//   - CORRUPT_ARCHIVE: a downloaded archive could not be opened or verified
//   - CACHE_ERROR: a decision could not be persisted
//   - TIMEOUT: the metadata document did not arrive in time
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid selection: %s", in)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // re-prompt
//	}
//
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidPath  Code = "INVALID_PATH"
	ErrCodeInvalidName  Code = "INVALID_NAME"

	// Resource errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodePermission       Code = "PERMISSION_DENIED"
	ErrCodeCorruptArchive   Code = "CORRUPT_ARCHIVE"
	ErrCodeCache            Code = "CACHE_ERROR"
	ErrCodeMirrorsExhausted Code = "MIRRORS_EXHAUSTED"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Control flow
	ErrCodeUserAbort Code = "USER_ABORT"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether any *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
