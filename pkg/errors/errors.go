// Package errors provides structured error types for traitforge.
//
// Every failure that reaches the CLI carries a machine-readable [Code] so
// callers can tell a malformed input file from an exhausted combination
// space or a render that kept failing after its retries.
//
// # Error Codes
//
//   - INVALID_*: configuration and input validation failures
//   - FILE_NOT_FOUND, PARSE: input files that cannot be read or decoded
//   - LOOKUP: an index that does not exist in the scene, palette or DNA set
//   - EXHAUSTED: the requested DNA set cannot be produced
//   - RENDER, STORAGE: failures reported by external collaborators
//
// # Usage
//
//	err := errors.New(errors.ErrCodeLookup, "variant %d not found in %q", idx, group)
//	if errors.Is(err, errors.ErrCodeLookup) {
//	    // Handle lookup failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeParse, origErr, "decode %s", path)
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidDNA    Code = "INVALID_DNA"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Input file errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeParse        Code = "PARSE"

	// Index lookups into scene, palette and DNA set
	ErrCodeLookup Code = "LOOKUP"

	// Generation errors
	ErrCodeExhausted Code = "EXHAUSTED"

	// Collaborator errors
	ErrCodeRender  Code = "RENDER"
	ErrCodeStorage Code = "STORAGE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
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
		return e.Message
	}
	return err.Error()
}

// JobError reports a render job that failed after all of its retries.
// It is usually carried as the Cause of an ErrCodeRender *Error.
type JobError struct {
	ID       int // DNA set position of the job (1-based)
	Attempts int // Number of render attempts made
	Err      error
}

// Error implements the error interface.
func (e *JobError) Error() string {
	return fmt.Sprintf("job %d failed after %d attempt(s): %v", e.ID, e.Attempts, e.Err)
}

// Unwrap returns the last render error.
func (e *JobError) Unwrap() error { return e.Err }
