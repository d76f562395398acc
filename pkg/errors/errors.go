// Package errors provides structured error types for cddiagram.
//
// Every failure the tool can report carries a machine-readable [Code]. The CLI
// maps codes to process exit statuses with [ExitCode] and to user-facing text
// with [UserMessage]; the preview server maps them to HTTP status codes.
//
// # Error Codes
//
//   - RENDER_ENGINE_UNAVAILABLE: the layout tool cannot be located or started
//   - IO_ERROR: the output path is not writable or the write failed
//   - INVALID_TOPOLOGY: an edge or cluster references an undeclared node
//   - RENDER_TIMEOUT: the layout engine exceeded its deadline
//   - RENDER_FAILED: the layout engine ran but reported an error
//   - INVALID_INPUT: a flag or config value is out of range
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unknown direction %q", dir)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "write %s", path)
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidTopology Code = "INVALID_TOPOLOGY"

	// Layout engine errors
	ErrCodeEngineUnavailable Code = "RENDER_ENGINE_UNAVAILABLE"
	ErrCodeRenderTimeout     Code = "RENDER_TIMEOUT"
	ErrCodeRenderFailed      Code = "RENDER_FAILED"

	// Filesystem errors
	ErrCodeIO Code = "IO_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Exit statuses returned by the CLI for each error category.
const (
	ExitOK          = 0
	ExitInternal    = 1
	ExitInvalidArgs = 2
	ExitEngine      = 3
	ExitIO          = 4
	ExitTopology    = 5
	ExitTimeout     = 6
	ExitRender      = 7
	ExitInterrupted = 130 // Standard shell convention for SIGINT
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

// ExitCode maps err to the process exit status. A nil error maps to ExitOK and
// errors without a code map to ExitInternal.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeUnsupported:
		return ExitInvalidArgs
	case ErrCodeEngineUnavailable:
		return ExitEngine
	case ErrCodeIO:
		return ExitIO
	case ErrCodeInvalidTopology:
		return ExitTopology
	case ErrCodeRenderTimeout:
		return ExitTimeout
	case ErrCodeRenderFailed:
		return ExitRender
	default:
		return ExitInternal
	}
}
