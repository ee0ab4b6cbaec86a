// Package errors provides coded error types for shadebridge.
//
// Conversion problems fall into two groups. Fatal conditions (a rename
// cycle, an unreadable scene dump, a broken schema table) are returned as
// *Error values and abort the run. Everything else is recorded as a
// diagnostic carrying one of the same codes, so the CLI can report both
// through one vocabulary.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSchema, "unknown override %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidSchema) {
//	    // reject the table
//	}
//
//	err = errors.Wrap(errors.ErrCodeCycle, cause, "resolve connections")
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	// Input and configuration problems
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidSchema   Code = "INVALID_SCHEMA"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeUnknownRenderer Code = "UNKNOWN_RENDERER"

	// Lookup failures
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeNodeNotFound Code = "NODE_NOT_FOUND"

	// Graph rewrite conditions. Only ErrCodeCycle aborts a run; the others
	// are reported as diagnostics.
	ErrCodeCycle            Code = "CYCLE"
	ErrCodeHookFailure      Code = "HOOK_FAILURE"
	ErrCodeMissingReference Code = "MISSING_REFERENCE"
	ErrCodeUnmappableValue  Code = "UNMAPPABLE_VALUE"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain carries code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns err's message without the code prefix.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
