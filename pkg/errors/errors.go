// Package errors provides the structured error codes used across covercraft.
//
// Codes follow the failure classes of the cover pipeline:
//   - NOT_FOUND: unknown template, variant, crop preset or crop mode. Always surfaced.
//   - RENDER_FALLBACK: a local default replaced a missing font, colour or background.
//   - PARTIAL_FAILURE: one of several requested outputs failed; siblings still produced.
//   - FATAL: no background could be produced; the run is aborted.
//
// Usage:
//
//	err := errors.New(errors.ErrCodeNotFound, "template %q not found", id)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // report to caller
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes.
const (
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeRenderFallback Code = "RENDER_FALLBACK"
	ErrCodePartialFailure Code = "PARTIAL_FAILURE"
	ErrCodeFatal          Code = "FATAL"

	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeNetwork      Code = "NETWORK_ERROR"
	ErrCodeTimeout      Code = "TIMEOUT"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
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
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for *Error values,
// and the plain error string otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
