// Package errors provides structured error types for circuitkit.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the library packages
//   - Machine-readable error codes for programmatic handling
//   - Source positions for documents that fail to parse
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Document persistence failures are classified into five codes:
//   - NOT_FOUND: the document path does not exist
//   - MALFORMED: the content is not valid structured data
//   - IO_FAILURE: a read or write failed, after retries where applicable
//   - INTEGRITY_VIOLATION: a caller predicate rejected the data
//   - LOCKED: an exclusive lock could not be acquired before the timeout
//
// Validation and diffing never produce these errors for domain problems;
// they report findings instead.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "document not found: %s", path)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Handle missing document
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIOFailure, origErr, "write %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Persistence errors
	ErrCodeNotFound           Code = "NOT_FOUND"
	ErrCodeMalformed          Code = "MALFORMED"
	ErrCodeIOFailure          Code = "IO_FAILURE"
	ErrCodeIntegrityViolation Code = "INTEGRITY_VIOLATION"
	ErrCodeLocked             Code = "LOCKED"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Position locates a byte in a text document. Line and Column are 1-based.
type Position struct {
	Offset int64
	Line   int
	Column int
}

// String formats the position as "line L, column C".
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code     Code      // Machine-readable error code
	Message  string    // Human-readable message
	Cause    error     // Underlying error (optional)
	Position *Position // Source position for MALFORMED errors (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Position != nil {
		msg = fmt.Sprintf("%s (%s)", msg, e.Position)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
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

// At attaches a source position and returns the same error.
func (e *Error) At(pos Position) *Error {
	e.Position = &pos
	return e
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

// As is errors.As from the standard library, re-exported so callers that
// import this package as "errors" need only one import.
func As(err error, target any) bool {
	return errors.As(err, target)
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

// GetPosition returns the source position attached to err, if any.
func GetPosition(err error) (Position, bool) {
	var e *Error
	if errors.As(err, &e) && e.Position != nil {
		return *e.Position, true
	}
	return Position{}, false
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Position != nil {
			return fmt.Sprintf("%s (%s)", e.Message, e.Position)
		}
		return e.Message
	}
	return err.Error()
}

// PositionAt returns the line/column of the byte at the 0-based offset.
// Offsets outside data are clamped.
func PositionAt(data []byte, offset int64) Position {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	if offset < 0 {
		offset = 0
	}
	line, col := 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return Position{Offset: offset, Line: line, Column: col}
}
