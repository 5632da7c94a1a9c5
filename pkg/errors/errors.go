// Package errors provides structured error types for the ebdgraph application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - Typed details (ambiguous notes, offending edges) callers can branch on
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes are grouped by the stage that raises them:
//   - INVALID_*: Input contract violations (table shape, options)
//   - DUPLICATE_STEP, UNRESOLVED_STEP, TERMINAL_MISUSE, AMBIGUOUS_OUTCOME,
//     UNSUPPORTED_REFERENCE: Structural build errors
//   - NOT_EXACTLY_TWO_EDGES, CYCLE, TOO_COMPLEX: Rendering-capability errors
//   - RENDER_SERVICE, NETWORK_ERROR: External boundary errors
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateStep, "step %q defined twice", step)
//	if errors.Is(err, errors.ErrCodeTooComplex) {
//	    // fall back to the DOT renderer
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to reach %s", url)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidLanguage Code = "INVALID_LANGUAGE"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Structural build errors
	ErrCodeDuplicateStep        Code = "DUPLICATE_STEP"
	ErrCodeUnresolvedStep       Code = "UNRESOLVED_STEP"
	ErrCodeTerminalMisuse       Code = "TERMINAL_MISUSE"
	ErrCodeAmbiguousOutcome     Code = "AMBIGUOUS_OUTCOME"
	ErrCodeUnsupportedReference Code = "UNSUPPORTED_REFERENCE"

	// Rendering-capability errors
	ErrCodeNotExactlyTwoEdges Code = "NOT_EXACTLY_TWO_EDGES"
	ErrCodeCycle              Code = "CYCLE"
	ErrCodeTooComplex         Code = "TOO_COMPLEX"

	// External boundary errors
	ErrCodeRenderService Code = "RENDER_SERVICE"
	ErrCodeNetwork       Code = "NETWORK_ERROR"
	ErrCodeTimeout       Code = "TIMEOUT"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

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
// It unwraps the error chain looking for an *Error with a matching code;
// outer codes take precedence, but inner *Error values are also inspected so
// that a pipeline-level wrap does not hide a build-level code.
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
		return e.Message
	}
	return err.Error()
}

// AmbiguousOutcomeError describes an outcome code that appears with two
// notes that differ beyond trailing punctuation.
type AmbiguousOutcomeError struct {
	Code      string
	Note      string
	OtherNote string
}

// Error implements the error interface.
func (e *AmbiguousOutcomeError) Error() string {
	return fmt.Sprintf("outcome code %s is used with different notes: %q vs %q", e.Code, e.Note, e.OtherNote)
}

// OutDegreeError describes a decision whose outgoing edges are not exactly
// one yes and one no branch.
type OutDegreeError struct {
	Key     string   // key of the decision node
	Targets []string // keys of the outgoing edge targets
}

// Error implements the error interface.
func (e *OutDegreeError) Error() string {
	return fmt.Sprintf("node %s must have exactly 2 outgoing edges (yes/no), has %d: %s",
		e.Key, len(e.Targets), strings.Join(e.Targets, ", "))
}

// PathCountError is raised when a node with in-degree > 1 is reachable from
// the start by fewer than two simple paths, which only happens in cyclic graphs.
type PathCountError struct {
	Key      string
	InDegree int
	Paths    int
}

// Error implements the error interface.
func (e *PathCountError) Error() string {
	return fmt.Sprintf("node %s has in-degree %d but only %d simple path(s) from the start", e.Key, e.InDegree, e.Paths)
}

// SpliceConflictError is raised when two merge points share the same last
// common ancestor; the block grammar can only express one of them.
type SpliceConflictError struct {
	Ancestor string
	First    string
	Second   string
}

// Error implements the error interface.
func (e *SpliceConflictError) Error() string {
	if e.Ancestor == "" {
		return fmt.Sprintf("merge point %s has no common ancestor below the start", e.First)
	}
	return fmt.Sprintf("nodes %s and %s both merge after %s", e.First, e.Second, e.Ancestor)
}

// StatusError carries a non-2xx response from the rendering service.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}
