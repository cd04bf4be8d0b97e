// Package errors defines the coded errors shared by the upkeep CLI, the
// pipeline and the HTTP API.
//
// Every failure the user can act on carries a [Code]. The CLI prints the
// message, the API maps the code to a status and returns a [Response]:
//
//	INVALID_*                 bad flags, queries, files or graphs
//	*_NOT_FOUND               a named package, file or route does not exist
//	DEPTH_EXCEEDED            a dependency chain passed the traversal ceiling
//	EMPTY_WORKSPACE           a virtual workspace without members
//	RATE_LIMITED              the API refused a request
//	INTERNAL_ERROR            anything unexpected
//
// Attribution outcomes such as "not in the graph" are results, not errors.
//
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, cause, "decode %s", path)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) { ... }
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
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	// ErrCodeInvalidGraph marks an inconsistent resolved graph: an edge that
	// references an unknown id, a duplicate id, or a node missing at traversal.
	ErrCodeInvalidGraph Code = "INVALID_GRAPH"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodePackageNotFound Code = "PACKAGE_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

	// Traversal errors
	ErrCodeDepthExceeded  Code = "DEPTH_EXCEEDED"
	ErrCodeEmptyWorkspace Code = "EMPTY_WORKSPACE"

	// ErrCodeRateLimited is returned by the HTTP API when a client exceeds
	// the configured request rate.
	ErrCodeRateLimited Code = "RATE_LIMITED"

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

// Response is the serializable form of an error, used for --json output
// and HTTP API error bodies.
type Response struct {
	Code    Code     `json:"code"`
	Message string   `json:"message"`
	Causes  []string `json:"causes,omitempty"`
}

// ToResponse flattens err into a Response. The cause chain below the first
// *Error is listed outermost first. Errors without a code get ErrCodeInternal.
func ToResponse(err error) Response {
	code := GetCode(err)
	if code == "" {
		code = ErrCodeInternal
	}
	resp := Response{Code: code, Message: UserMessage(err)}

	var e *Error
	var next error
	if errors.As(err, &e) {
		next = e.Cause
	} else {
		next = errors.Unwrap(err)
	}
	for next != nil {
		resp.Causes = append(resp.Causes, next.Error())
		next = errors.Unwrap(next)
	}
	return resp
}
