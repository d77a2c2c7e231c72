package decode

import (
	"errors"
	"fmt"
)

// ErrMalformedParseError is returned when a value carries the structured
// parse error code but its message does not have the
// "<path>: <message> (<line>:<column>)" shape.
var ErrMalformedParseError = errors.New("malformed structured parse error")

// StackTracer is implemented by values that expose raw trace text.
type StackTracer interface {
	StackTrace() string
}

// Coder is implemented by values that carry a discriminating error code.
type Coder interface {
	ErrorCode() string
}

// Error is a thrown error as reported by a JavaScript-style runtime: a
// message, the raw multi-line stack and an optional code.
type Error struct {
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Name != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Name, e.Message)
	case e.Message != "":
		return e.Message
	default:
		return e.Name
	}
}

// StackTrace returns the raw stack text.
func (e *Error) StackTrace() string { return e.Stack }

// ErrorCode returns the error code, if any.
func (e *Error) ErrorCode() string { return e.Code }
