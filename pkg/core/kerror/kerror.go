// ============================================================================
// kontrakt - Contract Development Console
// ============================================================================
//
// Package:     kerror
// Description: Coded domain errors shared by the console and its commands
// Created:     2026-10-12
// License:     MIT
// ============================================================================

// Package kerror provides the structured error type used across kontrakt.
//
// An *Error carries a Code, a human readable message, an optional cause and a
// set of details. The console treats every *Error as a recognised domain error
// and prints only its message; anything else is printed with its full trace.
//
//	err := kerror.New(kerror.CodeArtifactParse, "cannot parse artifact").
//		WithDetail("file", "MetaCoin.json")
//
//	if kerror.HasCode(err, kerror.CodeArtifactParse) {
//		// ...
//	}
package kerror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code classifies an error.
type Code string

// Error codes
const (
	CodeUnknown         Code = "UNKNOWN"
	CodeConfiguration   Code = "CONFIGURATION"
	CodeArtifactParse   Code = "ARTIFACT_PARSE"
	CodeArtifactMissing Code = "ARTIFACT_MISSING"
	CodeDispatch        Code = "DISPATCH"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeUnknownMethod   Code = "UNKNOWN_METHOD"
	CodeNotDeployed     Code = "NOT_DEPLOYED"
	CodeProvider        Code = "PROVIDER"
)

// Error is a coded error with optional cause and details.
type Error struct {
	code    Code
	message string
	cause   error
	details map[string]interface{}
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err with a code and message. Wrap returns nil if err is nil.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{code: code, message: message, cause: err}
}

// Wrapf wraps err with a code and a formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *Error {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches another *Error with the same code, so sentinel values created
// with New can be used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.code == e.code && (t.message == "" || t.message == e.message)
}

// Code returns the error code.
func (e *Error) Code() Code {
	return e.code
}

// Message returns the message without the cause.
func (e *Error) Message() string {
	return e.message
}

// WithDetail attaches a key/value detail and returns the error.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.details == nil {
		e.details = make(map[string]interface{})
	}
	e.details[key] = value
	return e
}

// Details returns a copy of the attached details.
func (e *Error) Details() map[string]interface{} {
	out := make(map[string]interface{}, len(e.details))
	for k, v := range e.details {
		out[k] = v
	}
	return out
}

// String renders code, message, details and cause for logs.
func (e *Error) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.code, e.message)
	if len(e.details) > 0 {
		keys := make([]string, 0, len(e.details))
		for k := range e.details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.details[k])
		}
	}
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

// HasCode reports whether any error in err's chain is an *Error with code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the first *Error in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return CodeUnknown
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
