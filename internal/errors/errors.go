// Package errors provides the structured error type shared by the matrix
// conversion packages.
//
// Every failure that reaches a caller carries a Code so the caller can tell
// a corrupt upload from a malformed matrix literal without string matching,
// and a Message that is safe to show to a user as a single line.
//
// # Error Codes
//
//   - DECODE_ERROR: media bytes are not a readable image or video
//   - PARSE_ERROR: matrix text or a numeric field is malformed
//   - RANGE_ERROR: resolved vmin is greater than vmax
//   - RENDER_ERROR: the matrix cannot be drawn
//   - INVALID_INPUT: caller supplied an unusable argument (identifier, size)
//
// # Usage
//
//	err := errors.New(errors.CodeParse, "row %d is empty", i+1)
//	if errors.Is(err, errors.CodeParse) {
//	    // show err.Error() to the user
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	CodeDecode       Code = "DECODE_ERROR"
	CodeParse        Code = "PARSE_ERROR"
	CodeRange        Code = "RANGE_ERROR"
	CodeRender       Code = "RENDER_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code   // Machine-readable category
	Message string // Human-readable, single line
	Cause   error  // Underlying error (optional)
}

// Error returns the message, followed by the cause when there is one.
// The code is left out so the string can be shown to users as-is.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates an Error that wraps cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether any error in err's chain is an *Error with the given code.
func Is(err error, code Code) bool {
	var e *Error
	for err != nil {
		if errors.As(err, &e) {
			if e.Code == code {
				return true
			}
			err = e.Cause
			continue
		}
		return false
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
