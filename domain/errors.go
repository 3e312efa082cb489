package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeUpstream     ErrorCode = "UPSTREAM"
	ErrCodeUnavailable  ErrorCode = "UNAVAILABLE"
	ErrCodeTimeout      ErrorCode = "TIMEOUT"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error. Summary is the short label surfaced
// in the response envelope's error field, Message the human-readable detail,
// Details an optional upstream payload attached for diagnostics.
type Error struct {
	Code    ErrorCode
	Summary string
	Message string
	Details interface{}
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Summary, e.Message)
	}
	return e.Summary
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, summary, message string) *Error {
	return &Error{Code: code, Summary: summary, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, summary, message string, err error) *Error {
	return &Error{Code: code, Summary: summary, Message: message, Err: err}
}

// WithDetails attaches an upstream payload for diagnostics.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
