package core

import (
	"github.com/pkg/errors"
)

// APIError is a failure reported by the exam API: a non-2xx status and the
// human-readable message the server attached to it, if any.
type APIError struct {
	StatusCode int
	Message    string
}

func NewAPIError(code int, msg string) *APIError {
	return &APIError{StatusCode: code, Message: msg}
}

func (err APIError) Error() string {
	if err.Message == "" {
		return "api error"
	}
	return err.Message
}

// ErrorMessage extracts the server-supplied message from err, falling back
// to the given domain default for transport failures and blank responses.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}
