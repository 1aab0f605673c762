// Package errs holds the error kinds shared by the parsing, service and
// handler layers. Handlers map each kind to one HTTP status.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField   = errors.New("missing field")
	ErrMalformedValue = errors.New("malformed value")
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConflict       = errors.New("conflict")
	ErrNotImplemented = errors.New("not implemented")
)

// FieldError names the input field that failed parsing.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

func Missing(field string) error {
	return &FieldError{Field: field, Err: ErrMissingField}
}

func Malformed(field string) error {
	return &FieldError{Field: field, Err: ErrMalformedValue}
}
