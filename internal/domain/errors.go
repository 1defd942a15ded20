package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the presented bearer credential does
// not match the configured shared secret.
var ErrUnauthorized = errors.New("unauthorized")

// ErrStaleHandle is returned when a patch or delete targets a row that
// no longer exists, typically because it was already undone.
var ErrStaleHandle = errors.New("row no longer exists")

// ExtractionError signals that a vision backend failed or returned a
// response that could not be normalized into a receipt record.
type ExtractionError struct {
	Provider string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed (%s): %v", e.Provider, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// NewExtractionError wraps err as an extraction failure of the named provider.
func NewExtractionError(provider string, err error) error {
	return &ExtractionError{Provider: provider, Err: err}
}

// IsExtractionError reports whether err is an ExtractionError.
func IsExtractionError(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee)
}

// ValidationError signals caller-supplied data that violates the data
// model: non-positive amounts, values outside a closed set, bad dates.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StoreError signals that the remote tabular store was unreachable or
// rejected a mutation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("sheet %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err as a store failure of the named operation.
func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// IsStoreError reports whether err is a StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
