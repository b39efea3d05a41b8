package service

import (
	"errors"
)

// ErrNotFound signals that no matching row exists. For visitor lookups this
// is the expected "first visit" case, not a failure.
var ErrNotFound = errors.New("not found")

// ValidationError marks missing or malformed input. Maps to HTTP 400 and is
// never retried.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError wraps err as a ValidationError
func NewValidationError(err error) error {
	return &ValidationError{Err: err}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StoreUnavailableError marks a transient store failure. Callers may retry;
// the widget's fetch wrapper keys off this class.
type StoreUnavailableError struct {
	Err error
}

func (e *StoreUnavailableError) Error() string { return "store unavailable: " + e.Err.Error() }
func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// NewStoreUnavailable wraps err as a StoreUnavailableError
func NewStoreUnavailable(err error) error {
	return &StoreUnavailableError{Err: err}
}

// IsStoreUnavailable reports whether err is a transient store failure
func IsStoreUnavailable(err error) bool {
	var se *StoreUnavailableError
	return errors.As(err, &se)
}
