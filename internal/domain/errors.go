package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when no record exists for the key.
var ErrNotFound = errors.New("not found")

// DecodeError is returned when a stored or submitted indicator payload fails validation.
type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode indicators: %s", e.Reason)
	}
	return fmt.Sprintf("decode indicators: field %q %s", e.Field, e.Reason)
}

// StoreError wraps a persistence failure with the operation that caused it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// WrapStoreError returns nil for a nil err.
func WrapStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
