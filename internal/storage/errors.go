// ABOUTME: Typed store errors separating retryable I/O failures from bad data
// ABOUTME: Callers use IsRetryable and IsDataError to decide how to react
package storage

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes store failures.
type ErrorKind string

const (
	// KindIO is a transport or backend failure; retrying may succeed.
	KindIO ErrorKind = "io"

	// KindData is a malformed or rejected value; retrying will not help.
	KindData ErrorKind = "data"
)

// StoreError is returned by CompletionStore implementations.
type StoreError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewIOError wraps err as a retryable failure of op.
func NewIOError(op string, err error) *StoreError {
	return &StoreError{Op: op, Kind: KindIO, Err: err}
}

// NewDataError wraps err as a non-retryable data failure of op.
func NewDataError(op string, err error) *StoreError {
	return &StoreError{Op: op, Kind: KindData, Err: err}
}

// IsRetryable reports whether err is (or wraps) an I/O StoreError.
func IsRetryable(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind == KindIO
	}
	return false
}

// IsDataError reports whether err is (or wraps) a data StoreError.
func IsDataError(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind == KindData
	}
	return false
}
