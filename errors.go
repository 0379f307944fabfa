package eratosthenes

import (
	"errors"
	"fmt"
)

var (
	// ErrBoundTooLarge is returned when a decimal bound exceeds the 64-bit
	// range the engines operate in.
	ErrBoundTooLarge = errors.New("bound exceeds 2^64-1")
)

// ErrInvalidBound indicates a bound string that is not a decimal number.
//
// The underlying parse error can be accessed via errors.Unwrap.
type ErrInvalidBound struct {
	Bound string
	cause error
}

func (e *ErrInvalidBound) Error() string {
	return fmt.Sprintf("invalid bound: %q", e.Bound)
}

func (e *ErrInvalidBound) Unwrap() error { return e.cause }
