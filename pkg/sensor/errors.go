package sensor

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrIncompleteFrame is returned when one half of a pair was dropped.
	ErrIncompleteFrame = errors.New("sensor: incomplete frame pair")

	// ErrNotStarted is returned when waiting on a sensor that was never started.
	ErrNotStarted = errors.New("sensor: not started")

	// ErrStopped is returned when waiting on a stopped sensor.
	ErrStopped = errors.New("sensor: stopped")
)

// Error reports a stream that failed to start or broke while running.
type Error struct {
	// Source names the sensor ("replay", "remote", ...).
	Source string

	// Op is the failing operation ("start", "read", ...).
	Op string

	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("sensor [%s]: %s: %v", e.Source, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsGap reports whether err is a recoverable missing frame.
func IsGap(err error) bool {
	return errors.Is(err, ErrIncompleteFrame)
}
