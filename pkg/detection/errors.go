package detection

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrInputSize is returned when the image does not match the model input.
	ErrInputSize = errors.New("detection: image size does not match model input")

	// ErrClosed is returned when detecting with a closed adapter.
	ErrClosed = errors.New("detection: detector closed")

	// ErrMalformedOutput is returned when an engine produces inconsistent tensors.
	ErrMalformedOutput = errors.New("detection: malformed model output")
)

// ModelLoadError reports a model file that is missing or cannot be loaded.
type ModelLoadError struct {
	// Path is the model file.
	Path string

	// Backend identifies the engine that failed.
	Backend string

	Err error
}

// Error implements the error interface.
func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("detection [%s]: load model %s: %v", e.Backend, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ModelLoadError) Unwrap() error {
	return e.Err
}

// InferenceError reports a failed forward pass. It only costs the current
// frame; callers skip annotations and continue.
type InferenceError struct {
	Backend string
	Err     error
}

// Error implements the error interface.
func (e *InferenceError) Error() string {
	return fmt.Sprintf("detection [%s]: inference: %v", e.Backend, e.Err)
}

// Unwrap returns the underlying error.
func (e *InferenceError) Unwrap() error {
	return e.Err
}
