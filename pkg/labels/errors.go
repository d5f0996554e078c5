package labels

import (
	"errors"
	"fmt"
)

// ErrUnknownClass is returned when a class id has no entry in the table.
// It means the label file does not match the model.
var ErrUnknownClass = errors.New("labels: unknown class id")

// ParseError reports a label source that could not be read.
type ParseError struct {
	// Path is the file being read, empty for in-memory sources.
	Path string

	// Line is the 1-based line where reading failed, 0 if before any line.
	Line int

	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("labels: line %d: %v", e.Line, e.Err)
	}
	if e.Line == 0 {
		return fmt.Sprintf("labels: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("labels: %s:%d: %v", e.Path, e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
