package pipeline

import "errors"

var (
	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("pipeline: loop already started")

	// ErrMissingComponent is returned by New when a collaborator is nil.
	ErrMissingComponent = errors.New("pipeline: missing component")
)
