// Package sensor delivers aligned color and depth frames.
//
// A Sensor is started once, polled with WaitForFramePair from a single
// goroutine, and stopped on every exit path. A pair with either half
// missing is a recoverable gap, not an error.
package sensor

import (
	"context"
	"image"
	"time"

	"github.com/teslashibe/depthsense/pkg/depth"
)

// Sensor is a depth camera stream.
type Sensor interface {
	// Start opens the stream with the given settings. An error here means
	// the stream will not run and is fatal to the caller.
	Start(ctx context.Context, cfg Config) error

	// WaitForFramePair blocks until the next pair arrives or ctx is done.
	// A dropped half is reported either as an incomplete pair or as an
	// error wrapping ErrIncompleteFrame.
	WaitForFramePair(ctx context.Context) (*FramePair, error)

	// Stop closes the stream. Safe to call more than once.
	Stop() error
}

// FramePair is one color frame and the depth frame aligned to it.
type FramePair struct {
	Color     image.Image
	Depth     depth.Provider
	Seq       uint64
	Timestamp time.Time
}

// Complete reports whether both halves are present.
func (p *FramePair) Complete() bool {
	return p != nil && p.Color != nil && p.Depth != nil
}
