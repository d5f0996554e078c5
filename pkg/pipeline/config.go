package pipeline

import (
	"fmt"
	"time"
)

// Config holds frame loop settings.
type Config struct {
	// Threshold is the minimum detection score (default 0.3).
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// Stride processes every k-th complete frame. 1 processes all.
	Stride int `json:"stride" yaml:"stride"`

	// AcquireTimeout bounds one WaitForFramePair call. Expiry counts as a
	// gap. Zero waits as long as the sensor does.
	AcquireTimeout time.Duration `json:"acquire_timeout" yaml:"acquire_timeout"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Threshold: 0.3,
		Stride:    1,
	}
}

// Validate checks the config.
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("pipeline: threshold must be in [0,1], got %v", c.Threshold)
	}
	if c.Stride < 1 {
		return fmt.Errorf("pipeline: stride must be >= 1, got %d", c.Stride)
	}
	if c.AcquireTimeout < 0 {
		return fmt.Errorf("pipeline: acquire timeout must be >= 0, got %v", c.AcquireTimeout)
	}
	return nil
}
