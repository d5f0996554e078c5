package sensor

import (
	"fmt"
	"strings"

	"github.com/teslashibe/depthsense/pkg/depth"
)

// Config holds the stream settings.
type Config struct {
	Width  int `json:"width" yaml:"width"`   // Frame width in pixels
	Height int `json:"height" yaml:"height"` // Frame height in pixels
	FPS    int `json:"fps" yaml:"fps"`       // Target frames per second

	// DepthScale is meters per raw depth count.
	DepthScale float64 `json:"depth_scale" yaml:"depth_scale"`
}

// Stream limits of the supported depth cameras.
const (
	MaxWidth  = 1280
	MaxHeight = 720
	MaxFPS    = 90
)

// DefaultConfig returns 640x480 at 30 FPS with millimeter depth.
func DefaultConfig() Config {
	return Config{
		Width:      640,
		Height:     480,
		FPS:        30,
		DepthScale: depth.DefaultScale,
	}
}

// Validate checks the config values are within range.
func (c Config) Validate() error {
	var problems []string

	if c.Width < 160 || c.Width > MaxWidth {
		problems = append(problems, fmt.Sprintf("width must be between 160 and %d", MaxWidth))
	}
	if c.Height < 120 || c.Height > MaxHeight {
		problems = append(problems, fmt.Sprintf("height must be between 120 and %d", MaxHeight))
	}
	if c.FPS < 1 || c.FPS > MaxFPS {
		problems = append(problems, fmt.Sprintf("fps must be between 1 and %d", MaxFPS))
	}
	if c.DepthScale <= 0 {
		problems = append(problems, "depth_scale must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("sensor: invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
