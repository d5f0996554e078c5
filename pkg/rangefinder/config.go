// Package rangefinder wires the sensor, detector, estimator and renderers
// into a running range finder.
package rangefinder

import (
	"fmt"

	"github.com/teslashibe/depthsense/internal/config"
	"github.com/teslashibe/depthsense/pkg/depth"
	"github.com/teslashibe/depthsense/pkg/detection"
	"github.com/teslashibe/depthsense/pkg/pipeline"
	"github.com/teslashibe/depthsense/pkg/render/stream"
	"github.com/teslashibe/depthsense/pkg/render/window"
	"github.com/teslashibe/depthsense/pkg/sensor"
)

// Config holds all configuration for the range finder.
// Flag parsing is done in cmd/depthsense/main.go; this struct is data only.
type Config struct {
	// Debug enables verbose debug logging.
	Debug bool `json:"debug" yaml:"debug"`

	// LabelsPath is the label file matching the model.
	LabelsPath string `json:"labels" yaml:"labels"`

	Detection detection.Config `json:"detection" yaml:"detection"`
	Sensor    sensor.Config    `json:"sensor" yaml:"sensor"`
	Pipeline  pipeline.Config  `json:"pipeline" yaml:"pipeline"`

	// Samples and Precision configure the distance estimator; its frame
	// size follows Sensor.
	Samples   int    `json:"samples" yaml:"samples"`
	Precision int    `json:"precision" yaml:"precision"`
	Seed      uint64 `json:"seed" yaml:"seed"`

	// Frame source. RemoteURL wins over ReplayDir.
	RemoteURL  string `json:"remote_url" yaml:"remote_url"`
	ReplayDir  string `json:"replay_dir" yaml:"replay_dir"`
	ReplayLoop bool   `json:"replay_loop" yaml:"replay_loop"`

	// Outputs. With neither, annotations are logged.
	Window       bool          `json:"window" yaml:"window"`
	WindowConfig window.Config `json:"window_config" yaml:"window_config"`
	StreamAddr   string        `json:"stream_addr" yaml:"stream_addr"` // e.g. ":8181"
	StreamConfig stream.Config `json:"stream_config" yaml:"stream_config"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Detection:    detection.DefaultConfig(),
		Sensor:       sensor.DefaultConfig(),
		Pipeline:     pipeline.DefaultConfig(),
		Samples:      depth.DefaultSamples,
		Precision:    depth.DefaultPrecision,
		Seed:         1,
		ReplayLoop:   true,
		WindowConfig: window.DefaultConfig(),
		StreamConfig: stream.DefaultConfig(),
	}
}

// LoadFile merges a YAML or JSON config file over c.
func (c *Config) LoadFile(path string) error {
	return config.LoadFile(path, c)
}

// LoadEnvConfig applies environment overrides.
// Call this before applying explicitly set flags.
func (c *Config) LoadEnvConfig() {
	c.Detection.ModelPath = config.String(config.EnvModel, c.Detection.ModelPath)
	c.LabelsPath = config.String(config.EnvLabels, c.LabelsPath)
	c.ReplayDir = config.String(config.EnvReplay, c.ReplayDir)
	c.RemoteURL = config.String(config.EnvRemote, c.RemoteURL)
}

// EstimatorConfig derives the estimator settings.
func (c *Config) EstimatorConfig() depth.Config {
	return depth.Config{
		Samples:   c.Samples,
		Precision: c.Precision,
		Width:     c.Sensor.Width,
		Height:    c.Sensor.Height,
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Detection.ModelPath == "" {
		return &ConfigError{Field: "model", Message: "model path is required (--model or " + config.EnvModel + ")"}
	}
	if c.LabelsPath == "" {
		return &ConfigError{Field: "labels", Message: "label file is required (--labels or " + config.EnvLabels + ")"}
	}
	if c.RemoteURL == "" && c.ReplayDir == "" {
		return &ConfigError{Field: "source", Message: "a frame source is required (--remote or --replay)"}
	}
	if err := c.Detection.Validate(); err != nil {
		return &ConfigError{Field: "detection", Message: err.Error()}
	}
	if err := c.Sensor.Validate(); err != nil {
		return &ConfigError{Field: "sensor", Message: err.Error()}
	}
	if err := c.Pipeline.Validate(); err != nil {
		return &ConfigError{Field: "pipeline", Message: err.Error()}
	}
	if err := c.EstimatorConfig().Validate(); err != nil {
		return &ConfigError{Field: "estimator", Message: err.Error()}
	}
	if c.StreamAddr != "" {
		if err := c.StreamConfig.Validate(); err != nil {
			return &ConfigError{Field: "stream", Message: err.Error()}
		}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Message)
}
