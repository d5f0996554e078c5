package rangefinder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/depthsense/internal/config"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Config)
		field string
	}{
		{"valid", func(*Config) {}, ""},
		{"no model", func(c *Config) { c.Detection.ModelPath = "" }, "model"},
		{"no labels", func(c *Config) { c.LabelsPath = "" }, "labels"},
		{"no source", func(c *Config) { c.ReplayDir, c.RemoteURL = "", "" }, "source"},
		{"bad threshold", func(c *Config) { c.Detection.Threshold = 3 }, "detection"},
		{"bad fps", func(c *Config) { c.Sensor.FPS = 0 }, "sensor"},
		{"bad stride", func(c *Config) { c.Pipeline.Stride = 0 }, "pipeline"},
		{"bad samples", func(c *Config) { c.Samples = 0 }, "estimator"},
		{"bad stream", func(c *Config) { c.StreamAddr = ":0"; c.StreamConfig.Quality = 0 }, "stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Detection.ModelPath = "detect.tflite"
			cfg.LabelsPath = "labels.txt"
			cfg.ReplayDir = "rec"
			tt.mod(&cfg)

			err := cfg.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var ce *ConfigError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestConfig_LoadEnvConfig(t *testing.T) {
	t.Setenv(config.EnvModel, "/models/ssd.onnx")
	t.Setenv(config.EnvLabels, "/models/coco.txt")
	t.Setenv(config.EnvRemote, "ws://bridge:9000/frames")

	cfg := DefaultConfig()
	cfg.ReplayDir = "keep"
	cfg.LoadEnvConfig()

	assert.Equal(t, "/models/ssd.onnx", cfg.Detection.ModelPath)
	assert.Equal(t, "/models/coco.txt", cfg.LabelsPath)
	assert.Equal(t, "ws://bridge:9000/frames", cfg.RemoteURL)
	assert.Equal(t, "keep", cfg.ReplayDir)
}

func TestConfig_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depthsense.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
labels: coco.txt
samples: 200
detection:
  model_path: detect.tflite
  threshold: 0.5
sensor:
  width: 320
  height: 240
pipeline:
  stride: 2
  acquire_timeout: 250ms
`), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "coco.txt", cfg.LabelsPath)
	assert.Equal(t, 200, cfg.Samples)
	assert.Equal(t, 0.5, cfg.Detection.Threshold)
	assert.Equal(t, 4, cfg.Detection.NumThreads, "unset fields keep defaults")
	assert.Equal(t, 320, cfg.Sensor.Width)
	assert.Equal(t, 30, cfg.Sensor.FPS)
	assert.Equal(t, 2, cfg.Pipeline.Stride)
	assert.Equal(t, 250*time.Millisecond, cfg.Pipeline.AcquireTimeout)

	est := cfg.EstimatorConfig()
	assert.Equal(t, 320, est.Width)
	assert.Equal(t, 200, est.Samples)
}
