package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/depthsense/internal/config"
)

func TestParseFlags_Defaults(t *testing.T) {
	cfg, err := parseFlags(nil)
	require.NoError(t, err)

	assert.Equal(t, 0.3, cfg.Pipeline.Threshold)
	assert.Equal(t, 640, cfg.Sensor.Width)
	assert.Equal(t, 500, cfg.Samples)
	assert.Equal(t, 1, cfg.Pipeline.Stride)
}

func TestParseFlags_Priority(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depthsense.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
labels: file-labels.txt
samples: 100
detection:
  model_path: file.tflite
replay_dir: file-rec
`), 0o644))

	t.Setenv(config.EnvConfig, path)
	t.Setenv(config.EnvModel, "env.onnx")

	cfg, err := parseFlags([]string{"--samples", "250", "--threshold", "0.6", "--timeout", "2s"})
	require.NoError(t, err)

	assert.Equal(t, "file-labels.txt", cfg.LabelsPath, "file over defaults")
	assert.Equal(t, "file-rec", cfg.ReplayDir)
	assert.Equal(t, "env.onnx", cfg.Detection.ModelPath, "env over file")
	assert.Equal(t, 250, cfg.Samples, "flag over file")
	assert.Equal(t, 0.6, cfg.Detection.Threshold)
	assert.Equal(t, 0.6, cfg.Pipeline.Threshold)
	assert.Equal(t, 2*time.Second, cfg.Pipeline.AcquireTimeout)
}

func TestParseFlags_Preset(t *testing.T) {
	cfg, err := parseFlags([]string{"--preset", "qvga", "--fps", "15"})
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Sensor.Width)
	assert.Equal(t, 240, cfg.Sensor.Height)
	assert.Equal(t, 15, cfg.Sensor.FPS)

	_, err = parseFlags([]string{"--preset", "8k"})
	assert.Error(t, err)
}

func TestParseFlags_PresetKeepsDepthScale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depthsense.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sensor:\n  depth_scale: 0.0001\n"), 0o644))

	cfg, err := parseFlags([]string{"--config", path, "--preset", "hd"})
	require.NoError(t, err)
	assert.Equal(t, 1280, cfg.Sensor.Width)
	assert.Equal(t, 720, cfg.Sensor.Height)
	assert.Equal(t, 0.0001, cfg.Sensor.DepthScale)
	assert.Error(t, err)
}
