package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/depthsense/pkg/detection"
)

func TestBackendFor(t *testing.T) {
	tests := []struct {
		model   string
		backend string
		want    string
	}{
		{"models/detect.tflite", "", "tflite"},
		{"models/DETECT.TFLITE", "", "tflite"},
		{"models/ssd.onnx", "", "onnxruntime"},
		{"models/frozen_inference_graph.pb", "", "opencv"},
		{"models/mobilenet.caffemodel", "", "opencv"},
		{"models/detect.tflite", "OpenCV", "opencv"},
	}

	for _, tt := range tests {
		t.Run(tt.model+"/"+tt.backend, func(t *testing.T) {
			got := BackendFor(detection.Config{ModelPath: tt.model, Backend: tt.backend})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := detection.DefaultConfig()
	cfg.Backend = "coral"

	_, err := Open(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coral")
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := detection.DefaultConfig()
	cfg.Threshold = 2

	_, err := Open(cfg)
	require.Error(t, err)
}

func TestOpen_MissingModel(t *testing.T) {
	cfg := detection.DefaultConfig()
	cfg.ModelPath = "/nonexistent/detect.tflite"

	_, err := Open(cfg)
	var le *detection.ModelLoadError
	require.True(t, errors.As(err, &le), "got %v", err)
	assert.Equal(t, "tflite", le.Backend)
}
