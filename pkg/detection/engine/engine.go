// Package engine opens a detection backend for a model file.
package engine

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/teslashibe/depthsense/pkg/detection"
	"github.com/teslashibe/depthsense/pkg/detection/dnn"
	"github.com/teslashibe/depthsense/pkg/detection/onnx"
	"github.com/teslashibe/depthsense/pkg/detection/tflite"
)

// BackendFor returns the engine name for cfg. An explicit cfg.Backend
// wins; otherwise the model extension decides and OpenCV DNN takes
// everything that is not .tflite or .onnx.
func BackendFor(cfg detection.Config) string {
	if cfg.Backend != "" {
		return strings.ToLower(cfg.Backend)
	}
	switch strings.ToLower(filepath.Ext(cfg.ModelPath)) {
	case ".tflite":
		return tflite.Backend
	case ".onnx":
		return onnx.Backend
	default:
		return dnn.Backend
	}
}

// Open loads the model and wraps it in an Adapter.
func Open(cfg detection.Config) (*detection.Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend := BackendFor(cfg)
	var (
		e   detection.Engine
		err error
	)
	switch backend {
	case tflite.Backend:
		e, err = tflite.Open(cfg)
	case onnx.Backend:
		e, err = onnx.Open(cfg)
	case dnn.Backend:
		e, err = dnn.Open(cfg)
	default:
		return nil, fmt.Errorf("detection: unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return detection.NewAdapter(e, backend), nil
}
