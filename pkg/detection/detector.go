// Package detection adapts single-shot object detectors to normalized
// detections.
//
// An Engine runs one forward pass and exposes the four parallel SSD
// outputs: boxes, classes, scores and the valid count. The Adapter turns
// those arrays into Detections above a score threshold.
package detection

import (
	"fmt"
	"image"

	"github.com/teslashibe/depthsense/pkg/region"
)

// Detection is one object reported by the detector. It is immutable once
// produced.
type Detection struct {
	ClassID int        `json:"class_id"`
	Score   float64    `json:"score"`
	Box     region.Box `json:"box"`
}

// Outputs holds the raw post-processed tensors of one forward pass.
// Boxes are normalized (top, left, bottom, right).
type Outputs struct {
	Boxes   [][4]float32
	Classes []float32
	Scores  []float32
	Count   int
}

// Engine is an inference backend. Implementations hold a single
// interpreter and must not be called concurrently; the Adapter serializes
// access.
type Engine interface {
	// InputShape returns the image size the model expects.
	InputShape() (height, width int)

	// Run executes one forward pass on an image of exactly InputShape.
	Run(img image.Image) (*Outputs, error)

	// Close releases the interpreter.
	Close() error
}

// Config holds detector configuration
type Config struct {
	ModelPath     string  `json:"model_path" yaml:"model_path"`         // .tflite, .onnx or .pb
	ConfigPath    string  `json:"config_path" yaml:"config_path"`       // OpenCV DNN graph description (.pbtxt), optional
	Threshold     float64 `json:"threshold" yaml:"threshold"`           // Minimum score (default 0.3)
	NumThreads    int     `json:"num_threads" yaml:"num_threads"`       // Interpreter threads, 0 = backend default
	MaxDetections int     `json:"max_detections" yaml:"max_detections"` // Output rows for fixed-shape engines
	InputWidth    int     `json:"input_width" yaml:"input_width"`       // Only for engines that cannot report it
	InputHeight   int     `json:"input_height" yaml:"input_height"`
	ClassOffset   int     `json:"class_offset" yaml:"class_offset"`     // Added to raw class ids (OpenCV TF graphs are 1-based)

	// Backend forces an engine ("tflite", "onnxruntime", "opencv"); empty picks by model extension.
	Backend string `json:"backend" yaml:"backend"`

	// ONNX Runtime only.
	LibraryPath string    `json:"library_path" yaml:"library_path"` // onnxruntime shared library
	InputName   string    `json:"input_name" yaml:"input_name"`
	OutputNames [4]string `json:"output_names" yaml:"output_names"` // boxes, classes, scores, count
}

// DefaultConfig returns production defaults for an SSD MobileNet model.
func DefaultConfig() Config {
	return Config{
		ModelPath:     "models/detect.tflite",
		Threshold:     0.3,
		NumThreads:    4,
		MaxDetections: 10,
		InputWidth:    300,
		InputHeight:   300,
	}
}

// Validate checks the config.
func (c Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("detection: model path required")
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("detection: threshold must be in [0,1], got %v", c.Threshold)
	}
	if c.MaxDetections < 0 {
		return fmt.Errorf("detection: max detections must be >= 0, got %d", c.MaxDetections)
	}
	return nil
}
