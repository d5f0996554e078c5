// Package dnn runs SSD detection graphs through OpenCV's DNN module.
//
// It accepts anything cv::dnn::readNet can load whose output is the
// DetectionOutput layout [1, 1, N, 7]:
// (image id, class id, score, left, top, right, bottom), normalized.
package dnn

import (
	"fmt"
	"image"
	"log/slog"
	"os"

	"gocv.io/x/gocv"

	"github.com/teslashibe/depthsense/internal/log"
	"github.com/teslashibe/depthsense/pkg/detection"
)

// Backend is the engine name used in errors and logs.
const Backend = "opencv"

// Column layout of a DetectionOutput row.
const (
	colClass = 1
	colScore = 2
	colLeft  = 3
	colTop   = 4
	colRight = 5
	colBot   = 6
)

// Engine wraps an OpenCV DNN network.
type Engine struct {
	net         gocv.Net
	inputSize   image.Point
	maxRows     int
	classOffset int
	log         *slog.Logger
}

// Open loads cfg.ModelPath (and cfg.ConfigPath when the format needs one).
// OpenCV cannot report the input size, so cfg.InputWidth/InputHeight are
// required.
func Open(cfg detection.Config) (*Engine, error) {
	// Check if model file exists
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, &detection.ModelLoadError{Path: cfg.ModelPath, Backend: Backend, Err: err}
	}
	if cfg.InputWidth <= 0 || cfg.InputHeight <= 0 {
		return nil, &detection.ModelLoadError{
			Path:    cfg.ModelPath,
			Backend: Backend,
			Err:     fmt.Errorf("input size required, got %dx%d", cfg.InputWidth, cfg.InputHeight),
		}
	}

	net := gocv.ReadNet(cfg.ModelPath, cfg.ConfigPath)
	if net.Empty() {
		return nil, &detection.ModelLoadError{
			Path:    cfg.ModelPath,
			Backend: Backend,
			Err:     fmt.Errorf("failed to load network"),
		}
	}

	// Set backend and target
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	e := &Engine{
		net:         net,
		inputSize:   image.Pt(cfg.InputWidth, cfg.InputHeight),
		maxRows:     cfg.MaxDetections,
		classOffset: cfg.ClassOffset,
		log:         log.Component("dnn"),
	}
	e.log.Info("model loaded", "path", cfg.ModelPath, "input", fmt.Sprintf("%dx%d", cfg.InputWidth, cfg.InputHeight))
	return e, nil
}

// InputShape implements detection.Engine.
func (e *Engine) InputShape() (int, int) {
	return e.inputSize.Y, e.inputSize.X
}

// Run implements detection.Engine.
func (e *Engine) Run(img image.Image) (*detection.Outputs, error) {
	// ImageToMatRGB yields BGR channel order.
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	// Create blob from image, swapping back to RGB
	blob := gocv.BlobFromImage(mat, 1.0, e.inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	e.net.SetInput(blob, "")

	// Forward pass
	output := e.net.Forward("")
	defer output.Close()

	rows := gocv.GetBlobChannel(output, 0, 0)
	defer rows.Close()

	if rows.Cols() != 7 {
		return nil, fmt.Errorf("%w: expected 7 columns, got %d", detection.ErrMalformedOutput, rows.Cols())
	}

	n := rows.Rows()
	if e.maxRows > 0 && n > e.maxRows {
		n = e.maxRows
	}

	out := &detection.Outputs{
		Boxes:   make([][4]float32, n),
		Classes: make([]float32, n),
		Scores:  make([]float32, n),
		Count:   n,
	}
	for i := 0; i < n; i++ {
		out.Classes[i] = rows.GetFloatAt(i, colClass) + float32(e.classOffset)
		out.Scores[i] = rows.GetFloatAt(i, colScore)
		out.Boxes[i] = [4]float32{
			rows.GetFloatAt(i, colTop),
			rows.GetFloatAt(i, colLeft),
			rows.GetFloatAt(i, colBot),
			rows.GetFloatAt(i, colRight),
		}
	}

	if n > 0 {
		e.log.Debug("forward pass", "rows", n)
	}
	return out, nil
}

// Close releases the network.
func (e *Engine) Close() error {
	return e.net.Close()
}
