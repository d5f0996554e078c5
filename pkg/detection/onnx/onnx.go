// Package onnx runs SSD detection models exported to ONNX through ONNX
// Runtime.
//
// The model must take a uint8 NHWC image and produce the TF object
// detection outputs: boxes [1,N,4], classes [1,N], scores [1,N] and
// count [1]. Shapes are fixed at open time from the config.
package onnx

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/teslashibe/depthsense/internal/log"
	"github.com/teslashibe/depthsense/pkg/detection"
)

// Backend is the engine name used in errors and logs.
const Backend = "onnxruntime"

// Default tensor names of a TF object detection export.
var (
	DefaultInputName   = "input_tensor"
	DefaultOutputNames = [4]string{"detection_boxes", "detection_classes", "detection_scores", "num_detections"}
)

var envMu sync.Mutex

// Engine is an ONNX Runtime session with pre-allocated tensors.
type Engine struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[uint8]
	boxes   *ort.Tensor[float32]
	classes *ort.Tensor[float32]
	scores  *ort.Tensor[float32]
	count   *ort.Tensor[float32]

	height, width int
	classOffset   int
	log           *slog.Logger
}

// Open creates a session for cfg.ModelPath. cfg.InputWidth, InputHeight
// and MaxDetections fix the tensor shapes.
func Open(cfg detection.Config) (*Engine, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, loadErr(cfg.ModelPath, err)
	}
	if cfg.InputWidth <= 0 || cfg.InputHeight <= 0 || cfg.MaxDetections <= 0 {
		return nil, loadErr(cfg.ModelPath, fmt.Errorf("input size and max detections required"))
	}

	if err := initEnvironment(cfg.LibraryPath); err != nil {
		return nil, loadErr(cfg.ModelPath, err)
	}

	inputName := cfg.InputName
	if inputName == "" {
		inputName = DefaultInputName
	}
	outputNames := cfg.OutputNames
	if outputNames[0] == "" {
		outputNames = DefaultOutputNames
	}

	e := &Engine{
		height:      cfg.InputHeight,
		width:       cfg.InputWidth,
		classOffset: cfg.ClassOffset,
		log:         log.Component("onnx"),
	}

	n := int64(cfg.MaxDetections)
	var err error
	if e.input, err = ort.NewEmptyTensor[uint8](ort.NewShape(1, int64(cfg.InputHeight), int64(cfg.InputWidth), 3)); err != nil {
		return nil, loadErr(cfg.ModelPath, fmt.Errorf("input tensor: %w", err))
	}
	if e.boxes, err = ort.NewEmptyTensor[float32](ort.NewShape(1, n, 4)); err != nil {
		e.Close()
		return nil, loadErr(cfg.ModelPath, fmt.Errorf("boxes tensor: %w", err))
	}
	if e.classes, err = ort.NewEmptyTensor[float32](ort.NewShape(1, n)); err != nil {
		e.Close()
		return nil, loadErr(cfg.ModelPath, fmt.Errorf("classes tensor: %w", err))
	}
	if e.scores, err = ort.NewEmptyTensor[float32](ort.NewShape(1, n)); err != nil {
		e.Close()
		return nil, loadErr(cfg.ModelPath, fmt.Errorf("scores tensor: %w", err))
	}
	if e.count, err = ort.NewEmptyTensor[float32](ort.NewShape(1)); err != nil {
		e.Close()
		return nil, loadErr(cfg.ModelPath, fmt.Errorf("count tensor: %w", err))
	}

	e.session, err = ort.NewAdvancedSession(cfg.ModelPath,
		[]string{inputName}, outputNames[:],
		[]ort.ArbitraryTensor{e.input},
		[]ort.ArbitraryTensor{e.boxes, e.classes, e.scores, e.count},
		nil)
	if err != nil {
		e.Close()
		return nil, loadErr(cfg.ModelPath, fmt.Errorf("create session: %w", err))
	}

	e.log.Info("model loaded", "path", cfg.ModelPath, "input", fmt.Sprintf("%dx%d", e.width, e.height), "max_detections", n)
	return e, nil
}

func initEnvironment(libraryPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}

// InputShape implements detection.Engine.
func (e *Engine) InputShape() (int, int) {
	return e.height, e.width
}

// Run implements detection.Engine.
func (e *Engine) Run(img image.Image) (*detection.Outputs, error) {
	if err := detection.FillRGB(img, e.input.GetData()); err != nil {
		return nil, err
	}

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}

	boxes := e.boxes.GetData()
	classes := e.classes.GetData()
	scores := e.scores.GetData()

	out := &detection.Outputs{
		Boxes:   make([][4]float32, len(scores)),
		Classes: make([]float32, len(classes)),
		Scores:  append([]float32(nil), scores...),
		Count:   int(e.count.GetData()[0]),
	}
	for i := range out.Boxes {
		copy(out.Boxes[i][:], boxes[i*4:i*4+4])
	}
	for i, c := range classes {
		out.Classes[i] = c + float32(e.classOffset)
	}
	return out, nil
}

// Close destroys the session and tensors. The shared runtime environment
// stays up for other engines.
func (e *Engine) Close() error {
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	for _, t := range []interface{ Destroy() error }{e.input, e.boxes, e.classes, e.scores, e.count} {
		if t != nil {
			t.Destroy()
		}
	}
	return nil
}

func loadErr(path string, err error) error {
	return &detection.ModelLoadError{Path: path, Backend: Backend, Err: err}
}
