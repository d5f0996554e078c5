// Package tflite runs SSD-style TensorFlow Lite detection models.
//
// The model must have one NHWC image input and the four standard
// post-processed outputs: boxes [1,N,4], classes [1,N], scores [1,N] and
// count [1].
package tflite

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/mattn/go-tflite"

	"github.com/teslashibe/depthsense/internal/log"
	"github.com/teslashibe/depthsense/pkg/detection"
)

// Backend is the engine name used in errors and logs.
const Backend = "tflite"

// Output tensor order of the TFLite detection post-processing op.
const (
	outputBoxes = iota
	outputClasses
	outputScores
	outputCount
)

// Float models expect values scaled to [-1, 1].
const (
	floatMean = 127.5
	floatStd  = 127.5
)

// Engine is a TFLite interpreter holding one SSD model.
type Engine struct {
	model       *tflite.Model
	options     *tflite.InterpreterOptions
	interpreter *tflite.Interpreter
	input       *tflite.Tensor

	height, width int
	classOffset   int
	log           *slog.Logger
}

// Open loads the model at cfg.ModelPath and allocates its tensors.
func Open(cfg detection.Config) (*Engine, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, loadErr(cfg.ModelPath, err)
	}

	e := &Engine{
		classOffset: cfg.ClassOffset,
		log:         log.Component("tflite"),
	}

	e.model = tflite.NewModelFromFile(cfg.ModelPath)
	if e.model == nil {
		return nil, loadErr(cfg.ModelPath, errors.New("cannot parse flatbuffer"))
	}

	e.options = tflite.NewInterpreterOptions()
	if cfg.NumThreads > 0 {
		e.options.SetNumThread(cfg.NumThreads)
	}
	e.options.SetErrorReporter(func(msg string, _ interface{}) {
		e.log.Warn("interpreter", "msg", msg)
	}, nil)

	e.interpreter = tflite.NewInterpreter(e.model, e.options)
	if e.interpreter == nil {
		e.Close()
		return nil, loadErr(cfg.ModelPath, errors.New("cannot create interpreter"))
	}
	if status := e.interpreter.AllocateTensors(); status != tflite.OK {
		e.Close()
		return nil, loadErr(cfg.ModelPath, fmt.Errorf("allocate tensors: status %d", status))
	}

	e.input = e.interpreter.GetInputTensor(0)
	if e.input == nil || e.input.NumDims() != 4 {
		e.Close()
		return nil, loadErr(cfg.ModelPath, errors.New("expected one NHWC image input"))
	}
	if c := e.input.Dim(3); c != 3 {
		e.Close()
		return nil, loadErr(cfg.ModelPath, fmt.Errorf("expected 3 input channels, got %d", c))
	}
	if n := e.interpreter.GetOutputTensorCount(); n < 4 {
		e.Close()
		return nil, loadErr(cfg.ModelPath, fmt.Errorf("expected 4 outputs, got %d", n))
	}

	e.height = e.input.Dim(1)
	e.width = e.input.Dim(2)

	e.log.Info("model loaded",
		"path", cfg.ModelPath,
		"input", fmt.Sprintf("%dx%d", e.width, e.height),
		"type", fmt.Sprint(e.input.Type()))

	return e, nil
}

// InputShape implements detection.Engine.
func (e *Engine) InputShape() (int, int) {
	return e.height, e.width
}

// Run implements detection.Engine.
func (e *Engine) Run(img image.Image) (*detection.Outputs, error) {
	switch e.input.Type() {
	case tflite.UInt8:
		if err := detection.FillRGB(img, e.input.UInt8s()); err != nil {
			return nil, err
		}
	case tflite.Float32:
		if err := detection.FillRGBFloat(img, e.input.Float32s(), floatMean, floatStd); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported input type %v", e.input.Type())
	}

	if status := e.interpreter.Invoke(); status != tflite.OK {
		return nil, fmt.Errorf("invoke: status %d", status)
	}

	boxes := e.interpreter.GetOutputTensor(outputBoxes).Float32s()
	classes := e.interpreter.GetOutputTensor(outputClasses).Float32s()
	scores := e.interpreter.GetOutputTensor(outputScores).Float32s()
	count := e.interpreter.GetOutputTensor(outputCount).Float32s()
	if len(count) == 0 || len(boxes) < 4*len(scores) {
		return nil, detection.ErrMalformedOutput
	}

	return decode(boxes, classes, scores, int(count[0]), e.classOffset), nil
}

// decode reshapes the flat output tensors into detection.Outputs.
func decode(boxes, classes, scores []float32, count, classOffset int) *detection.Outputs {
	n := len(scores)
	out := &detection.Outputs{
		Boxes:   make([][4]float32, n),
		Classes: make([]float32, len(classes)),
		Scores:  scores,
		Count:   count,
	}
	for i := 0; i < n; i++ {
		copy(out.Boxes[i][:], boxes[i*4:i*4+4])
	}
	for i, c := range classes {
		out.Classes[i] = c + float32(classOffset)
	}
	return out
}

// Close releases the interpreter, options and model.
func (e *Engine) Close() error {
	if e.interpreter != nil {
		e.interpreter.Delete()
		e.interpreter = nil
	}
	if e.options != nil {
		e.options.Delete()
		e.options = nil
	}
	if e.model != nil {
		e.model.Delete()
		e.model = nil
	}
	return nil
}

func loadErr(path string, err error) error {
	return &detection.ModelLoadError{Path: path, Backend: Backend, Err: err}
}
