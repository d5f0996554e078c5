package detection

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/teslashibe/depthsense/pkg/region"
)

// Adapter runs an Engine and filters its output by score.
type Adapter struct {
	engine  Engine
	backend string
	mu      sync.Mutex // Protects inference
	closed  bool
}

// NewAdapter wraps an engine. backend names it in errors.
func NewAdapter(engine Engine, backend string) *Adapter {
	return &Adapter{engine: engine, backend: backend}
}

// InputShape returns the image size Detect expects.
func (a *Adapter) InputShape() (height, width int) {
	return a.engine.InputShape()
}

// Backend returns the engine name.
func (a *Adapter) Backend() string {
	return a.backend
}

// Detect runs one forward pass on img, which must already be resized to
// InputShape, and returns every detection with score >= threshold, in
// model order. Only one call runs at a time.
func (a *Adapter) Detect(img image.Image, threshold float64) ([]Detection, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, ErrClosed
	}

	h, w := a.engine.InputShape()
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		return nil, fmt.Errorf("%w: got %dx%d, want %dx%d", ErrInputSize, b.Dx(), b.Dy(), w, h)
	}

	out, err := a.engine.Run(img)
	if err != nil {
		var ie *InferenceError
		if errors.As(err, &ie) {
			return nil, err
		}
		return nil, &InferenceError{Backend: a.backend, Err: err}
	}
	if out == nil {
		return nil, &InferenceError{Backend: a.backend, Err: ErrMalformedOutput}
	}

	return Filter(out, threshold), nil
}

// Filter emits a Detection for index i when i is below the valid count and
// Scores[i] >= threshold. Indices beyond any of the arrays are ignored.
func Filter(out *Outputs, threshold float64) []Detection {
	n := min(out.Count, len(out.Boxes), len(out.Classes), len(out.Scores))

	var dets []Detection
	for i := 0; i < n; i++ {
		score := float64(out.Scores[i])
		if !(score >= threshold) { // NaN never passes
			continue
		}
		b := out.Boxes[i]
		dets = append(dets, Detection{
			ClassID: int(out.Classes[i]),
			Score:   score,
			Box: region.Box{
				Top:    float64(b[0]),
				Left:   float64(b[1]),
				Bottom: float64(b[2]),
				Right:  float64(b[3]),
			},
		})
	}
	return dets
}

// Close releases the engine. Further Detect calls return ErrClosed.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.engine.Close()
}
