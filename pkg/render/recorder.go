package render

import (
	"image"
	"sync"
)

// Recorder implements Renderer by remembering what it was given. Useful
// in tests and for headless runs.
type Recorder struct {
	// QuitAfter makes PollQuit return true once this many frames were
	// shown. Zero never quits.
	QuitAfter int

	// DrawFunc overrides Draw when set.
	DrawFunc func(img image.Image, anns []Annotation) (image.Image, error)

	mu     sync.Mutex
	frames [][]Annotation
	shown  int
	closed bool
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Draw records anns and returns img unchanged.
func (r *Recorder) Draw(img image.Image, anns []Annotation) (image.Image, error) {
	r.mu.Lock()
	r.frames = append(r.frames, append([]Annotation(nil), anns...))
	r.mu.Unlock()
	if r.DrawFunc != nil {
		return r.DrawFunc(img, anns)
	}
	return img, nil
}

// Show counts the frame.
func (r *Recorder) Show(image.Image) error {
	r.mu.Lock()
	r.shown++
	r.mu.Unlock()
	return nil
}

// PollQuit implements Renderer.
func (r *Recorder) PollQuit() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.QuitAfter > 0 && r.shown >= r.QuitAfter
}

// Close implements Renderer.
func (r *Recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

// Frames returns the annotations of every drawn frame in order.
func (r *Recorder) Frames() [][]Annotation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]Annotation(nil), r.frames...)
}

// Shown returns how many frames were shown.
func (r *Recorder) Shown() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shown
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
