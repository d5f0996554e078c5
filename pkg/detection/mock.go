package detection

import (
	"image"
	"sync"
)

// Mock implements Engine for testing.
type Mock struct {
	// Height and Width are returned by InputShape.
	Height, Width int

	// RunFunc is called when Run is invoked.
	RunFunc func(img image.Image) (*Outputs, error)

	// CloseFunc is called when Close is invoked.
	CloseFunc func() error

	mu     sync.Mutex
	runs   int
	closed bool
}

// NewMock creates a mock engine that always returns out.
func NewMock(height, width int, out *Outputs) *Mock {
	return &Mock{
		Height: height,
		Width:  width,
		RunFunc: func(image.Image) (*Outputs, error) {
			return out, nil
		},
	}
}

// InputShape implements Engine.
func (m *Mock) InputShape() (int, int) {
	return m.Height, m.Width
}

// Run calls RunFunc and records the call.
func (m *Mock) Run(img image.Image) (*Outputs, error) {
	m.mu.Lock()
	m.runs++
	m.mu.Unlock()
	if m.RunFunc != nil {
		return m.RunFunc(img)
	}
	return &Outputs{}, nil
}

// Close calls CloseFunc.
func (m *Mock) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Runs returns how many times Run was called.
func (m *Mock) Runs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
