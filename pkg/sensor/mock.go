package sensor

import (
	"context"
	"sync"
)

// Mock implements Sensor for testing.
type Mock struct {
	// StartFunc is called when Start is invoked.
	StartFunc func(ctx context.Context, cfg Config) error

	// WaitFunc is called when WaitForFramePair is invoked. n counts calls
	// from 1.
	WaitFunc func(ctx context.Context, n int) (*FramePair, error)

	// StopFunc is called when Stop is invoked.
	StopFunc func() error

	mu      sync.Mutex
	started bool
	stops   int
	waits   int
	config  Config
}

// NewMock creates a mock that returns pair on every wait.
func NewMock(pair *FramePair) *Mock {
	return &Mock{
		WaitFunc: func(context.Context, int) (*FramePair, error) {
			return pair, nil
		},
	}
}

// Start implements Sensor.
func (m *Mock) Start(ctx context.Context, cfg Config) error {
	m.mu.Lock()
	m.started = true
	m.config = cfg
	m.mu.Unlock()
	if m.StartFunc != nil {
		return m.StartFunc(ctx, cfg)
	}
	return nil
}

// WaitForFramePair implements Sensor.
func (m *Mock) WaitForFramePair(ctx context.Context) (*FramePair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.waits++
	n := m.waits
	m.mu.Unlock()
	if m.WaitFunc != nil {
		return m.WaitFunc(ctx, n)
	}
	return nil, ErrIncompleteFrame
}

// Stop implements Sensor.
func (m *Mock) Stop() error {
	m.mu.Lock()
	m.stops++
	m.mu.Unlock()
	if m.StopFunc != nil {
		return m.StopFunc()
	}
	return nil
}

// Started reports whether Start was called.
func (m *Mock) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// Stops returns how many times Stop was called.
func (m *Mock) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// Waits returns how many times WaitForFramePair was called.
func (m *Mock) Waits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waits
}

// Config returns the config passed to Start.
func (m *Mock) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}
