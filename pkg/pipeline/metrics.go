package pipeline

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// historySize is how many processed frames feed the averages.
const historySize = 100

// Stats is a snapshot of loop counters.
type Stats struct {
	RunID string `json:"run_id"`
	State State  `json:"state"`

	Acquired          uint64 `json:"acquired"`           // Complete pairs received
	Gaps              uint64 `json:"gaps"`               // Incomplete pairs and acquire timeouts
	Skipped           uint64 `json:"skipped"`            // Complete pairs dropped by stride
	Processed         uint64 `json:"processed"`          // Frames run through the detector
	InferenceFailures uint64 `json:"inference_failures"` // Frames shown without annotations
	RenderFailures    uint64 `json:"render_failures"`
	Detections        uint64 `json:"detections"`

	LastLatency time.Duration `json:"last_latency"`
	AvgLatency  time.Duration `json:"avg_latency"`
	FPS         float64       `json:"fps"` // Processed frames per second over the history window

	Started time.Time `json:"started"`
}

type sample struct {
	at      time.Time
	latency time.Duration
}

// Metrics collects loop counters. It is goroutine-safe so status
// handlers can read while the loop writes.
type Metrics struct {
	mu      sync.Mutex
	clock   clock.Clock
	stats   Stats
	history []sample
}

// NewMetrics creates a collector timed by c.
func NewMetrics(c clock.Clock) *Metrics {
	if c == nil {
		c = clock.New()
	}
	return &Metrics{
		clock:   c,
		history: make([]sample, 0, historySize),
	}
}

// Now returns the collector's clock time.
func (m *Metrics) Now() time.Time {
	return m.clock.Now()
}

func (m *Metrics) start(runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.RunID = runID
	m.stats.Started = m.clock.Now()
}

func (m *Metrics) setState(s State) {
	m.mu.Lock()
	m.stats.State = s
	m.mu.Unlock()
}

// MarkGap records a missing or late pair.
func (m *Metrics) MarkGap() {
	m.mu.Lock()
	m.stats.Gaps++
	m.mu.Unlock()
}

// MarkAcquired records a complete pair.
func (m *Metrics) MarkAcquired() {
	m.mu.Lock()
	m.stats.Acquired++
	m.mu.Unlock()
}

// MarkSkipped records a complete pair dropped by stride.
func (m *Metrics) MarkSkipped() {
	m.mu.Lock()
	m.stats.Skipped++
	m.mu.Unlock()
}

// MarkInferenceFailure records a frame whose detection failed.
func (m *Metrics) MarkInferenceFailure() {
	m.mu.Lock()
	m.stats.InferenceFailures++
	m.mu.Unlock()
}

// MarkRenderFailure records a frame that could not be drawn or shown.
func (m *Metrics) MarkRenderFailure() {
	m.mu.Lock()
	m.stats.RenderFailures++
	m.mu.Unlock()
}

// MarkProcessed records a finished frame that started at start.
func (m *Metrics) MarkProcessed(start time.Time, detections int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	latency := now.Sub(start)

	m.stats.Processed++
	m.stats.Detections += uint64(detections)
	m.stats.LastLatency = latency

	m.history = append(m.history, sample{at: now, latency: latency})
	if len(m.history) > historySize {
		m.history = m.history[1:]
	}
}

// Snapshot returns the current counters with averages over recent frames.
func (m *Metrics) Snapshot() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.stats
	n := len(m.history)
	if n == 0 {
		return s
	}

	var total time.Duration
	for _, h := range m.history {
		total += h.latency
	}
	s.AvgLatency = total / time.Duration(n)

	if n > 1 {
		if span := m.history[n-1].at.Sub(m.history[0].at); span > 0 {
			s.FPS = float64(n-1) / span.Seconds()
		}
	}
	return s
}
