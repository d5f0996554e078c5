package pipeline

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Snapshot(t *testing.T) {
	mock := clock.NewMock()
	m := NewMetrics(mock)

	assert.Zero(t, m.Snapshot().FPS)

	for i := 0; i < 5; i++ {
		start := mock.Now()
		mock.Add(20 * time.Millisecond)
		m.MarkProcessed(start, 2)
		mock.Add(80 * time.Millisecond)
	}
	m.MarkGap()
	m.MarkSkipped()
	m.MarkInferenceFailure()

	s := m.Snapshot()
	assert.Equal(t, uint64(5), s.Processed)
	assert.Equal(t, uint64(10), s.Detections)
	assert.Equal(t, uint64(1), s.Gaps)
	assert.Equal(t, uint64(1), s.Skipped)
	assert.Equal(t, uint64(1), s.InferenceFailures)
	assert.Equal(t, 20*time.Millisecond, s.LastLatency)
	assert.Equal(t, 20*time.Millisecond, s.AvgLatency)
	assert.InDelta(t, 10.0, s.FPS, 1e-9)
}

func TestMetrics_HistoryBounded(t *testing.T) {
	mock := clock.NewMock()
	m := NewMetrics(mock)

	for i := 0; i < historySize+50; i++ {
		mock.Add(time.Millisecond)
		m.MarkProcessed(mock.Now(), 0)
	}
	assert.Len(t, m.history, historySize)
	assert.Equal(t, uint64(historySize+50), m.Snapshot().Processed)
}

func TestStats_JSON(t *testing.T) {
	s := Stats{RunID: "abc", State: Running, Processed: 3}
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"state":"running"`)
	assert.Contains(t, string(b), `"processed":3`)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "stopping", Stopping.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"threshold above 1", func(c *Config) { c.Threshold = 1.5 }},
		{"negative threshold", func(c *Config) { c.Threshold = -0.1 }},
		{"zero stride", func(c *Config) { c.Stride = 0 }},
		{"negative timeout", func(c *Config) { c.AcquireTimeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
