package depth

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/depthsense/pkg/region"
)

func newEstimator(t *testing.T, samples int, sampler Sampler) *Estimator {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Samples = samples
	est, err := NewEstimator(cfg, sampler)
	require.NoError(t, err)
	return est
}

func TestEstimate_ConstantDepth(t *testing.T) {
	regions := []region.Region{
		{Top: 48, Left: 64, Bottom: 240, Right: 320},
		{Top: 0, Left: 0, Bottom: 479, Right: 639},
		{Top: 100, Left: 100, Bottom: 101, Right: 101},
	}

	for _, v := range []float64{0, 0.3, 1.2346, 2.0, 7.777} {
		for _, n := range []int{1, 2, 17, 500} {
			est := newEstimator(t, n, NewRandSampler(42))
			for _, r := range regions {
				got := est.Estimate(r, Constant(v))
				assert.Equal(t, Round(v, DefaultPrecision), got.Meters, "v=%v n=%d region=%+v", v, n, r)
				assert.Equal(t, n, got.SampleCount)
				assert.Zero(t, got.Spread)
			}
		}
	}
}

func TestEstimate_DegenerateRegion(t *testing.T) {
	// Depth encodes the coordinate so we can tell which pixel was read.
	p := ProviderFunc(func(x, y int) float64 {
		return float64(x) + float64(y)/1000
	})
	point := region.Region{Top: 7, Left: 300, Bottom: 7, Right: 300}

	for _, n := range []int{1, 3, 500} {
		est := newEstimator(t, n, NewRandSampler(9))

		done := make(chan Estimate, 1)
		go func() { done <- est.Estimate(point, p) }()

		select {
		case got := <-done:
			assert.Equal(t, 300.007, got.Meters)
			assert.Equal(t, n, got.SampleCount)
		case <-time.After(2 * time.Second):
			t.Fatalf("Estimate hung on degenerate region with n=%d", n)
		}
	}
}

func TestEstimate_ZeroWidthRegion(t *testing.T) {
	column := region.Region{Top: 0, Left: 10, Bottom: 479, Right: 10}
	p := ProviderFunc(func(x, y int) float64 {
		if x != 10 {
			t.Fatalf("sampled x=%d outside zero-width column", x)
		}
		return 1.5
	})

	got := newEstimator(t, 200, NewRandSampler(3)).Estimate(column, p)
	assert.Equal(t, 1.5, got.Meters)
}

func TestEstimate_HolesPullTowardZero(t *testing.T) {
	// Offsets alternate between the two columns of a 2-pixel-wide region.
	sampler := NewSequenceSampler(0, 1, 0, 1)
	r := region.Region{Top: 0, Left: 0, Bottom: 0, Right: 1}
	p := ProviderFunc(func(x, y int) float64 {
		if x == 0 {
			return 0 // hole
		}
		return 4.0
	})

	got := newEstimator(t, 4, sampler).Estimate(r, p)
	assert.Equal(t, 2.0, got.Meters, "holes are averaged in as zero")
	assert.Equal(t, 2, got.Holes)
	assert.Equal(t, 4, got.SampleCount)
}

func TestEstimate_InvalidReadingsCountAsHoles(t *testing.T) {
	readings := []float64{math.NaN(), -1, math.Inf(1), 3}
	i := 0
	p := ProviderFunc(func(x, y int) float64 {
		v := readings[i%len(readings)]
		i++
		return v
	})

	got := newEstimator(t, 4, NewRandSampler(1)).Estimate(region.Region{Right: 5, Bottom: 5}, p)
	assert.Equal(t, 0.75, got.Meters)
	assert.Equal(t, 3, got.Holes)
}

func TestEstimate_ClampsOutOfFrameSamples(t *testing.T) {
	cfg := Config{Samples: 50, Precision: 3, Width: 10, Height: 10}
	est, err := NewEstimator(cfg, NewRandSampler(5))
	require.NoError(t, err)

	p := ProviderFunc(func(x, y int) float64 {
		if x < 0 || x > 9 || y < 0 || y > 9 {
			t.Fatalf("sampled (%d,%d) outside 10x10 frame", x, y)
		}
		return 1
	})
	est.Estimate(region.Region{Top: -20, Left: -20, Bottom: 40, Right: 40}, p)
}

func TestEstimate_Deterministic(t *testing.T) {
	m := NewMap(64, 48)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			m.Set(x, y, uint16(1000+x*10+y))
		}
	}
	r := region.Region{Top: 5, Left: 5, Bottom: 40, Right: 60}
	cfg := Config{Samples: 500, Precision: 3, Width: 64, Height: 48}

	a, err := NewEstimator(cfg, NewRandSampler(77))
	require.NoError(t, err)
	b, err := NewEstimator(cfg, NewRandSampler(77))
	require.NoError(t, err)

	first, second := a.Estimate(r, m), b.Estimate(r, m)
	assert.Equal(t, first, second)
	assert.InDelta(t, 1.35, first.Meters, 0.05)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"single sample", func(c *Config) { c.Samples = 1 }, false},
		{"zero samples", func(c *Config) { c.Samples = 0 }, true},
		{"negative precision", func(c *Config) { c.Precision = -1 }, true},
		{"empty frame", func(c *Config) { c.Width = 0 }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidConfig))
			} else {
				assert.NoError(t, err)
			}
		})
	}

	_, err := NewEstimator(Config{}, nil)
	assert.Error(t, err)
}

func TestFormatMeters(t *testing.T) {
	tests := []struct {
		m    float64
		prec int
		want string
	}{
		{2.0, 3, "2.000m"},
		{2.0, 1, "2.0m"},
		{1.23456, 3, "1.235m"},
		{0.0004, 3, "0.000m"},
		{12.5, 0, "12m"},
		{13.5, 0, "14m"},
	}

	for _, tc := range tests {
		if got := FormatMeters(tc.m, tc.prec); got != tc.want {
			t.Errorf("FormatMeters(%v, %d) = %q, want %q", tc.m, tc.prec, got, tc.want)
		}
	}
}
