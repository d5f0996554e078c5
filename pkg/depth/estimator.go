package depth

import (
	"errors"
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"

	"github.com/teslashibe/depthsense/pkg/region"
)

// Defaults for the estimator.
const (
	DefaultSamples   = 500
	DefaultPrecision = 3
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("depth: invalid estimator config")

// Config holds estimator parameters.
type Config struct {
	// Samples is the number of random depth lookups per region. It is the
	// dominant per-detection cost.
	Samples int `json:"samples" yaml:"samples"`

	// Precision is the number of decimal places the estimate is rounded to.
	Precision int `json:"precision" yaml:"precision"`

	// Width and Height are the depth frame dimensions used to clamp samples.
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// DefaultConfig returns the reference configuration for a 640x480 frame.
func DefaultConfig() Config {
	return Config{
		Samples:   DefaultSamples,
		Precision: DefaultPrecision,
		Width:     640,
		Height:    480,
	}
}

// Validate checks the config.
func (c Config) Validate() error {
	switch {
	case c.Samples < 1:
		return fmt.Errorf("%w: samples must be >= 1, got %d", ErrInvalidConfig, c.Samples)
	case c.Precision < 0:
		return fmt.Errorf("%w: precision must be >= 0, got %d", ErrInvalidConfig, c.Precision)
	case c.Width < 1 || c.Height < 1:
		return fmt.Errorf("%w: frame must be at least 1x1, got %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	return nil
}

// Estimate is the representative distance of one region in one frame.
type Estimate struct {
	// Meters is the mean of all samples, holes included as 0, rounded to
	// the configured precision.
	Meters float64 `json:"meters"`

	// SampleCount is the number of lookups averaged.
	SampleCount int `json:"sample_count"`

	// Holes counts samples that had no reading.
	Holes int `json:"holes"`

	// Spread is the sample standard deviation in meters.
	Spread float64 `json:"spread"`
}

// Estimator turns a pixel region of a noisy depth map into one distance by
// fixed-budget Monte Carlo averaging.
//
// Invalid readings are averaged in as 0 rather than skipped, which pulls
// estimates toward the camera when the region has holes. Downstream
// calibration depends on this, so it is kept.
//
// An Estimator reuses its sample buffer and is not safe for concurrent use.
type Estimator struct {
	config  Config
	sampler Sampler
	samples []float64
}

// NewEstimator creates an estimator. A nil sampler gets a time-independent
// default seed so runs are reproducible.
func NewEstimator(cfg Config, sampler Sampler) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sampler == nil {
		sampler = NewRandSampler(1)
	}
	return &Estimator{
		config:  cfg,
		sampler: sampler,
		samples: make([]float64, cfg.Samples),
	}, nil
}

// Config returns the estimator configuration.
func (e *Estimator) Config() Config {
	return e.config
}

// Estimate samples r in p and returns the rounded mean distance.
// It never fails; a degenerate region samples its single point N times.
func (e *Estimator) Estimate(r region.Region, p Provider) Estimate {
	n := e.config.Samples
	holes := 0

	for i := 0; i < n; i++ {
		x := region.Clamp(e.sampler.IntInRange(r.Left, r.Right), e.config.Width)
		y := region.Clamp(e.sampler.IntInRange(r.Top, r.Bottom), e.config.Height)

		v := sanitize(p.DistanceAt(x, y))
		if v == 0 {
			holes++
		}
		e.samples[i] = v
	}

	mean := stat.Mean(e.samples, nil)
	spread := 0.0
	if n > 1 {
		spread = stat.StdDev(e.samples, nil)
	}

	return Estimate{
		Meters:      Round(mean, e.config.Precision),
		SampleCount: n,
		Holes:       holes,
		Spread:      Round(spread, e.config.Precision),
	}
}

// Round rounds v to prec decimal places, halves to even.
func Round(v float64, prec int) float64 {
	return scalar.RoundEven(v, prec)
}

// FormatMeters renders a distance with a fixed number of decimals and an
// "m" suffix.
func FormatMeters(m float64, prec int) string {
	return strconv.FormatFloat(Round(m, prec), 'f', prec, 64) + "m"
}
