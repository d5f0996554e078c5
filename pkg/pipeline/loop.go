// Package pipeline runs the per-frame fusion loop: acquire an aligned
// color and depth pair, detect objects, range each one and render the
// result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"go.uber.org/multierr"

	"github.com/teslashibe/depthsense/internal/log"
	"github.com/teslashibe/depthsense/pkg/depth"
	"github.com/teslashibe/depthsense/pkg/detection"
	"github.com/teslashibe/depthsense/pkg/region"
	"github.com/teslashibe/depthsense/pkg/render"
	"github.com/teslashibe/depthsense/pkg/sensor"
)

// Detector finds objects in an image of exactly InputShape.
// *detection.Adapter implements it.
type Detector interface {
	InputShape() (height, width int)
	Detect(img image.Image, threshold float64) ([]detection.Detection, error)
	Close() error
}

// Labeler names class ids. labels.Table implements it.
type Labeler interface {
	Name(id int) (string, error)
}

// Components are the loop's collaborators. The loop owns Sensor,
// Detector and Renderer from Run onward and releases them when it exits.
type Components struct {
	Sensor    sensor.Sensor
	Detector  Detector
	Labels    Labeler
	Estimator *depth.Estimator
	Renderer  render.Renderer

	// Clock times iterations. Defaults to the wall clock.
	Clock clock.Clock

	// Logger defaults to the "pipeline" component logger.
	Logger *slog.Logger
}

// Loop is the frame loop controller. It runs on a single goroutine.
type Loop struct {
	cfg   Config
	c     Components
	log   *slog.Logger
	runID string

	metrics *Metrics

	mu    sync.Mutex
	state State
}

// New creates a loop. The sensor must already be started.
func New(cfg Config, c Components) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case c.Sensor == nil:
		return nil, fmt.Errorf("%w: sensor", ErrMissingComponent)
	case c.Detector == nil:
		return nil, fmt.Errorf("%w: detector", ErrMissingComponent)
	case c.Labels == nil:
		return nil, fmt.Errorf("%w: labels", ErrMissingComponent)
	case c.Estimator == nil:
		return nil, fmt.Errorf("%w: estimator", ErrMissingComponent)
	case c.Renderer == nil:
		return nil, fmt.Errorf("%w: renderer", ErrMissingComponent)
	}

	if c.Clock == nil {
		c.Clock = clock.New()
	}
	runID := uuid.NewString()

	logger := c.Logger
	if logger == nil {
		logger = log.Component("pipeline")
	}

	m := NewMetrics(c.Clock)
	m.start(runID)

	return &Loop{
		cfg:     cfg,
		c:       c,
		log:     logger.With("run_id", runID),
		runID:   runID,
		metrics: m,
	}, nil
}

// RunID identifies this loop in logs and status.
func (l *Loop) RunID() string {
	return l.runID
}

// State returns the lifecycle state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Stats returns a metrics snapshot. Safe to call from any goroutine.
func (l *Loop) Stats() Stats {
	s := l.metrics.Snapshot()
	s.State = l.State()
	return s
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
	l.metrics.setState(s)
}

// Run processes frames until ctx is done, the renderer reports a quit
// request, or a fatal error occurs. Cancellation and quit return nil.
// The sensor is stopped and the renderer and detector closed on every
// exit path; their errors are joined into the result.
func (l *Loop) Run(ctx context.Context) (err error) {
	l.mu.Lock()
	if l.state != Idle {
		l.mu.Unlock()
		return ErrAlreadyRunning
	}
	l.state = Running
	l.mu.Unlock()
	l.metrics.setState(Running)

	l.log.Info("frame loop started",
		"threshold", l.cfg.Threshold,
		"stride", l.cfg.Stride,
		"samples", l.c.Estimator.Config().Samples)

	defer func() {
		l.setState(Stopping)
		err = multierr.Combine(err, l.release())
		l.setState(Stopped)

		s := l.metrics.Snapshot()
		l.log.Info("frame loop stopped",
			"processed", s.Processed,
			"gaps", s.Gaps,
			"inference_failures", s.InferenceFailures,
			"error", err)
	}()

	var complete uint64
	for {
		if ctx.Err() != nil {
			return nil
		}

		pair, err := l.acquire(ctx)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return nil
		case sensor.IsGap(err):
			l.metrics.MarkGap()
			l.log.Debug("frame gap", "error", err)
			if l.c.Renderer.PollQuit() {
				return nil
			}
			continue
		default:
			return err
		}

		l.metrics.MarkAcquired()
		complete++
		if (complete-1)%uint64(l.cfg.Stride) != 0 {
			l.metrics.MarkSkipped()
			if l.c.Renderer.PollQuit() {
				return nil
			}
			continue
		}

		if err := l.process(pair); err != nil {
			return err
		}

		if l.c.Renderer.PollQuit() {
			l.log.Info("quit requested")
			return nil
		}
	}
}

// acquire waits for one complete pair. Incomplete pairs and timeouts
// come back as errors wrapping sensor.ErrIncompleteFrame; anything else
// the sensor reports is a *sensor.Error.
func (l *Loop) acquire(ctx context.Context) (*sensor.FramePair, error) {
	wctx := ctx
	if l.cfg.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, l.cfg.AcquireTimeout)
		defer cancel()
	}

	pair, err := l.c.Sensor.WaitForFramePair(wctx)
	if err != nil {
		if ctx.Err() != nil || sensor.IsGap(err) {
			return nil, err
		}
		if errors.Is(err, context.DeadlineExceeded) && wctx.Err() != nil {
			return nil, fmt.Errorf("no pair within %v: %w", l.cfg.AcquireTimeout, sensor.ErrIncompleteFrame)
		}
		var se *sensor.Error
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, &sensor.Error{Source: "sensor", Op: "wait", Err: err}
	}
	if !pair.Complete() {
		return nil, fmt.Errorf("pair %d: %w", pair.Seq, sensor.ErrIncompleteFrame)
	}
	return pair, nil
}

// process runs detection, ranging and rendering for one pair. The only
// errors it returns are fatal.
func (l *Loop) process(pair *sensor.FramePair) error {
	start := l.metrics.Now()

	anns, err := l.annotate(pair)
	if err != nil {
		return err
	}

	drawn, err := l.c.Renderer.Draw(pair.Color, anns)
	if err == nil {
		err = l.c.Renderer.Show(drawn)
	}
	if err != nil {
		l.metrics.MarkRenderFailure()
		l.log.Warn("render failed", "seq", pair.Seq, "error", err)
	}

	l.metrics.MarkProcessed(start, len(anns))
	return nil
}

// annotate detects and ranges every object in pair. Inference failures
// yield no annotations; an unknown class id is fatal.
func (l *Loop) annotate(pair *sensor.FramePair) ([]render.Annotation, error) {
	h, w := l.c.Detector.InputShape()
	input := fit(pair.Color, w, h)

	dets, err := l.c.Detector.Detect(input, l.cfg.Threshold)
	if err != nil {
		if errors.Is(err, detection.ErrClosed) {
			return nil, err
		}
		l.metrics.MarkInferenceFailure()
		l.log.Warn("inference failed, skipping annotations", "seq", pair.Seq, "error", err)
		return nil, nil
	}

	ecfg := l.c.Estimator.Config()
	anns := make([]render.Annotation, 0, len(dets))
	for _, d := range dets {
		r := region.ToPixels(d.Box, ecfg.Width, ecfg.Height)
		est := l.c.Estimator.Estimate(r, pair.Depth)

		name, err := l.c.Labels.Name(d.ClassID)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", pair.Seq, err)
		}

		anns = append(anns, render.Annotation{
			Label:        name,
			ClassID:      d.ClassID,
			Score:        d.Score,
			Region:       r,
			Distance:     est,
			LabelText:    render.LabelText(name, d.Score),
			DistanceText: depth.FormatMeters(est.Meters, ecfg.Precision),
		})
		l.log.Debug("object",
			"seq", pair.Seq,
			"label", name,
			"score", d.Score,
			"meters", est.Meters,
			"holes", est.Holes)
	}
	return anns, nil
}

// release stops the sensor and closes the renderer and detector.
func (l *Loop) release() error {
	return multierr.Combine(
		l.c.Sensor.Stop(),
		l.c.Renderer.Close(),
		l.c.Detector.Close(),
	)
}

// fit scales img to exactly w x h, bilinear. Images already that size
// pass through.
func fit(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h && b.Min == (image.Point{}) {
		return img
	}
	return resize.Resize(uint(w), uint(h), img, resize.Bilinear)
}
