// Package replay plays back recorded color and depth frame pairs from a
// directory.
//
// A recording holds files named <stem>_color.{png,jpg} and
// <stem>_depth.png, where the depth image is a single-channel 16-bit PNG
// of raw sensor counts. Pairs play in lexical stem order. A color frame
// without its depth file yields an incomplete pair.
package replay

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"gocv.io/x/gocv"

	"github.com/teslashibe/depthsense/internal/log"
	"github.com/teslashibe/depthsense/pkg/depth"
	"github.com/teslashibe/depthsense/pkg/sensor"
)

// Source names this sensor in errors.
const Source = "replay"

// Options configure playback.
type Options struct {
	// Dir holds the recording.
	Dir string

	// Loop restarts from the first pair after the last one.
	Loop bool

	// Pace throttles delivery to the configured FPS.
	Pace bool

	// Clock drives pacing and timestamps. Defaults to the wall clock.
	Clock clock.Clock
}

// Sensor replays a recording.
type Sensor struct {
	opts  Options
	clock clock.Clock
	log   *slog.Logger

	mu      sync.Mutex
	cfg     sensor.Config
	stems   []string
	next    int
	seq     uint64
	due     time.Time
	running bool
}

// New creates a replay sensor. Nothing is read until Start.
func New(opts Options) *Sensor {
	c := opts.Clock
	if c == nil {
		c = clock.New()
	}
	return &Sensor{
		opts:  opts,
		clock: c,
		log:   log.Component("replay"),
	}
}

// Start implements sensor.Sensor. It indexes the recording and checks the
// first color frame matches cfg.
func (s *Sensor) Start(ctx context.Context, cfg sensor.Config) error {
	if err := cfg.Validate(); err != nil {
		return &sensor.Error{Source: Source, Op: "start", Err: err}
	}

	stems, err := index(s.opts.Dir)
	if err != nil {
		return &sensor.Error{Source: Source, Op: "start", Err: err}
	}

	first := readColor(s.colorPath(stems[0]))
	defer first.Close()
	if first.Empty() {
		return &sensor.Error{Source: Source, Op: "start", Err: fmt.Errorf("unreadable color frame %s", stems[0])}
	}
	if first.Cols() != cfg.Width || first.Rows() != cfg.Height {
		return &sensor.Error{Source: Source, Op: "start",
			Err: fmt.Errorf("recording is %dx%d, stream configured for %dx%d", first.Cols(), first.Rows(), cfg.Width, cfg.Height)}
	}

	s.mu.Lock()
	s.cfg = cfg
	s.stems = stems
	s.next = 0
	s.seq = 0
	s.due = time.Time{}
	s.running = true
	s.mu.Unlock()

	s.log.Info("replay started", "dir", s.opts.Dir, "pairs", len(stems), "loop", s.opts.Loop, "fps", cfg.FPS)
	return nil
}

// WaitForFramePair implements sensor.Sensor.
func (s *Sensor) WaitForFramePair(ctx context.Context) (*sensor.FramePair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		if s.stems == nil {
			return nil, sensor.ErrNotStarted
		}
		return nil, sensor.ErrStopped
	}

	if s.next >= len(s.stems) {
		if !s.opts.Loop {
			return nil, &sensor.Error{Source: Source, Op: "read", Err: fmt.Errorf("end of recording after %d pairs", s.seq)}
		}
		s.next = 0
	}

	if err := s.pace(ctx); err != nil {
		return nil, err
	}

	stem := s.stems[s.next]
	s.next++
	s.seq++

	pair := &sensor.FramePair{Seq: s.seq, Timestamp: s.clock.Now()}

	color := readColor(s.colorPath(stem))
	defer color.Close()
	if !color.Empty() {
		img, err := color.ToImage()
		if err != nil {
			return nil, &sensor.Error{Source: Source, Op: "decode", Err: err}
		}
		pair.Color = img
	}

	if m, err := readDepth(filepath.Join(s.opts.Dir, stem+"_depth.png"), s.cfg.DepthScale); err == nil {
		pair.Depth = m
	} else {
		s.log.Debug("depth frame missing", "stem", stem, "error", err)
	}

	if !pair.Complete() {
		return pair, fmt.Errorf("pair %s: %w", stem, sensor.ErrIncompleteFrame)
	}
	return pair, nil
}

// pace blocks until the next frame is due. Caller holds s.mu.
func (s *Sensor) pace(ctx context.Context) error {
	if !s.opts.Pace || s.cfg.FPS <= 0 {
		return nil
	}

	interval := time.Second / time.Duration(s.cfg.FPS)
	now := s.clock.Now()
	if s.due.IsZero() || now.After(s.due) {
		s.due = now
	}

	if wait := s.due.Sub(now); wait > 0 {
		timer := s.clock.Timer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	s.due = s.due.Add(interval)
	return nil
}

// Stop implements sensor.Sensor.
func (s *Sensor) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.running = false
		s.log.Info("replay stopped", "delivered", s.seq)
	}
	return nil
}

// Pairs returns how many pairs the recording holds.
func (s *Sensor) Pairs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stems)
}

func (s *Sensor) colorPath(stem string) string {
	for _, ext := range []string{".png", ".jpg", ".jpeg"} {
		p := filepath.Join(s.opts.Dir, stem+"_color"+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(s.opts.Dir, stem+"_color.png")
}

func index(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var stems []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		if stem, ok := strings.CutSuffix(base, "_color"); ok {
			stems = append(stems, stem)
		}
	}
	if len(stems) == 0 {
		return nil, fmt.Errorf("no *_color frames in %s", dir)
	}
	sort.Strings(stems)
	return stems, nil
}

func readColor(path string) gocv.Mat {
	return gocv.IMRead(path, gocv.IMReadColor)
}

// readDepth loads a 16-bit single-channel PNG as a depth map.
func readDepth(path string, scale float64) (*depth.Map, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	mat := gocv.IMRead(path, gocv.IMReadUnchanged)
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("unreadable depth frame %s", path)
	}
	if mat.Type() != gocv.MatTypeCV16UC1 {
		return nil, fmt.Errorf("depth frame %s is %v, want 16-bit single channel", path, mat.Type())
	}

	raw, err := mat.DataPtrUint16()
	if err != nil {
		return nil, err
	}

	m := depth.NewMap(mat.Cols(), mat.Rows())
	m.Scale = scale
	copy(m.Data, raw)
	return m, nil
}
