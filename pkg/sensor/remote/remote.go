// Package remote receives frame pairs from a camera bridge over a
// websocket.
//
// The bridge runs next to the depth camera and pushes one binary message
// per aligned pair (see Encode). This sensor dials it, decodes color with
// OpenCV and hands the newest pair to the caller, dropping pairs the loop
// is too slow to consume.
package remote

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/teslashibe/depthsense/internal/log"
	"github.com/teslashibe/depthsense/pkg/sensor"
)

// Source names this sensor in errors.
const Source = "remote"

// Timeouts for the bridge connection.
const (
	HandshakeTimeout = 10 * time.Second
	ReadTimeout      = 30 * time.Second
)

type result struct {
	pair *sensor.FramePair
	err  error
}

// Sensor is a websocket client for a camera bridge.
type Sensor struct {
	url string
	log *slog.Logger

	ws     *websocket.Conn
	wsMu   sync.Mutex
	cfg    sensor.Config
	frames chan result
	done   chan struct{}
	once   sync.Once

	seq     atomic.Uint64
	dropped atomic.Int64
}

// New creates a client for the bridge at rawURL (ws:// or wss://).
func New(rawURL string) *Sensor {
	return &Sensor{
		url: rawURL,
		log: log.Component("remote"),
	}
}

// Start implements sensor.Sensor. The stream settings travel as query
// parameters so the bridge can configure the camera.
func (s *Sensor) Start(ctx context.Context, cfg sensor.Config) error {
	if err := cfg.Validate(); err != nil {
		return &sensor.Error{Source: Source, Op: "start", Err: err}
	}

	u, err := url.Parse(s.url)
	if err != nil {
		return &sensor.Error{Source: Source, Op: "start", Err: err}
	}
	q := u.Query()
	q.Set("width", strconv.Itoa(cfg.Width))
	q.Set("height", strconv.Itoa(cfg.Height))
	q.Set("fps", strconv.Itoa(cfg.FPS))
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{
		HandshakeTimeout: HandshakeTimeout,
	}
	ws, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return &sensor.Error{Source: Source, Op: "start", Err: fmt.Errorf("connect %s: %w", s.url, err)}
	}

	s.ws = ws
	s.cfg = cfg
	s.frames = make(chan result, 1)
	s.done = make(chan struct{})

	go s.readLoop()

	s.log.Info("connected to camera bridge", "url", u.String())
	return nil
}

// WaitForFramePair implements sensor.Sensor.
func (s *Sensor) WaitForFramePair(ctx context.Context) (*sensor.FramePair, error) {
	if s.frames == nil {
		return nil, sensor.ErrNotStarted
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, sensor.ErrStopped
	case r, ok := <-s.frames:
		if !ok {
			return nil, sensor.ErrStopped
		}
		return r.pair, r.err
	}
}

// Stop implements sensor.Sensor.
func (s *Sensor) Stop() error {
	var err error
	s.once.Do(func() {
		if s.done == nil {
			return
		}
		close(s.done)

		s.wsMu.Lock()
		s.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = s.ws.Close()
		s.wsMu.Unlock()

		s.log.Info("camera bridge closed", "received", s.seq.Load(), "dropped", s.dropped.Load())
	})
	return err
}

func (s *Sensor) readLoop() {
	defer close(s.frames)

	for {
		s.ws.SetReadDeadline(time.Now().Add(ReadTimeout))
		mt, msg, err := s.ws.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.push(result{err: &sensor.Error{Source: Source, Op: "read", Err: err}})
			}
			return
		}
		if mt != websocket.BinaryMessage {
			continue
		}

		pair, err := s.decode(s.seq.Add(1), msg)
		s.push(result{pair: pair, err: err})
	}
}

// push delivers r, replacing an unconsumed older result.
func (s *Sensor) push(r result) {
	for {
		select {
		case <-s.done:
			return
		case s.frames <- r:
			return
		default:
		}
		select {
		case old := <-s.frames:
			if old.err == nil || sensor.IsGap(old.err) {
				s.dropped.Add(1)
				continue
			}
			// Never drop a fatal error in favor of a frame.
			r = old
		default:
		}
	}
}

func (s *Sensor) decode(seq uint64, msg []byte) (*sensor.FramePair, error) {
	pair := &sensor.FramePair{Seq: seq, Timestamp: time.Now()}

	color, raw, err := split(msg)
	if err != nil {
		return pair, fmt.Errorf("frame %d: %v: %w", seq, err, sensor.ErrIncompleteFrame)
	}

	if len(color) > 0 {
		img, err := decodeColor(color)
		switch {
		case err != nil:
			s.log.Debug("bad color payload", "seq", seq, "error", err)
		case img.Bounds().Dx() != s.cfg.Width || img.Bounds().Dy() != s.cfg.Height:
			s.log.Debug("color size mismatch", "seq", seq,
				"got", img.Bounds().Size().String(),
				"want", fmt.Sprintf("%dx%d", s.cfg.Width, s.cfg.Height))
		default:
			pair.Color = img
		}
	}

	d, err := decodeDepth(raw, s.cfg.Width, s.cfg.Height, s.cfg.DepthScale)
	if err != nil {
		s.log.Debug("bad depth payload", "seq", seq, "error", err)
	} else if d != nil {
		pair.Depth = d
	}

	if !pair.Complete() {
		return pair, fmt.Errorf("frame %d: %w", seq, sensor.ErrIncompleteFrame)
	}
	return pair, nil
}

func decodeColor(buf []byte) (image.Image, error) {
	mat, err := gocv.IMDecode(buf, gocv.IMReadColor)
	if err != nil {
		return nil, err
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("undecodable color image (%d bytes)", len(buf))
	}
	return mat.ToImage()
}
