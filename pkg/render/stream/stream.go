// Package stream renders annotations in pure Go and publishes the frames
// to remote viewers as JPEG.
package stream

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/teslashibe/depthsense/pkg/render"
)

var regular *truetype.Font

func init() {
	var err error
	regular, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Publisher delivers encoded frames and annotation lists to viewers.
// *web.Server implements it.
type Publisher interface {
	PublishFrame(jpegData []byte)
	PublishAnnotations(v any) error
}

// Config holds stream renderer settings.
type Config struct {
	Quality   int     `json:"quality" yaml:"quality"`     // JPEG quality 1-100
	FontSize  float64 `json:"font_size" yaml:"font_size"` // Points
	LineWidth float64 `json:"line_width" yaml:"line_width"`
}

// DefaultConfig returns settings tuned for a 640x480 stream.
func DefaultConfig() Config {
	return Config{
		Quality:   80,
		FontSize:  13,
		LineWidth: 2,
	}
}

// Validate checks the config.
func (c Config) Validate() error {
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("stream: quality must be between 1 and 100, got %d", c.Quality)
	}
	if c.FontSize <= 0 || c.LineWidth <= 0 {
		return fmt.Errorf("stream: font size and line width must be positive")
	}
	return nil
}

// Renderer draws with gg and hands results to a Publisher.
type Renderer struct {
	cfg  Config
	pub  Publisher
	face font.Face

	mu      sync.Mutex
	pending []render.Annotation
	frames  int
}

// New creates a stream renderer.
func New(cfg Config, pub Publisher) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{
		cfg:  cfg,
		pub:  pub,
		face: truetype.NewFace(regular, &truetype.Options{Size: cfg.FontSize}),
	}, nil
}

// Draw implements render.Renderer.
func (r *Renderer) Draw(img image.Image, anns []render.Annotation) (image.Image, error) {
	dc := gg.NewContextForImage(img)
	dc.SetFontFace(r.face)

	bounds := image.Rect(0, 0, dc.Width(), dc.Height())
	for _, a := range anns {
		p := render.Layout(a, bounds)
		c := render.ColorFor(a.ClassID)
		col := color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}

		dc.SetColor(col)
		dc.SetLineWidth(r.cfg.LineWidth)
		dc.DrawRectangle(float64(p.Box.Min.X), float64(p.Box.Min.Y), float64(p.Box.Dx()), float64(p.Box.Dy()))
		dc.Stroke()

		r.label(dc, a.LabelText, p.Label, col)
		r.label(dc, a.DistanceText, p.Distance, col)
	}

	r.mu.Lock()
	r.pending = append(r.pending[:0], anns...)
	r.mu.Unlock()

	return dc.Image(), nil
}

// label draws text on a dark backing so it reads over any scene.
func (r *Renderer) label(dc *gg.Context, text string, at image.Point, c color.Color) {
	if text == "" {
		return
	}
	w, h := dc.MeasureString(text)
	x, y := float64(at.X), float64(at.Y)

	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawRectangle(x-2, y-h-2, w+4, h+4)
	dc.Fill()

	dc.SetColor(c)
	dc.DrawString(text, x, y)
}

// Show implements render.Renderer. It encodes img and publishes it with
// the annotations from the preceding Draw.
func (r *Renderer) Show(img image.Image) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: r.cfg.Quality}); err != nil {
		return fmt.Errorf("stream: encode frame: %w", err)
	}

	r.mu.Lock()
	anns := r.pending
	r.pending = nil
	r.frames++
	r.mu.Unlock()

	if anns == nil {
		anns = []render.Annotation{}
	}
	r.pub.PublishFrame(buf.Bytes())
	return r.pub.PublishAnnotations(anns)
}

// PollQuit implements render.Renderer. Viewers cannot stop the loop.
func (r *Renderer) PollQuit() bool {
	return false
}

// Close implements render.Renderer.
func (r *Renderer) Close() error {
	return r.face.Close()
}

// Frames returns how many frames were published.
func (r *Renderer) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}
