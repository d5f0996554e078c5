// Package window shows annotated frames in an OpenCV HighGUI window and
// treats the 'q' key as a quit request.
//
// HighGUI must be driven from the thread that created the window, so the
// frame loop should run on the main goroutine when this renderer is used.
package window

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/teslashibe/depthsense/pkg/render"
)

// QuitKey ends the session when pressed in the window.
const QuitKey = 'q'

// Config holds window settings.
type Config struct {
	Title     string  `json:"title" yaml:"title"`
	Scale     float64 `json:"scale" yaml:"scale"`           // Display magnification
	Thickness int     `json:"thickness" yaml:"thickness"`   // Box line width
	FontScale float64 `json:"font_scale" yaml:"font_scale"` // HersheySimplex scale
}

// DefaultConfig shows frames at twice their size.
func DefaultConfig() Config {
	return Config{
		Title:     "depthsense",
		Scale:     2.0,
		Thickness: 2,
		FontScale: 0.5,
	}
}

// Renderer draws with OpenCV and shows a HighGUI window.
type Renderer struct {
	cfg    Config
	window *gocv.Window
	quit   bool
}

// New opens the window.
func New(cfg Config) (*Renderer, error) {
	if cfg.Scale <= 0 {
		return nil, fmt.Errorf("window: scale must be positive, got %v", cfg.Scale)
	}
	return &Renderer{
		cfg:    cfg,
		window: gocv.NewWindow(cfg.Title),
	}, nil
}

// Draw implements render.Renderer.
func (r *Renderer) Draw(img image.Image, anns []render.Annotation) (image.Image, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("window: convert frame: %w", err)
	}
	defer mat.Close()

	bounds := image.Rect(0, 0, mat.Cols(), mat.Rows())
	for _, a := range anns {
		p := render.Layout(a, bounds)
		c := toRGBA(render.ColorFor(a.ClassID))

		gocv.Rectangle(&mat, p.Box, c, r.cfg.Thickness)
		gocv.PutText(&mat, a.LabelText, p.Label, gocv.FontHersheySimplex, r.cfg.FontScale, c, 1)
		gocv.PutText(&mat, a.DistanceText, p.Distance, gocv.FontHersheySimplex, r.cfg.FontScale, c, 1)
	}

	return mat.ToImage()
}

// Show implements render.Renderer. It also pumps window events and
// records a quit key press.
func (r *Renderer) Show(img image.Image) error {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("window: convert frame: %w", err)
	}
	defer mat.Close()

	if r.cfg.Scale != 1 {
		scaled := gocv.NewMat()
		defer scaled.Close()
		gocv.Resize(mat, &scaled, image.Point{}, r.cfg.Scale, r.cfg.Scale, gocv.InterpolationLinear)
		r.window.IMShow(scaled)
	} else {
		r.window.IMShow(mat)
	}

	if key := r.window.WaitKey(1); key == QuitKey {
		r.quit = true
	}
	return nil
}

// PollQuit implements render.Renderer. Closing the window also counts.
func (r *Renderer) PollQuit() bool {
	if r.quit {
		return true
	}
	if r.window.WaitKey(1) == QuitKey || !r.window.IsOpen() {
		r.quit = true
	}
	return r.quit
}

// Close implements render.Renderer.
func (r *Renderer) Close() error {
	return r.window.Close()
}

func toRGBA(c render.RGB) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}
