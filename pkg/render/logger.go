package render

import (
	"image"
	"log/slog"
)

// Logger is a headless Renderer that writes each annotation to a logger.
type Logger struct {
	log   *slog.Logger
	frame uint64
}

// NewLogger creates a headless renderer.
func NewLogger(l *slog.Logger) *Logger {
	return &Logger{log: l}
}

// Draw logs anns and returns img unchanged.
func (l *Logger) Draw(img image.Image, anns []Annotation) (image.Image, error) {
	l.frame++
	for _, a := range anns {
		l.log.Info("📏 "+a.LabelText,
			"frame", l.frame,
			"distance", a.DistanceText,
			"region", a.Region.Rect().String(),
			"holes", a.Distance.Holes)
	}
	return img, nil
}

// Show implements Renderer.
func (l *Logger) Show(image.Image) error { return nil }

// PollQuit implements Renderer.
func (l *Logger) PollQuit() bool { return false }

// Close implements Renderer.
func (l *Logger) Close() error { return nil }
