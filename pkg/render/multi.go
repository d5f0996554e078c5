package render

import (
	"image"

	"go.uber.org/multierr"
)

// Multi fans frames out to several renderers. Every renderer sees the
// annotations, the first one's drawing is shown everywhere. Quit is
// requested when any of them asks.
type Multi []Renderer

// Draw implements Renderer.
func (m Multi) Draw(img image.Image, anns []Annotation) (image.Image, error) {
	if len(m) == 0 {
		return img, nil
	}
	out, err := m[0].Draw(img, anns)
	for _, r := range m[1:] {
		_, derr := r.Draw(img, anns)
		err = multierr.Append(err, derr)
	}
	return out, err
}

// Show implements Renderer.
func (m Multi) Show(img image.Image) error {
	var err error
	for _, r := range m {
		err = multierr.Append(err, r.Show(img))
	}
	return err
}

// PollQuit implements Renderer.
func (m Multi) PollQuit() bool {
	quit := false
	for _, r := range m {
		if r.PollQuit() {
			quit = true
		}
	}
	return quit
}

// Close implements Renderer.
func (m Multi) Close() error {
	var err error
	for _, r := range m {
		err = multierr.Append(err, r.Close())
	}
	return err
}
