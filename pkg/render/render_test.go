package render

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/depthsense/pkg/region"
)

func TestLabelText(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"person", 0.87213, "person score=0.872"},
		{"dog", 0.9, "dog score=0.9"},
		{"traffic light", 1, "traffic light score=1"},
		{"cat", 0.30049, "cat score=0.3"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, LabelText(tt.name, tt.score))
		})
	}
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, Palette[0], ColorFor(0))
	assert.Equal(t, Palette[1], ColorFor(len(Palette)+1))
	assert.Equal(t, Palette[2], ColorFor(-2))
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.QuitAfter = 2
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))

	out, err := r.Draw(img, []Annotation{{Label: "cat"}})
	require.NoError(t, err)
	assert.Same(t, img, out)
	require.NoError(t, r.Show(out))
	assert.False(t, r.PollQuit())

	r.Draw(img, nil)
	r.Show(img)
	assert.True(t, r.PollQuit())

	frames := r.Frames()
	require.Len(t, frames, 2)
	assert.Equal(t, "cat", frames[0][0].Label)
	assert.Empty(t, frames[1])

	require.NoError(t, r.Close())
	assert.True(t, r.Closed())
}

func TestMulti(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	b.QuitAfter = 1
	boom := errors.New("boom")
	b.DrawFunc = func(img image.Image, _ []Annotation) (image.Image, error) { return nil, boom }

	m := Multi{a, b}
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))

	out, err := m.Draw(img, []Annotation{{Label: "dog"}})
	assert.Same(t, img, out)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, b.Frames(), 1, "every renderer sees the annotations")

	require.NoError(t, m.Show(out))
	assert.Equal(t, 1, a.Shown())
	assert.True(t, m.PollQuit())

	require.NoError(t, m.Close())
	assert.True(t, a.Closed() && b.Closed())
}

func TestLayout(t *testing.T) {
	bounds := image.Rect(0, 0, 640, 480)

	t.Run("label above box", func(t *testing.T) {
		a := Annotation{Region: region.Region{Top: 48, Left: 64, Bottom: 240, Right: 320}}
		p := Layout(a, bounds)
		assert.Equal(t, image.Rect(64, 48, 320, 240), p.Box)
		assert.Equal(t, image.Pt(66, 44), p.Label)
		assert.Equal(t, image.Pt(66, 44+LineHeight), p.Distance)
	})

	t.Run("box at top edge", func(t *testing.T) {
		a := Annotation{Region: region.Region{Top: 0, Left: 0, Bottom: 100, Right: 100}}
		p := Layout(a, bounds)
		assert.Equal(t, LineHeight, p.Label.Y)
	})

	t.Run("inverted region", func(t *testing.T) {
		a := Annotation{Region: region.Region{Top: 200, Left: 300, Bottom: 100, Right: 100}}
		p := Layout(a, bounds)
		assert.Equal(t, image.Rect(100, 100, 300, 200), p.Box)
	})
}
