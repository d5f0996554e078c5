package stream

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/depthsense/pkg/region"
	"github.com/teslashibe/depthsense/pkg/render"
)

type fakePublisher struct {
	frames [][]byte
	anns   []string
}

func (f *fakePublisher) PublishFrame(b []byte) { f.frames = append(f.frames, b) }

func (f *fakePublisher) PublishAnnotations(v any) error {
	b, err := json.Marshal(v)
	f.anns = append(f.anns, string(b))
	return err
}

func gray(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	return img
}

func TestRenderer_DrawAndShow(t *testing.T) {
	pub := &fakePublisher{}
	r, err := New(DefaultConfig(), pub)
	require.NoError(t, err)
	defer r.Close()

	src := gray(640, 480)
	ann := render.Annotation{
		Label:        "cat",
		ClassID:      0,
		Score:        0.9,
		Region:       region.Region{Top: 48, Left: 64, Bottom: 240, Right: 320},
		LabelText:    "cat score=0.9",
		DistanceText: "2.000m",
	}

	out, err := r.Draw(src, []render.Annotation{ann})
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), out.Bounds())

	// Box edge takes the class color; the source is untouched.
	edge := color.RGBAModel.Convert(out.At(200, 240)).(color.RGBA)
	assert.Equal(t, uint8(255), edge.G)
	assert.Equal(t, uint8(128), src.Pix[0])

	// Label backing darkens the area above the box.
	above := color.RGBAModel.Convert(out.At(70, 40)).(color.RGBA)
	assert.Less(t, above.R, uint8(128))

	require.NoError(t, r.Show(out))
	require.Len(t, pub.frames, 1)
	_, err = jpeg.Decode(bytes.NewReader(pub.frames[0]))
	require.NoError(t, err)

	require.Len(t, pub.anns, 1)
	assert.Contains(t, pub.anns[0], `"distance_text":"2.000m"`)
	assert.Equal(t, 1, r.Frames())
}

func TestRenderer_EmptyFrame(t *testing.T) {
	pub := &fakePublisher{}
	r, err := New(DefaultConfig(), pub)
	require.NoError(t, err)

	out, err := r.Draw(gray(320, 240), nil)
	require.NoError(t, err)
	require.NoError(t, r.Show(out))
	assert.Equal(t, "[]", pub.anns[0])
	assert.False(t, r.PollQuit())
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Quality = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.FontSize = 0
	_, err := New(cfg, &fakePublisher{})
	assert.Error(t, err)
}
