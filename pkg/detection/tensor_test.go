package detection

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestFillRGB(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 2, 1))
	rgba.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	rgba.Set(1, 0, color.RGBA{R: 40, G: 50, B: 60, A: 255})

	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.SetGray(0, 0, color.Gray{Y: 7})
	gray.SetGray(1, 0, color.Gray{Y: 200})

	tests := []struct {
		name string
		img  image.Image
		want []uint8
	}{
		{"rgba fast path", rgba, []uint8{10, 20, 30, 40, 50, 60}},
		{"generic path", gray, []uint8{7, 7, 7, 200, 200, 200}},
		{"sub image", rgba.SubImage(image.Rect(1, 0, 2, 1)), []uint8{40, 50, 60}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dst := make([]uint8, len(tc.want))
			if err := FillRGB(tc.img, dst); err != nil {
				t.Fatalf("FillRGB: %v", err)
			}
			for i := range tc.want {
				if dst[i] != tc.want[i] {
					t.Fatalf("dst = %v, want %v", dst, tc.want)
				}
			}
		})
	}
}

func TestFillRGB_ShortBuffer(t *testing.T) {
	err := FillRGB(image.NewRGBA(image.Rect(0, 0, 4, 4)), make([]uint8, 10))
	if !errors.Is(err, ErrInputSize) {
		t.Errorf("expected ErrInputSize, got %v", err)
	}
}

func TestFillRGBFloat(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 0, G: 127, B: 255, A: 255})

	dst := make([]float32, 3)
	if err := FillRGBFloat(img, dst, 127.5, 127.5); err != nil {
		t.Fatalf("FillRGBFloat: %v", err)
	}

	want := []float32{-1, -0.003921569, 1}
	for i := range want {
		if d := dst[i] - want[i]; d < -1e-5 || d > 1e-5 {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}
