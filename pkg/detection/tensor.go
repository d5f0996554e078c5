package detection

import (
	"fmt"
	"image"
)

// FillRGB writes img as packed 8-bit RGB (HWC) into dst.
func FillRGB(img image.Image, dst []uint8) error {
	b := img.Bounds()
	if need := b.Dx() * b.Dy() * 3; len(dst) < need {
		return fmt.Errorf("%w: input tensor holds %d bytes, image needs %d", ErrInputSize, len(dst), need)
	}

	if rgba, ok := img.(*image.RGBA); ok {
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, y):]
			for x := 0; x < b.Dx(); x++ {
				dst[i] = row[x*4]
				dst[i+1] = row[x*4+1]
				dst[i+2] = row[x*4+2]
				i += 3
			}
		}
		return nil
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			dst[i] = uint8(r >> 8)
			dst[i+1] = uint8(g >> 8)
			dst[i+2] = uint8(bl >> 8)
			i += 3
		}
	}
	return nil
}

// FillRGBFloat writes img as normalized float RGB (HWC) into dst using
// (v - mean) / std per channel value.
func FillRGBFloat(img image.Image, dst []float32, mean, std float32) error {
	b := img.Bounds()
	need := b.Dx() * b.Dy() * 3
	if len(dst) < need {
		return fmt.Errorf("%w: input tensor holds %d floats, image needs %d", ErrInputSize, len(dst), need)
	}

	raw := make([]uint8, need)
	if err := FillRGB(img, raw); err != nil {
		return err
	}
	for i, v := range raw {
		dst[i] = (float32(v) - mean) / std
	}
	return nil
}
