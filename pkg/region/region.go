// Package region converts normalized detector boxes into pixel regions.
package region

import (
	"image"
	"math"
)

// Box is a bounding box in normalized coordinates (fractions of the frame).
// Field order follows the SSD output layout: top, left, bottom, right.
type Box struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
}

// Region is a bounding box in pixel coordinates, each edge clamped into the
// frame. Left <= Right and Top <= Bottom hold only if the source box was
// well formed.
type Region struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Bottom int `json:"bottom"`
	Right  int `json:"right"`
}

// ToPixels maps a normalized box onto a width x height frame.
// Every edge is rounded and then clamped to [0, dim-1]. It never fails:
// out-of-range, inverted and NaN inputs all produce an in-frame region.
func ToPixels(box Box, width, height int) Region {
	return Region{
		Top:    scale(box.Top, height),
		Left:   scale(box.Left, width),
		Bottom: scale(box.Bottom, height),
		Right:  scale(box.Right, width),
	}
}

func scale(v float64, dim int) int {
	if math.IsNaN(v) {
		return 0
	}
	return Clamp(int(math.Round(clampFloat(v*float64(dim), dim))), dim)
}

// clampFloat keeps huge and infinite values inside int range before the
// conversion.
func clampFloat(v float64, dim int) float64 {
	if v < 0 {
		return 0
	}
	if v > float64(dim) {
		return float64(dim)
	}
	return v
}

// Clamp restricts v to the valid index range [0, dim-1] of a dimension.
// A non-positive dim clamps everything to 0.
func Clamp(v, dim int) int {
	if v > dim-1 {
		v = dim - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

// Width returns the horizontal extent in pixels, inclusive of both edges.
// Inverted regions report 0.
func (r Region) Width() int {
	if r.Right < r.Left {
		return 0
	}
	return r.Right - r.Left + 1
}

// Height returns the vertical extent in pixels, inclusive of both edges.
// Inverted regions report 0.
func (r Region) Height() int {
	if r.Bottom < r.Top {
		return 0
	}
	return r.Bottom - r.Top + 1
}

// Degenerate reports whether the region collapses to a line or a point.
func (r Region) Degenerate() bool {
	return r.Left >= r.Right || r.Top >= r.Bottom
}

// Rect returns the region as a canonical image.Rectangle for drawing.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}
