// Package depth estimates object distance from an aligned depth map.
package depth

import "math"

// DefaultScale is the RealSense z16 unit: one raw count is one millimeter.
const DefaultScale = 0.001

// Provider looks up the distance in meters at a pixel. An invalid or
// missing reading is reported as 0.
type Provider interface {
	DistanceAt(x, y int) float64
}

// ProviderFunc adapts a function to a Provider.
type ProviderFunc func(x, y int) float64

// DistanceAt implements Provider.
func (f ProviderFunc) DistanceAt(x, y int) float64 {
	return f(x, y)
}

// Constant is a Provider that reads the same distance everywhere.
type Constant float64

// DistanceAt implements Provider.
func (c Constant) DistanceAt(x, y int) float64 {
	return float64(c)
}

// Map is a raw depth frame: row-major sensor counts plus the meters per
// count. A count of 0 means the sensor had no reading.
type Map struct {
	Width  int
	Height int
	Data   []uint16
	Scale  float64
}

// NewMap allocates an empty width x height map with the default scale.
func NewMap(width, height int) *Map {
	return &Map{
		Width:  width,
		Height: height,
		Data:   make([]uint16, width*height),
		Scale:  DefaultScale,
	}
}

// Set stores a raw count. Out-of-bounds writes are ignored.
func (m *Map) Set(x, y int, raw uint16) {
	if !m.in(x, y) {
		return
	}
	m.Data[y*m.Width+x] = raw
}

// Raw returns the raw count at (x, y), 0 when out of bounds.
func (m *Map) Raw(x, y int) uint16 {
	if !m.in(x, y) {
		return 0
	}
	return m.Data[y*m.Width+x]
}

// DistanceAt implements Provider.
func (m *Map) DistanceAt(x, y int) float64 {
	return float64(m.Raw(x, y)) * m.Scale
}

// Valid reports whether the map has storage for every pixel.
func (m *Map) Valid() bool {
	return m != nil && m.Width > 0 && m.Height > 0 && len(m.Data) >= m.Width*m.Height
}

func (m *Map) in(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height && y*m.Width+x < len(m.Data)
}

// sanitize turns readings the sensor cannot mean into 0 so they are
// averaged in as holes.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
