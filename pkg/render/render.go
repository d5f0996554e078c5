// Package render draws annotated frames and reports operator quit
// requests.
package render

import (
	"image"
	"strconv"

	"github.com/teslashibe/depthsense/pkg/depth"
	"github.com/teslashibe/depthsense/pkg/region"
)

// Renderer presents annotated frames.
type Renderer interface {
	// Draw returns img with the annotations overlaid. The input image is
	// not modified.
	Draw(img image.Image, anns []Annotation) (image.Image, error)

	// Show presents a drawn frame.
	Show(img image.Image) error

	// PollQuit reports whether the operator asked to stop. It never blocks
	// for longer than one UI tick.
	PollQuit() bool

	// Close releases the display.
	Close() error
}

// Annotation is what gets drawn for one detection.
type Annotation struct {
	Label        string         `json:"label"`
	ClassID      int            `json:"class_id"`
	Score        float64        `json:"score"`
	Region       region.Region  `json:"region"`
	Distance     depth.Estimate `json:"distance"`
	LabelText    string         `json:"label_text"`
	DistanceText string         `json:"distance_text"`
}

// ScorePrecision is the number of decimals shown for scores.
const ScorePrecision = 3

// LabelText formats "<name> score=<score>" with the score rounded to
// ScorePrecision decimals and trailing zeros dropped.
func LabelText(name string, score float64) string {
	return name + " score=" + strconv.FormatFloat(depth.Round(score, ScorePrecision), 'f', -1, 64)
}

// Palette is the box color per class, cycled by class id.
var Palette = []RGB{
	{0, 255, 0},
	{255, 128, 0},
	{0, 160, 255},
	{255, 0, 160},
	{255, 230, 0},
	{160, 0, 255},
}

// RGB is an 8-bit color.
type RGB struct {
	R, G, B uint8
}

// ColorFor returns the palette entry for classID.
func ColorFor(classID int) RGB {
	if classID < 0 {
		classID = -classID
	}
	return Palette[classID%len(Palette)]
}
