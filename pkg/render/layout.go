package render

import "image"

// LineHeight is the text baseline spacing in source pixels.
const LineHeight = 16

// Placement is where an annotation's parts go on the frame.
type Placement struct {
	Box      image.Rectangle
	Label    image.Point // baseline origin of LabelText
	Distance image.Point // baseline origin of DistanceText
}

// Layout places a's box and text within bounds. The label sits just
// above the box, or inside it when the box touches the top edge; the
// distance goes one line below the label.
func Layout(a Annotation, bounds image.Rectangle) Placement {
	r := a.Region
	box := image.Rect(r.Left, r.Top, r.Right, r.Bottom).Canon().Intersect(bounds)

	labelY := box.Min.Y - 4
	if labelY < bounds.Min.Y+LineHeight {
		labelY = box.Min.Y + LineHeight
	}
	x := box.Min.X + 2

	return Placement{
		Box:      box,
		Label:    image.Pt(x, labelY),
		Distance: image.Pt(x, labelY+LineHeight),
	}
}
