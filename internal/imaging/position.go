package imaging

import "image"

// Placement decides where a marker goes on the canvas. It is either an
// Anchor keyword or an absolute Offset; a nil Placement means none was given.
type Placement interface {
	placement()
}

// Anchor is a symbolic placement keyword.
type Anchor string

const (
	TopLeft      Anchor = "topLeft"
	TopCenter    Anchor = "topCenter"
	TopRight     Anchor = "topRight"
	Center       Anchor = "center"
	BottomLeft   Anchor = "bottomLeft"
	BottomCenter Anchor = "bottomCenter"
	BottomRight  Anchor = "bottomRight"
)

// Anchors lists every recognised keyword.
var Anchors = []Anchor{TopLeft, TopCenter, TopRight, Center, BottomLeft, BottomCenter, BottomRight}

func (Anchor) placement() {}

// Known reports whether a is one of the seven keywords. Unknown anchors are
// not an error: they resolve like TopLeft.
func (a Anchor) Known() bool {
	for _, k := range Anchors {
		if a == k {
			return true
		}
	}
	return false
}

// Offset is an absolute top-left pixel position.
type Offset struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (Offset) placement() {}

// Image marker margins.
const (
	MarginSide = 20
	MarginTop  = 40
)

// TextOrigin is where a text block goes when no placement is supplied.
var TextOrigin = image.Pt(20, 20)

// MarginPolicy selects how bottomCenter and bottomRight image markers are
// inset horizontally.
type MarginPolicy int

const (
	// LegacyMargins applies the side margin twice on the x axis for
	// bottomCenter and bottomRight, matching long-standing output.
	LegacyMargins MarginPolicy = iota
	// SymmetricMargins applies the side margin once everywhere.
	SymmetricMargins
)

// PlaceImage resolves the top-left offset of a marker x canvas image
// placement. A nil placement and unknown keywords resolve like TopLeft.
func PlaceImage(p Placement, marker, canvas image.Point, policy MarginPolicy) image.Point {
	switch v := p.(type) {
	case Offset:
		return image.Pt(v.X, v.Y)
	case Anchor:
		return anchorImage(v, marker, canvas, policy)
	default:
		return anchorImage(TopLeft, marker, canvas, policy)
	}
}

func anchorImage(a Anchor, marker, canvas image.Point, policy MarginPolicy) image.Point {
	extra := MarginSide
	if policy == SymmetricMargins {
		extra = 0
	}

	bottom := canvas.Y - marker.Y - MarginSide
	switch a {
	case TopCenter:
		return image.Pt(canvas.X/2-marker.X/2, MarginTop)
	case TopRight:
		return image.Pt(canvas.X-marker.X-MarginSide, MarginTop)
	case Center:
		return image.Pt(canvas.X/2-marker.X/2, canvas.Y/2-marker.Y/2)
	case BottomLeft:
		return image.Pt(MarginSide, bottom)
	case BottomCenter:
		return image.Pt(canvas.X/2-marker.X/2-extra, bottom)
	case BottomRight:
		return image.Pt(canvas.X-marker.X-MarginSide-extra, bottom)
	default:
		return image.Pt(MarginSide, MarginTop)
	}
}

// PlaceText resolves the top-left offset of a text block with bounding box
// box on canvas. Text uses edge-flush alignment with no margins except the
// default origin.
func PlaceText(p Placement, box, canvas image.Point) image.Point {
	switch v := p.(type) {
	case Offset:
		return image.Pt(v.X, v.Y)
	case Anchor:
		return anchorText(v, box, canvas)
	default:
		return TextOrigin
	}
}

func anchorText(a Anchor, box, canvas image.Point) image.Point {
	pt := TextOrigin
	switch a {
	case TopCenter:
		pt.X = (canvas.X - box.X) / 2
	case TopRight:
		pt.X = canvas.X - box.X
	case Center:
		pt.X = (canvas.X - box.X) / 2
		pt.Y = (canvas.Y - box.Y) / 2
	case BottomLeft:
		pt.Y = canvas.Y - box.Y
	case BottomCenter:
		pt.X = (canvas.X - box.X) / 2
		pt.Y = canvas.Y - box.Y
	case BottomRight:
		pt.X = canvas.X - box.X
		pt.Y = canvas.Y - box.Y
	}
	return pt
}
