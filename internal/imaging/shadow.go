package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Shadow is a blurred, offset copy of text painted beneath the glyphs.
type Shadow struct {
	Radius float64
	Dx     float64
	Dy     float64
	Color  color.NRGBA
}

// renderShadow paints one line's shadow onto dst. origin is the line's
// top-left on dst; baseline is measured from there.
func renderShadow(dst draw.Image, face font.Face, text string, width, height, baseline int, origin image.Point, s Shadow) {
	if text == "" || s.Color.A == 0 {
		return
	}

	radius := s.Radius
	if radius < 0 || math.IsNaN(radius) {
		radius = 0
	}
	pad := int(math.Ceil(radius * 2))

	mask := image.NewNRGBA(image.Rect(0, 0, width+2*pad, height+2*pad))
	d := &font.Drawer{
		Dst:  mask,
		Src:  image.NewUniform(s.Color),
		Face: face,
		Dot:  fixed.P(pad, pad+baseline),
	}
	d.DrawString(text)

	var layer image.Image = mask
	if radius > 0 {
		layer = blur.Gaussian(mask, radius)
	}

	at := origin.Add(image.Pt(int(math.Round(s.Dx))-pad, int(math.Round(s.Dy))-pad))
	r := layer.Bounds().Sub(layer.Bounds().Min).Add(at)
	draw.Draw(dst, r, layer, layer.Bounds().Min, draw.Over)
}
