package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	apperrors "github.com/ironsheep/image-marker-mcp/internal/errors"
)

// TextStyle controls how a text layout is painted.
type TextStyle struct {
	Color  color.NRGBA
	Shadow *Shadow
}

// Canvas is the composition surface. It starts as a copy of the background
// and accumulates markers in the order they are drawn.
type Canvas struct {
	dst *image.NRGBA
}

// NewCanvas allocates a canvas the size of bg, paints bg at the origin and
// releases bg.
func NewCanvas(bg *Raster) (*Canvas, error) {
	if bg == nil || bg.Released() {
		return nil, apperrors.New(apperrors.KindLayoutError, "imaging.canvas", "background raster is not available")
	}
	defer bg.Release()

	src := bg.Image()
	dst := image.NewNRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return &Canvas{dst: dst}, nil
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() image.Point {
	return c.dst.Bounds().Size()
}

// DrawImage alpha-composites marker with its top-left at the given point and
// releases marker. Parts falling outside the canvas are clipped.
func (c *Canvas) DrawImage(marker *Raster, at image.Point) error {
	if c.dst == nil {
		return apperrors.New(apperrors.KindLayoutError, "imaging.canvas", "canvas already finished")
	}
	if marker == nil || marker.Released() {
		return apperrors.New(apperrors.KindLayoutError, "imaging.canvas", "marker raster is not available")
	}
	defer marker.Release()

	src := marker.Image()
	r := image.Rectangle{Min: at, Max: at.Add(src.Bounds().Size())}
	draw.Draw(c.dst, r, src, src.Bounds().Min, draw.Over)
	return nil
}

// DrawText paints every line of layout with the block's top-left at the given
// point. When style carries a shadow it is drawn under each line first.
func (c *Canvas) DrawText(layout *Layout, at image.Point, style TextStyle) error {
	if c.dst == nil {
		return apperrors.New(apperrors.KindLayoutError, "imaging.canvas", "canvas already finished")
	}
	if layout == nil || layout.Face() == nil {
		return apperrors.New(apperrors.KindLayoutError, "imaging.canvas", "layout is closed")
	}

	face := layout.Face()
	lh := layout.LineHeight()
	fill := image.NewUniform(style.Color)

	for line := range layout.Lines() {
		if line.Text == "" {
			continue
		}
		origin := at.Add(image.Pt(0, line.Offset))

		if style.Shadow != nil {
			renderShadow(c.dst, face, line.Text, line.Width, lh, line.Baseline, origin, *style.Shadow)
		}

		d := &font.Drawer{
			Dst:  c.dst,
			Src:  fill,
			Face: face,
			Dot:  fixed.P(origin.X, origin.Y+line.Baseline),
		}
		d.DrawString(line.Text)
	}
	return nil
}

// Finish hands the composed image to the caller. The canvas cannot be drawn
// on afterwards.
func (c *Canvas) Finish() *Raster {
	out := &Raster{img: c.dst}
	c.dst = nil
	return out
}

// Discard drops the canvas buffer without producing a result.
func (c *Canvas) Discard() {
	c.dst = nil
}
