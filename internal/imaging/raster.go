package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// Raster is an owned RGBA8 pixel buffer.
//
// A Raster has exactly one owner at a time. Stages that consume a Raster
// release it once they have produced their output, after which Image returns
// nil and Released reports true. Rasters are never shared between goroutines
// while live.
type Raster struct {
	img *image.NRGBA
}

// NewRaster allocates a transparent raster of the given size.
func NewRaster(width, height int) *Raster {
	return &Raster{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// FromImage wraps img in a raster with a (0,0) origin. An origin-anchored
// *image.NRGBA is adopted without copying, so the caller must not touch it
// afterwards; any other image is copied into a fresh NRGBA buffer.
func FromImage(img image.Image) *Raster {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return &Raster{img: nrgba}
	}
	return &Raster{img: imaging.Clone(img)}
}

// Image returns the underlying buffer, or nil once released.
func (r *Raster) Image() *image.NRGBA {
	if r == nil {
		return nil
	}
	return r.img
}

// Width returns the raster width in pixels (0 once released).
func (r *Raster) Width() int {
	if r.Image() == nil {
		return 0
	}
	return r.img.Rect.Dx()
}

// Height returns the raster height in pixels (0 once released).
func (r *Raster) Height() int {
	if r.Image() == nil {
		return 0
	}
	return r.img.Rect.Dy()
}

// Size returns the raster dimensions as a point.
func (r *Raster) Size() image.Point {
	return image.Pt(r.Width(), r.Height())
}

// Release drops the pixel buffer. Releasing twice, or releasing nil, is a no-op.
func (r *Raster) Release() {
	if r == nil {
		return
	}
	r.img = nil
}

// Released reports whether the buffer has been handed back.
func (r *Raster) Released() bool {
	return r == nil || r.img == nil
}

// ReleaseAll releases every non-nil raster.
func ReleaseAll(rasters ...*Raster) {
	for _, r := range rasters {
		r.Release()
	}
}
