package imaging

import (
	"math"

	"github.com/disintegration/imaging"

	apperrors "github.com/ironsheep/image-marker-mcp/internal/errors"
)

// DefaultMaxPixels caps the area of a scaled raster (64 megapixels, 256MB
// of RGBA8).
const DefaultMaxPixels int64 = 64 << 20

// Scale is ScaleWithin with DefaultMaxPixels.
func Scale(src *Raster, factor float64) (*Raster, error) {
	return ScaleWithin(src, factor, DefaultMaxPixels)
}

// ScaleWithin returns src resized by factor.
//
// A factor of exactly 1 returns src itself without allocating. Any other
// positive factor produces a new raster of round(w*factor) x round(h*factor)
// pixels (at least 1x1) resampled with a Lanczos filter, and src is released.
// Non-positive or non-finite factors, and factors whose result would exceed
// maxPixels, fail with InvalidScale and leave src untouched so the caller
// can release it. A maxPixels of zero or less means DefaultMaxPixels.
func ScaleWithin(src *Raster, factor float64, maxPixels int64) (*Raster, error) {
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor <= 0 {
		return nil, apperrors.New(apperrors.KindInvalidScale, "imaging.scale", "scale must be positive, got %v", factor)
	}
	if src.Released() {
		return nil, apperrors.New(apperrors.KindLayoutError, "imaging.scale", "source raster already released")
	}
	if factor == 1 {
		return src, nil
	}

	w, h, err := ScaledSize(src.Width(), src.Height(), factor, maxPixels)
	if err != nil {
		return nil, err
	}
	scaled := imaging.Resize(src.Image(), w, h, imaging.Lanczos)
	src.Release()

	return &Raster{img: scaled}, nil
}

// ScaledSize returns the dimensions Scale produces for a w x h image, or an
// InvalidScale error when they would exceed maxPixels.
func ScaledSize(w, h int, factor float64, maxPixels int64) (int, int, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	fw := math.Max(1, math.Round(float64(w)*factor))
	fh := math.Max(1, math.Round(float64(h)*factor))
	if fw*fh > float64(maxPixels) {
		return 0, 0, apperrors.New(apperrors.KindInvalidScale, "imaging.scale",
			"scale %v of %dx%d exceeds the %d pixel limit", factor, w, h, maxPixels)
	}
	return int(fw), int(fh), nil
}
