// Package imaging implements the raster side of marker composition: owned
// pixel buffers, scaling, placement, text layout, compositing and encoding.
//
// All operations use a coordinate system where (0,0) is the top-left corner,
// X increases rightward and Y increases downward. Positions are integer
// pixels; there is no sub-pixel placement.
//
// # Ownership
//
// A Raster has exactly one owner. Every stage that consumes a Raster releases
// it once it has produced its output:
//   - Scale releases its input unless the factor is exactly 1
//   - NewCanvas releases the background, DrawImage releases the marker
//   - Write releases the composed raster whether or not the write succeeds
//
// # Placement
//
// Image markers are placed with fixed margins (20px sides, 40px top); see
// PlaceImage and MarginPolicy. Text blocks are placed edge-flush against
// their bounding box, with a (20,20) origin when no placement is given; see
// PlaceText.
//
// # Errors
//
// Failures are reported as *errors.Error values with a kind: InvalidScale,
// InvalidColor, LayoutError or IOError. Unknown placement keywords and
// unknown font names are not errors; they fall back to TopLeft and the
// built-in Go font respectively.
//
// # Thread Safety
//
// FontRegistry is safe for concurrent use. Rasters, Layouts and Canvases are
// owned by a single request and must not be shared between goroutines.
package imaging
