package imaging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	apperrors "github.com/ironsheep/image-marker-mcp/internal/errors"
)

// Format is an encode target.
type Format int

const (
	// FormatAuto picks the format from the destination extension.
	FormatAuto Format = iota
	FormatJPEG
	FormatPNG
)

func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatPNG:
		return "png"
	default:
		return "auto"
	}
}

// ParseFormat maps "png", "jpg"/"jpeg" and "" (auto) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return FormatAuto, nil
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	}
	return FormatAuto, fmt.Errorf("unsupported output format %q", s)
}

// DefaultQuality is the JPEG quality used when a request leaves it unset.
const DefaultQuality = 100

// EncodeSpec describes where and how the composed image is written.
type EncodeSpec struct {
	Format  Format
	Quality int
	Path    string
}

// Resolved returns the concrete format for the spec: an explicit format wins,
// otherwise the path's extension decides and unknown extensions fall back to
// JPEG.
func (s EncodeSpec) Resolved() Format {
	if s.Format != FormatAuto {
		return s.Format
	}
	switch f, err := imaging.FormatFromFilename(s.Path); {
	case err != nil:
		return FormatJPEG
	case f == imaging.PNG:
		return FormatPNG
	default:
		return FormatJPEG
	}
}

func clampQuality(q int) int {
	if q < 0 {
		return 0
	}
	if q > 100 {
		return 100
	}
	return q
}

// Write encodes r to spec.Path and releases r, whether or not the write
// succeeds. The image is written to a temporary file in the destination
// directory and renamed into place, so a failed write never leaves a partial
// file at the destination. Missing parent directories are created.
func Write(r *Raster, spec EncodeSpec) (string, error) {
	const op = "imaging.write"
	defer r.Release()

	if r.Released() {
		return "", apperrors.New(apperrors.KindIOError, op, "raster already released")
	}
	if strings.TrimSpace(spec.Path) == "" {
		return "", apperrors.New(apperrors.KindIOError, op, "destination path is empty")
	}

	dir := filepath.Dir(spec.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.Wrap(apperrors.KindIOError, op, err, "failed to create output directory")
	}

	tmp, err := os.CreateTemp(dir, ".imagemarker-*")
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindIOError, op, err, "failed to create temp file")
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	var encErr error
	switch spec.Resolved() {
	case FormatPNG:
		encErr = imaging.Encode(tmp, r.Image(), imaging.PNG)
	default:
		encErr = imaging.Encode(tmp, r.Image(), imaging.JPEG, imaging.JPEGQuality(clampQuality(spec.Quality)))
	}
	if encErr != nil {
		tmp.Close()
		return "", apperrors.Wrap(apperrors.KindIOError, op, encErr, "failed to encode image")
	}
	if err := tmp.Close(); err != nil {
		return "", apperrors.Wrap(apperrors.KindIOError, op, err, "failed to flush image")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", apperrors.Wrap(apperrors.KindIOError, op, err, "failed to set file mode")
	}
	if err := os.Rename(tmpName, spec.Path); err != nil {
		return "", apperrors.Wrap(apperrors.KindIOError, op, err, "failed to move image into place")
	}
	committed = true

	return spec.Path, nil
}
