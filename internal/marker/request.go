package marker

import (
	"math"
	"strconv"
	"strings"

	apperrors "github.com/ironsheep/image-marker-mcp/internal/errors"
	"github.com/ironsheep/image-marker-mcp/internal/imaging"
)

// ImageRef names a background or marker image.
type ImageRef struct {
	URI string
}

// Marker is the overlay of a single-marker request: a TextMarker or an
// ImageMarker.
type Marker interface {
	marker()
}

// Shadow styles text with a blurred offset copy. Color uses the same syntax
// as text colors.
type Shadow struct {
	Radius float64
	Dx     float64
	Dy     float64
	Color  string
}

// TextMarker is a block of text. An empty Color paints black; a FontSize of
// zero or less uses imaging.DefaultFontSize.
type TextMarker struct {
	Text     string
	Color    string
	FontName string
	FontSize float64
	Shadow   *Shadow
}

func (TextMarker) marker() {}

// ImageMarker is an image scaled by Scale before placement.
type ImageMarker struct {
	Image ImageRef
	Scale float64
}

func (ImageMarker) marker() {}

// ElementKind tags a CompositeElement.
type ElementKind int

const (
	ElementImage ElementKind = iota + 1
	ElementText
)

func (k ElementKind) String() string {
	switch k {
	case ElementImage:
		return "image"
	case ElementText:
		return "text"
	default:
		return "unknown"
	}
}

// Element is one entry of an object-list request. Image elements use Image
// and Scale and are painted with their top-left at (X, Y). Text elements use
// Text, are set in the bold style of their font, and Y is the baseline of
// their first line.
type Element struct {
	Kind  ElementKind
	Image ImageRef
	Scale float64
	Text  TextMarker
	X, Y  int
}

// Request is one marking job. Exactly one of Marker and Elements is set.
// Scales must be positive; 1 leaves an image untouched.
type Request struct {
	ID              string
	Background      ImageRef
	BackgroundScale float64
	Marker          Marker
	Elements        []Element
	Placement       imaging.Placement
	Encode          imaging.EncodeSpec
}

// objects reports whether r is an object-list request.
func (r Request) objects() bool {
	return r.Marker == nil && len(r.Elements) > 0
}

func invalidScale(s float64) bool {
	return s <= 0 || math.IsNaN(s) || math.IsInf(s, 0)
}

// Validate checks everything that can be checked before acquisition starts.
func (r Request) Validate() error {
	const op = "marker.validate"

	if strings.TrimSpace(r.Background.URI) == "" {
		return apperrors.New(apperrors.KindSourceUnavailable, op, "background uri is empty")
	}
	if invalidScale(r.BackgroundScale) {
		return apperrors.New(apperrors.KindInvalidScale, op, "background scale must be positive, got %v", r.BackgroundScale)
	}
	if strings.TrimSpace(r.Encode.Path) == "" {
		return apperrors.New(apperrors.KindIOError, op, "destination path is empty")
	}

	switch m := r.Marker.(type) {
	case nil:
		if len(r.Elements) == 0 {
			return apperrors.New(apperrors.KindLayoutError, op, "request has no marker")
		}
	case TextMarker:
		if err := validateText(op, m); err != nil {
			return err
		}
	case ImageMarker:
		if strings.TrimSpace(m.Image.URI) == "" {
			return apperrors.New(apperrors.KindSourceUnavailable, op, "marker uri is empty")
		}
		if invalidScale(m.Scale) {
			return apperrors.New(apperrors.KindInvalidScale, op, "marker scale must be positive, got %v", m.Scale)
		}
	default:
		return apperrors.New(apperrors.KindLayoutError, op, "unsupported marker type %T", m)
	}

	if r.Marker != nil && len(r.Elements) > 0 {
		return apperrors.New(apperrors.KindLayoutError, op, "request has both a marker and elements")
	}

	for i, el := range r.Elements {
		switch el.Kind {
		case ElementImage:
			if strings.TrimSpace(el.Image.URI) == "" {
				return apperrors.New(apperrors.KindSourceUnavailable, op, "element %d: image uri is empty", i)
			}
			if invalidScale(el.Scale) {
				return apperrors.New(apperrors.KindInvalidScale, op, "element %d: scale must be positive, got %v", i, el.Scale)
			}
		case ElementText:
			if err := validateText(op, el.Text); err != nil {
				return apperrors.Wrap(apperrors.KindOf(err), op, err, "element "+strconv.Itoa(i))
			}
		default:
			return apperrors.New(apperrors.KindLayoutError, op, "element %d: unsupported kind %d", i, el.Kind)
		}
	}
	return nil
}

func validateText(op string, m TextMarker) error {
	if strings.TrimSpace(m.Text) == "" {
		return apperrors.New(apperrors.KindLayoutError, op, "text is empty")
	}
	return nil
}
