// Package wire holds the JSON forms of marking requests shared by the MCP,
// HTTP and queue front ends, and their conversion to marker requests.
package wire

import (
	"image"
	"strings"

	apperrors "github.com/ironsheep/image-marker-mcp/internal/errors"
	"github.com/ironsheep/image-marker-mcp/internal/imaging"
	"github.com/ironsheep/image-marker-mcp/internal/marker"
)

// DefaultQuality is applied when a request omits quality.
const DefaultQuality = 100

// Source is an image reference with an optional scale.
type Source struct {
	URI   string   `json:"uri"`
	Scale *float64 `json:"scale,omitempty"`
}

// Shadow is the JSON form of a text shadow.
type Shadow struct {
	Radius float64 `json:"radius"`
	Dx     float64 `json:"dx"`
	Dy     float64 `json:"dy"`
	Color  string  `json:"color"`
}

// Output controls where and how the result is written.
type Output struct {
	Quality  *int   `json:"quality,omitempty"`
	Filename string `json:"filename,omitempty"`
	Format   string `json:"format,omitempty"`
}

// TextArgs marks an image with text, either at x/y or at a position keyword.
type TextArgs struct {
	Src      Source  `json:"src"`
	Text     string  `json:"text"`
	X        *int    `json:"x,omitempty"`
	Y        *int    `json:"y,omitempty"`
	Position string  `json:"position,omitempty"`
	Color    string  `json:"color,omitempty"`
	FontName string  `json:"font_name,omitempty"`
	FontSize float64 `json:"font_size,omitempty"`
	Shadow   *Shadow `json:"shadow_style,omitempty"`
	Output
}

// ImageArgs marks an image with another image.
type ImageArgs struct {
	Src      Source `json:"src"`
	Marker   Source `json:"marker"`
	X        *int   `json:"x,omitempty"`
	Y        *int   `json:"y,omitempty"`
	Position string `json:"position,omitempty"`
	Output
}

// ElementArgs is one entry of an object list. Kind is "image" or "text";
// when it is empty, Type 1 means image and anything else text.
type ElementArgs struct {
	Kind     string   `json:"kind,omitempty"`
	Type     int      `json:"type,omitempty"`
	URL      string   `json:"url,omitempty"`
	Scale    *float64 `json:"scale,omitempty"`
	Text     string   `json:"text,omitempty"`
	Color    string   `json:"color,omitempty"`
	FontName string   `json:"font_name,omitempty"`
	FontSize float64  `json:"font_size,omitempty"`
	X        int      `json:"x"`
	Y        int      `json:"y"`
}

// ObjectsArgs paints a list of elements onto one background.
type ObjectsArgs struct {
	Src     Source        `json:"src"`
	Markers []ElementArgs `json:"markers"`
	Output
}

// Result is the success payload.
type Result struct {
	Path string `json:"path"`
}

// ErrorBody is the failure payload.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ErrorOf describes err for a client.
func ErrorOf(err error) ErrorBody {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindUnknown {
		kind = "Error"
	}
	return ErrorBody{Kind: string(kind), Message: apperrors.Message(err)}
}

func scaleOf(s *float64) float64 {
	if s == nil {
		return 1
	}
	return *s
}

func (s Source) ref() marker.ImageRef {
	return marker.ImageRef{URI: strings.TrimSpace(s.URI)}
}

func (o Output) encode(dir, defaultExt string) (imaging.EncodeSpec, error) {
	format, err := imaging.ParseFormat(o.Format)
	if err != nil {
		return imaging.EncodeSpec{}, apperrors.Wrap(apperrors.KindIOError, "wire.output", err, "")
	}
	ext := defaultExt
	switch format {
	case imaging.FormatPNG:
		ext = marker.ImageExtension
	case imaging.FormatJPEG:
		ext = marker.TextExtension
	}

	quality := DefaultQuality
	if o.Quality != nil {
		quality = *o.Quality
	}
	return imaging.EncodeSpec{
		Format:  format,
		Quality: quality,
		Path:    marker.DestinationPath(dir, o.Filename, ext),
	}, nil
}

// placement picks the keyword when one is given, otherwise the offset.
// Missing coordinates default to def.
func placement(position string, x, y *int, def image.Point) imaging.Placement {
	if p := strings.TrimSpace(position); p != "" {
		return imaging.Anchor(p)
	}
	if x == nil && y == nil {
		return nil
	}
	off := imaging.Offset{X: def.X, Y: def.Y}
	if x != nil {
		off.X = *x
	}
	if y != nil {
		off.Y = *y
	}
	return off
}

// Request converts the args into a marker request writing under dir.
func (a TextArgs) Request(dir string) (marker.Request, error) {
	enc, err := a.Output.encode(dir, marker.TextExtension)
	if err != nil {
		return marker.Request{}, err
	}

	tm := marker.TextMarker{
		Text:     a.Text,
		Color:    a.Color,
		FontName: a.FontName,
		FontSize: a.FontSize,
	}
	if a.Shadow != nil {
		tm.Shadow = &marker.Shadow{Radius: a.Shadow.Radius, Dx: a.Shadow.Dx, Dy: a.Shadow.Dy, Color: a.Shadow.Color}
	}

	return marker.Request{
		Background:      a.Src.ref(),
		BackgroundScale: scaleOf(a.Src.Scale),
		Marker:          tm,
		Placement:       placement(a.Position, a.X, a.Y, imaging.TextOrigin),
		Encode:          enc,
	}, nil
}

// Request converts the args into a marker request writing under dir.
func (a ImageArgs) Request(dir string) (marker.Request, error) {
	enc, err := a.Output.encode(dir, marker.ImageExtension)
	if err != nil {
		return marker.Request{}, err
	}

	return marker.Request{
		Background:      a.Src.ref(),
		BackgroundScale: scaleOf(a.Src.Scale),
		Marker:          marker.ImageMarker{Image: a.Marker.ref(), Scale: scaleOf(a.Marker.Scale)},
		Placement:       placement(a.Position, a.X, a.Y, image.Point{}),
		Encode:          enc,
	}, nil
}

// Request converts the args into a marker request writing under dir.
func (a ObjectsArgs) Request(dir string) (marker.Request, error) {
	enc, err := a.Output.encode(dir, marker.ImageExtension)
	if err != nil {
		return marker.Request{}, err
	}

	elements := make([]marker.Element, 0, len(a.Markers))
	for _, m := range a.Markers {
		el := marker.Element{X: m.X, Y: m.Y}
		if m.isImage() {
			el.Kind = marker.ElementImage
			el.Image = marker.ImageRef{URI: strings.TrimSpace(m.URL)}
			el.Scale = scaleOf(m.Scale)
		} else {
			el.Kind = marker.ElementText
			el.Text = marker.TextMarker{Text: m.Text, Color: m.Color, FontName: m.FontName, FontSize: m.FontSize}
		}
		elements = append(elements, el)
	}

	return marker.Request{
		Background:      a.Src.ref(),
		BackgroundScale: scaleOf(a.Src.Scale),
		Elements:        elements,
		Encode:          enc,
	}, nil
}

func (e ElementArgs) isImage() bool {
	switch strings.ToLower(strings.TrimSpace(e.Kind)) {
	case "image":
		return true
	case "text":
		return false
	}
	return e.Type == 1
}
