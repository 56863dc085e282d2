package imaging

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	apperrors "github.com/ironsheep/image-marker-mcp/internal/errors"
)

// namedColors are the color names accepted by ParseColor, mapped to #RRGGBB.
var namedColors = map[string]string{
	"black":     "#000000",
	"darkgray":  "#444444",
	"darkgrey":  "#444444",
	"gray":      "#888888",
	"grey":      "#888888",
	"lightgray": "#CCCCCC",
	"lightgrey": "#CCCCCC",
	"white":     "#FFFFFF",
	"red":       "#FF0000",
	"green":     "#00FF00",
	"blue":      "#0000FF",
	"yellow":    "#FFFF00",
	"cyan":      "#00FFFF",
	"magenta":   "#FF00FF",
	"aqua":      "#00FFFF",
	"fuchsia":   "#FF00FF",
	"lime":      "#00FF00",
	"maroon":    "#800000",
	"navy":      "#000080",
	"olive":     "#808000",
	"purple":    "#800080",
	"silver":    "#C0C0C0",
	"teal":      "#008080",
}

// ParseColor parses a marker color string.
//
// Accepted forms:
//   - "#RGB" and "#RRGGBB": opaque colors
//   - "#AARRGGBB": alpha first, then red, green, blue
//   - a color name such as "red", "navy" or "transparent" (case-insensitive)
//
// Anything else fails with InvalidColor.
func ParseColor(s string) (color.NRGBA, error) {
	raw := strings.TrimSpace(s)
	name := strings.ToLower(raw)
	if name == "transparent" {
		return color.NRGBA{}, nil
	}
	if hex, ok := namedColors[name]; ok {
		raw = hex
	}

	if !strings.HasPrefix(raw, "#") {
		return color.NRGBA{}, apperrors.New(apperrors.KindInvalidColor, "imaging.color", "unknown color %q", s)
	}

	switch len(raw) {
	case 4, 7:
		c, err := colorful.Hex(raw)
		if err != nil {
			return color.NRGBA{}, apperrors.Wrap(apperrors.KindInvalidColor, "imaging.color", err, "unparsable color "+strconv.Quote(s))
		}
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
	case 9:
		val, err := strconv.ParseUint(raw[1:], 16, 32)
		if err != nil {
			return color.NRGBA{}, apperrors.Wrap(apperrors.KindInvalidColor, "imaging.color", err, "unparsable color "+strconv.Quote(s))
		}
		return color.NRGBA{
			A: uint8(val >> 24),
			R: uint8(val >> 16),
			G: uint8(val >> 8),
			B: uint8(val),
		}, nil
	default:
		return color.NRGBA{}, apperrors.New(apperrors.KindInvalidColor, "imaging.color", "invalid color length in %q", s)
	}
}
