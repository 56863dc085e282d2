package imaging

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ironsheep/image-marker-mcp/internal/errors"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#FF0000", color.NRGBA{255, 0, 0, 255}},
		{"#00ff00", color.NRGBA{0, 255, 0, 255}},
		{"#00F", color.NRGBA{0, 0, 255, 255}},
		{"#80FFFFFF", color.NRGBA{255, 255, 255, 128}},
		{"#00000000", color.NRGBA{0, 0, 0, 0}},
		{"red", color.NRGBA{255, 0, 0, 255}},
		{"Navy", color.NRGBA{0, 0, 128, 255}},
		{" white ", color.NRGBA{255, 255, 255, 255}},
		{"transparent", color.NRGBA{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseColor_Invalid(t *testing.T) {
	for _, in := range []string{"", "FF0000", "#GG0000", "#12345", "#1234567890", "chartreuse-ish"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseColor(in)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.KindInvalidColor), "got %v", err)
		})
	}
}
