package wire

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ironsheep/image-marker-mcp/internal/errors"
	"github.com/ironsheep/image-marker-mcp/internal/imaging"
	"github.com/ironsheep/image-marker-mcp/internal/marker"
)

func TestTextArgs_Request(t *testing.T) {
	var args TextArgs
	require.NoError(t, json.Unmarshal([]byte(`{
		"src": {"uri": "bg", "scale": 0.5},
		"text": "Hello",
		"position": "bottomCenter",
		"color": "#ff0000",
		"font_size": 20,
		"shadow_style": {"radius": 2, "dx": 1, "dy": 1, "color": "black"},
		"quality": 90,
		"filename": "hello"
	}`), &args))

	req, err := args.Request("/out")
	require.NoError(t, err)

	assert.Equal(t, "bg", req.Background.URI)
	assert.Equal(t, 0.5, req.BackgroundScale)
	assert.Equal(t, imaging.BottomCenter, req.Placement)
	assert.Equal(t, filepath.Join("/out", "hello.jpg"), req.Encode.Path)
	assert.Equal(t, 90, req.Encode.Quality)

	tm, ok := req.Marker.(marker.TextMarker)
	require.True(t, ok)
	assert.Equal(t, "Hello", tm.Text)
	assert.Equal(t, 20.0, tm.FontSize)
	require.NotNil(t, tm.Shadow)
	assert.Equal(t, "black", tm.Shadow.Color)
}

func TestTextArgs_Placement(t *testing.T) {
	x := 5

	tests := []struct {
		name string
		args TextArgs
		want imaging.Placement
	}{
		{"none", TextArgs{}, nil},
		{"x only", TextArgs{X: &x}, imaging.Offset{X: 5, Y: 20}},
		{"keyword wins", TextArgs{X: &x, Position: "center"}, imaging.Center},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := tt.args.Request("/out")
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Placement)
		})
	}
}

func TestImageArgs_Request(t *testing.T) {
	var args ImageArgs
	require.NoError(t, json.Unmarshal([]byte(`{
		"src": {"uri": "bg"},
		"marker": {"uri": "https://example.com/logo.png", "scale": 0.25},
		"x": 10, "y": 30,
		"format": "jpg"
	}`), &args))

	req, err := args.Request("/out")
	require.NoError(t, err)

	assert.Equal(t, 1.0, req.BackgroundScale)
	assert.Equal(t, imaging.Offset{X: 10, Y: 30}, req.Placement)
	assert.Equal(t, imaging.FormatJPEG, req.Encode.Format)
	assert.Equal(t, DefaultQuality, req.Encode.Quality)
	assert.Equal(t, ".jpg", filepath.Ext(req.Encode.Path))
	assert.Equal(t, marker.ImageMarker{Image: marker.ImageRef{URI: "https://example.com/logo.png"}, Scale: 0.25}, req.Marker)
}

func TestImageArgs_DefaultsToPNG(t *testing.T) {
	req, err := ImageArgs{Src: Source{URI: "bg"}, Marker: Source{URI: "logo"}}.Request("/out")
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(req.Encode.Path))
	assert.Nil(t, req.Placement)
}

func TestObjectsArgs_Request(t *testing.T) {
	var args ObjectsArgs
	require.NoError(t, json.Unmarshal([]byte(`{
		"src": {"uri": "bg"},
		"markers": [
			{"type": 1, "url": "https://example.com/avatar.png", "x": 1, "y": 2},
			{"type": 0, "text": "name", "color": "#333333", "font_size": 18, "x": 3, "y": 4},
			{"kind": "image", "url": "logo", "scale": 2}
		],
		"filename": "card.png"
	}`), &args))

	req, err := args.Request("/out")
	require.NoError(t, err)
	require.Len(t, req.Elements, 3)

	assert.Equal(t, marker.ElementImage, req.Elements[0].Kind)
	assert.Equal(t, 1.0, req.Elements[0].Scale)
	assert.Equal(t, marker.ElementText, req.Elements[1].Kind)
	assert.Equal(t, "name", req.Elements[1].Text.Text)
	assert.Equal(t, 3, req.Elements[1].X)
	assert.Equal(t, marker.ElementImage, req.Elements[2].Kind)
	assert.Equal(t, 2.0, req.Elements[2].Scale)
	assert.Equal(t, filepath.Join("/out", "card.png"), req.Encode.Path)
}

func TestOutput_InvalidFormat(t *testing.T) {
	_, err := TextArgs{Output: Output{Format: "gif"}}.Request("/out")
	assert.Equal(t, apperrors.KindIOError, apperrors.KindOf(err))
}

func TestErrorOf(t *testing.T) {
	body := ErrorOf(apperrors.Wrap(apperrors.KindFetchFailed, "source.resolve", errors.New("refused"), "cannot fetch x"))
	assert.Equal(t, ErrorBody{Kind: "FetchFailed", Message: "cannot fetch x: refused"}, body)

	assert.Equal(t, "Error", ErrorOf(errors.New("plain")).Kind)
}
