package imaging

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ironsheep/image-marker-mcp/internal/errors"
)

func TestEncodeSpec_Resolved(t *testing.T) {
	tests := []struct {
		spec EncodeSpec
		want Format
	}{
		{EncodeSpec{Path: "out.png"}, FormatPNG},
		{EncodeSpec{Path: "out.PNG"}, FormatPNG},
		{EncodeSpec{Path: "out.jpg"}, FormatJPEG},
		{EncodeSpec{Path: "out.jpeg"}, FormatJPEG},
		{EncodeSpec{Path: "out.webp"}, FormatJPEG},
		{EncodeSpec{Path: "out"}, FormatJPEG},
		{EncodeSpec{Path: "out.jpg", Format: FormatPNG}, FormatPNG},
	}

	for _, tt := range tests {
		t.Run(tt.spec.Path, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.Resolved())
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatAuto, "PNG": FormatPNG, "jpg": FormatJPEG, "jpeg": FormatJPEG} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("gif")
	assert.Error(t, err)
}

func TestWrite_PNGRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.png")
	r := solidRaster(123, 45, color.NRGBA{10, 20, 30, 255})

	got, err := Write(r, EncodeSpec{Path: path, Quality: 100})
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.True(t, r.Released())

	info, err := LoadImageInfo(path)
	require.NoError(t, err)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, 123, info.Width)
	assert.Equal(t, 45, info.Height)

	back, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{10, 20, 30, 255}, back.Image().NRGBAAt(60, 20))
}

func TestWrite_JPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jpg")

	_, err := Write(solidRaster(40, 30, white), EncodeSpec{Path: path, Quality: 90})
	require.NoError(t, err)

	info, err := LoadImageInfo(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", info.Format)
	assert.Equal(t, 40, info.Width)
	assert.Equal(t, 30, info.Height)
}

func TestWrite_QualityAffectsJPEGOnly(t *testing.T) {
	dir := t.TempDir()
	fonts := NewFontRegistry(logrus.New())

	render := func() *Raster {
		layout, err := NewLayout("quality quality quality", 200, fonts.Default(StyleNormal), 20)
		require.NoError(t, err)
		defer layout.Close()

		c, err := NewCanvas(solidRaster(200, 80, white))
		require.NoError(t, err)
		require.NoError(t, c.DrawText(layout, TextOrigin, TextStyle{Color: color.NRGBA{200, 0, 50, 255}}))
		return c.Finish()
	}

	size := func(name string, quality int) int64 {
		path := filepath.Join(dir, name)
		_, err := Write(render(), EncodeSpec{Path: path, Quality: quality})
		require.NoError(t, err)
		st, err := os.Stat(path)
		require.NoError(t, err)
		return st.Size()
	}

	assert.Less(t, size("low.jpg", 10), size("high.jpg", 100))
	assert.Equal(t, size("low.png", 10), size("high.png", 100))
	// Out-of-range quality is clamped rather than rejected.
	assert.Equal(t, size("over.jpg", 500), size("max.jpg", 100))
}

func TestWrite_Deterministic(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jpg")
	b := filepath.Join(dir, "b.jpg")

	_, err := Write(solidRaster(64, 64, color.NRGBA{1, 2, 3, 255}), EncodeSpec{Path: a, Quality: 80})
	require.NoError(t, err)
	_, err = Write(solidRaster(64, 64, color.NRGBA{1, 2, 3, 255}), EncodeSpec{Path: b, Quality: 80})
	require.NoError(t, err)

	da, err := os.ReadFile(a)
	require.NoError(t, err)
	db, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(da, db))
}

func TestWrite_Failures(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	t.Run("parent is a file", func(t *testing.T) {
		r := solidRaster(4, 4, white)
		_, err := Write(r, EncodeSpec{Path: filepath.Join(blocker, "out.png")})

		assert.Equal(t, apperrors.KindIOError, apperrors.KindOf(err))
		assert.True(t, r.Released(), "raster must be released on failure too")
	})

	t.Run("empty path", func(t *testing.T) {
		r := solidRaster(4, 4, white)
		_, err := Write(r, EncodeSpec{})
		assert.Equal(t, apperrors.KindIOError, apperrors.KindOf(err))
		assert.True(t, r.Released())
	})

	t.Run("released raster", func(t *testing.T) {
		r := solidRaster(4, 4, white)
		r.Release()
		_, err := Write(r, EncodeSpec{Path: filepath.Join(dir, "never.png")})
		assert.Equal(t, apperrors.KindIOError, apperrors.KindOf(err))
		assert.NoFileExists(t, filepath.Join(dir, "never.png"))
	})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files should be left behind")
}
