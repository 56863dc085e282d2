package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidRaster(w, h int, c color.NRGBA) *Raster {
	r := NewRaster(w, h)
	draw.Draw(r.Image(), r.Image().Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return r
}

// changedPixels counts pixels of img inside rect that differ from c.
func changedPixels(img *image.NRGBA, rect image.Rectangle, c color.NRGBA) int {
	n := 0
	rect = rect.Intersect(img.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if img.NRGBAAt(x, y) != c {
				n++
			}
		}
	}
	return n
}

var white = color.NRGBA{255, 255, 255, 255}

func TestCanvas_BackgroundAndImageMarker(t *testing.T) {
	bg := solidRaster(200, 100, white)
	marker := solidRaster(20, 10, color.NRGBA{255, 0, 0, 255})

	c, err := NewCanvas(bg)
	require.NoError(t, err)
	assert.True(t, bg.Released())
	assert.Equal(t, image.Pt(200, 100), c.Size())

	require.NoError(t, c.DrawImage(marker, image.Pt(50, 30)))
	assert.True(t, marker.Released())

	out := c.Finish()
	img := out.Image()
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, img.NRGBAAt(50, 30))
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, img.NRGBAAt(69, 39))
	assert.Equal(t, white, img.NRGBAAt(70, 30))
	assert.Equal(t, white, img.NRGBAAt(49, 30))
	assert.Equal(t, 20*10, changedPixels(img, img.Bounds(), white))
}

func TestCanvas_MarkerAlphaComposites(t *testing.T) {
	bg := solidRaster(10, 10, white)
	marker := solidRaster(10, 10, color.NRGBA{0, 0, 0, 0})

	c, err := NewCanvas(bg)
	require.NoError(t, err)
	require.NoError(t, c.DrawImage(marker, image.Point{}))

	img := c.Finish().Image()
	assert.Equal(t, 0, changedPixels(img, img.Bounds(), white))
}

func TestCanvas_MarkerClippedAtEdges(t *testing.T) {
	c, err := NewCanvas(solidRaster(50, 50, white))
	require.NoError(t, err)

	require.NoError(t, c.DrawImage(solidRaster(30, 30, color.NRGBA{0, 0, 255, 255}), image.Pt(40, -10)))

	img := c.Finish().Image()
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 10*20, changedPixels(img, img.Bounds(), white))
}

func TestCanvas_DrawText(t *testing.T) {
	fonts := NewFontRegistry(logrus.New())
	layout, err := NewLayout("Hello", 300, fonts.Default(StyleNormal), 24)
	require.NoError(t, err)
	defer layout.Close()

	c, err := NewCanvas(solidRaster(300, 100, white))
	require.NoError(t, err)

	at := image.Pt(20, 20)
	require.NoError(t, c.DrawText(layout, at, TextStyle{Color: color.NRGBA{0, 0, 0, 255}}))

	img := c.Finish().Image()
	w, h := layout.Bounds()
	box := image.Rect(at.X, at.Y, at.X+w, at.Y+h)

	assert.Greater(t, changedPixels(img, box, white), 0, "glyphs should be painted inside the text box")
	assert.Equal(t, changedPixels(img, img.Bounds(), white), changedPixels(img, box.Inset(-2), white),
		"nothing should be painted outside the text box")
}

func TestCanvas_DrawTextWithShadow(t *testing.T) {
	fonts := NewFontRegistry(logrus.New())
	layout, err := NewLayout("Hi", 300, fonts.Default(StyleBold), 30)
	require.NoError(t, err)
	defer layout.Close()

	render := func(shadow *Shadow) *image.NRGBA {
		c, err := NewCanvas(solidRaster(300, 150, white))
		require.NoError(t, err)
		require.NoError(t, c.DrawText(layout, image.Pt(20, 20), TextStyle{
			Color:  color.NRGBA{255, 0, 0, 255},
			Shadow: shadow,
		}))
		return c.Finish().Image()
	}

	plain := render(nil)
	shadowed := render(&Shadow{Radius: 2, Dx: 40, Dy: 40, Color: color.NRGBA{0, 0, 0, 255}})

	w, h := layout.Bounds()
	// The shadow lands well outside the glyph box.
	offBox := image.Rect(20+w, 20+h, 20+w+40, 20+h+40)
	assert.Equal(t, 0, changedPixels(plain, offBox, white))
	assert.Greater(t, changedPixels(shadowed, offBox, white), 0)
}

func TestCanvas_FinishedCanvasRejectsDrawing(t *testing.T) {
	c, err := NewCanvas(solidRaster(10, 10, white))
	require.NoError(t, err)
	c.Finish()

	assert.Error(t, c.DrawImage(solidRaster(1, 1, white), image.Point{}))
}

func TestNewCanvas_ReleasedBackground(t *testing.T) {
	bg := NewRaster(10, 10)
	bg.Release()

	_, err := NewCanvas(bg)
	assert.Error(t, err)
}
