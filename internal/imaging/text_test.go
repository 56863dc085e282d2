package imaging

import (
	"slices"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ironsheep/image-marker-mcp/internal/errors"
)

func newTestLayout(t *testing.T, text string, width int, size float64) *Layout {
	t.Helper()
	fonts := NewFontRegistry(logrus.New())
	l, err := NewLayout(text, width, fonts.Default(StyleNormal), size)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func lineTexts(l *Layout) []string {
	var out []string
	for line := range l.Lines() {
		out = append(out, line.Text)
	}
	return out
}

func TestLayout_SingleLine(t *testing.T) {
	l := newTestLayout(t, "Hello", 400, 14)

	lines := slices.Collect(l.Lines())
	require.Len(t, lines, 1)
	assert.Equal(t, "Hello", lines[0].Text)
	assert.Equal(t, 0, lines[0].Offset)

	w, h := l.Bounds()
	assert.Equal(t, lines[0].Width, w)
	assert.Greater(t, w, 0)
	assert.Less(t, w, 400)
	assert.Equal(t, l.LineHeight(), h)
}

func TestLayout_WrapsToWidth(t *testing.T) {
	text := strings.Repeat("word ", 40)
	l := newTestLayout(t, text, 120, 14)

	n := 0
	for line := range l.Lines() {
		assert.LessOrEqual(t, line.Width, 120, "line %d %q", line.Index, line.Text)
		assert.Equal(t, n*l.LineHeight(), line.Offset)
		n++
	}
	assert.Greater(t, n, 1)

	_, h := l.Bounds()
	assert.Equal(t, n*l.LineHeight(), h)
	assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(lineTexts(l), " ")))
}

func TestLayout_ExplicitNewlines(t *testing.T) {
	l := newTestLayout(t, "first\n\nthird", 400, 14)
	assert.Equal(t, []string{"first", "", "third"}, lineTexts(l))
}

func TestLayout_BreaksLongWord(t *testing.T) {
	word := strings.Repeat("W", 60)
	l := newTestLayout(t, word, 100, 14)

	lines := lineTexts(l)
	assert.Greater(t, len(lines), 1)
	assert.Equal(t, word, strings.Join(lines, ""))
	for line := range l.Lines() {
		assert.LessOrEqual(t, line.Width, 100)
	}
}

func TestLayout_Restartable(t *testing.T) {
	l := newTestLayout(t, "the quick brown fox jumps over the lazy dog", 90, 14)

	first := slices.Collect(l.Lines())
	second := slices.Collect(l.Lines())
	assert.Equal(t, first, second)

	// Stopping early and starting again yields the same prefix.
	for line := range l.Lines() {
		assert.Equal(t, first[0], line)
		break
	}
}

func TestLayout_DefaultSize(t *testing.T) {
	for _, size := range []float64{0, -3} {
		l := newTestLayout(t, "Hello", 400, size)
		assert.Equal(t, float64(DefaultFontSize), l.Size())
	}

	def := newTestLayout(t, "Hello", 400, 0)
	explicit := newTestLayout(t, "Hello", 400, DefaultFontSize)
	dw, dh := def.Bounds()
	ew, eh := explicit.Bounds()
	assert.Equal(t, ew, dw)
	assert.Equal(t, eh, dh)
}

func TestLayout_LargerFontIsWider(t *testing.T) {
	small := newTestLayout(t, "Hello", 800, 14)
	large := newTestLayout(t, "Hello", 800, 36)

	sw, sh := small.Bounds()
	lw, lh := large.Bounds()
	assert.Greater(t, lw, sw)
	assert.Greater(t, lh, sh)
}

func TestNewLayout_Errors(t *testing.T) {
	fonts := NewFontRegistry(logrus.New())
	f := fonts.Default(StyleNormal)

	tests := []struct {
		name  string
		text  string
		width int
		font  *Font
	}{
		{"empty text", "", 100, f},
		{"blank text", "  \n ", 100, f},
		{"zero width", "Hello", 0, f},
		{"negative width", "Hello", -1, f},
		{"no font", "Hello", 100, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLayout(tt.text, tt.width, tt.font, 14)
			assert.Equal(t, apperrors.KindLayoutError, apperrors.KindOf(err))
		})
	}
}
