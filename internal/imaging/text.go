package imaging

import (
	"iter"
	"math"
	"strings"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	apperrors "github.com/ironsheep/image-marker-mcp/internal/errors"
)

// DefaultFontSize is used when a request supplies a size of zero or less.
const DefaultFontSize = 14

// LineSpacing multiplies the face's natural line height.
const LineSpacing = 1.0

// Line is one laid-out line of text. Offset is the line's top-left relative
// to the layout origin; Baseline is the distance from the top of the line to
// its baseline.
type Line struct {
	Index    int
	Text     string
	Width    int
	Offset   int
	Baseline int
}

// Layout wraps a block of text to a fixed width for one font face. It holds
// only its inputs; lines are derived on demand.
type Layout struct {
	text  string
	width int
	face  font.Face
	size  float64
}

// NewLayout builds a left-justified layout of text wrapped at width pixels.
// The returned layout owns face and closes it on Close.
func NewLayout(text string, width int, f *Font, size float64) (*Layout, error) {
	const op = "imaging.layout"

	if strings.TrimSpace(text) == "" {
		return nil, apperrors.New(apperrors.KindLayoutError, op, "text is empty")
	}
	if width <= 0 {
		return nil, apperrors.New(apperrors.KindLayoutError, op, "wrap width %d must be positive", width)
	}
	if f == nil {
		return nil, apperrors.New(apperrors.KindLayoutError, op, "no font")
	}
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		size = DefaultFontSize
	}

	face, err := f.Face(size)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindLayoutError, op, err, "font face")
	}

	return &Layout{text: text, width: width, face: face, size: size}, nil
}

// Size is the effective font size in pixels.
func (l *Layout) Size() float64 { return l.size }

// Face exposes the face used for measuring, for rendering by the compositor.
func (l *Layout) Face() font.Face { return l.face }

// Close releases the font face.
func (l *Layout) Close() error {
	if l.face == nil {
		return nil
	}
	err := l.face.Close()
	l.face = nil
	return err
}

// LineHeight is the distance between successive baselines.
func (l *Layout) LineHeight() int {
	m := l.face.Metrics()
	return int(math.Ceil(float64(m.Height.Ceil()) * LineSpacing))
}

// Ascent is the distance from the top of a line to its baseline.
func (l *Layout) Ascent() int {
	return l.face.Metrics().Ascent.Ceil()
}

// Lines yields the wrapped lines in order. Each call recomputes the
// sequence from the start, so it may be ranged over any number of times.
func (l *Layout) Lines() iter.Seq[Line] {
	return func(yield func(Line) bool) {
		lh := l.LineHeight()
		ascent := l.Ascent()
		i := 0
		for text := range l.wrapped() {
			line := Line{
				Index:    i,
				Text:     text,
				Width:    l.measure(text).Ceil(),
				Offset:   i * lh,
				Baseline: ascent,
			}
			if !yield(line) {
				return
			}
			i++
		}
	}
}

// Bounds is the size of the laid-out block: the widest line by the total
// height of all lines.
func (l *Layout) Bounds() (w, h int) {
	n := 0
	for line := range l.Lines() {
		if line.Width > w {
			w = line.Width
		}
		n++
	}
	return w, n * l.LineHeight()
}

func (l *Layout) measure(s string) fixed.Int26_6 {
	return font.MeasureString(l.face, s)
}

// wrapped splits text on explicit newlines and greedily fills each paragraph
// up to the wrap width. A word wider than the width is broken by rune.
func (l *Layout) wrapped() iter.Seq[string] {
	limit := fixed.I(l.width)

	return func(yield func(string) bool) {
		for _, para := range strings.Split(l.text, "\n") {
			para = strings.TrimRightFunc(para, unicode.IsSpace)
			words := strings.Fields(para)
			if len(words) == 0 {
				if !yield("") {
					return
				}
				continue
			}

			var cur string
			for _, word := range words {
				candidate := word
				if cur != "" {
					candidate = cur + " " + word
				}
				if l.measure(candidate) <= limit {
					cur = candidate
					continue
				}
				if cur != "" {
					if !yield(cur) {
						return
					}
					cur = ""
				}
				if l.measure(word) <= limit {
					cur = word
					continue
				}
				pieces := l.breakWord(word, limit)
				for _, piece := range pieces[:len(pieces)-1] {
					if !yield(piece) {
						return
					}
				}
				cur = pieces[len(pieces)-1]
			}
			if cur != "" {
				if !yield(cur) {
					return
				}
			}
		}
	}
}

// breakWord splits an over-long word into runs that each fit the limit.
// A single rune wider than the limit gets a run of its own.
func (l *Layout) breakWord(word string, limit fixed.Int26_6) []string {
	var pieces []string
	var b strings.Builder
	for _, r := range word {
		next := b.String() + string(r)
		if b.Len() > 0 && l.measure(next) > limit {
			pieces = append(pieces, b.String())
			b.Reset()
		}
		b.WriteRune(r)
	}
	if b.Len() > 0 {
		pieces = append(pieces, b.String())
	}
	return pieces
}
