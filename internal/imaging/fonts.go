package imaging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontStyle selects a typeface variant.
type FontStyle int

const (
	StyleNormal FontStyle = iota
	StyleBold
)

func (s FontStyle) String() string {
	if s == StyleBold {
		return "bold"
	}
	return "normal"
}

// Font is a parsed, renderable typeface.
type Font struct {
	Name string
	otf  *opentype.Font
}

// Face creates a face at size points (72 DPI, so points equal pixels).
// The caller must Close the face.
func (f *Font) Face(size float64) (font.Face, error) {
	face, err := opentype.NewFace(f.otf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face %s: %w", f.Name, err)
	}
	return face, nil
}

// FontResolver looks up a typeface by name and style.
type FontResolver interface {
	Resolve(name string, style FontStyle) (*Font, error)
}

var builtinTTF = map[string]map[FontStyle][]byte{
	"go":        {StyleNormal: goregular.TTF, StyleBold: gobold.TTF},
	"goregular": {StyleNormal: goregular.TTF, StyleBold: gobold.TTF},
	"gobold":    {StyleNormal: gobold.TTF, StyleBold: gobold.TTF},
	"goitalic":  {StyleNormal: goitalic.TTF, StyleBold: gobolditalic.TTF},
	"gomedium":  {StyleNormal: gomedium.TTF, StyleBold: gobold.TTF},
	"gomono":    {StyleNormal: gomono.TTF, StyleBold: gomonobold.TTF},
}

// FontRegistry resolves fonts from the embedded Go font family and from
// .ttf/.otf files found in a list of directories. Parsed fonts are kept for
// the life of the registry; it is safe for concurrent use.
type FontRegistry struct {
	dirs []string
	log  logrus.FieldLogger

	mu     sync.Mutex
	parsed map[string]*Font
}

// NewFontRegistry creates a registry searching dirs (in order) after the
// built-in fonts.
func NewFontRegistry(log logrus.FieldLogger, dirs ...string) *FontRegistry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FontRegistry{
		dirs:   dirs,
		log:    log,
		parsed: make(map[string]*Font),
	}
}

// normalizeFontName folds "Go-Bold", "go_bold" and "GoBold" to "gobold".
func normalizeFontName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(name)
}

// Resolve returns the named font in the requested style. Bold lookups in a
// font directory try "<name>-Bold", "<name>_Bold" and "<name>Bold" before
// falling back to the regular file.
func (r *FontRegistry) Resolve(name string, style FontStyle) (*Font, error) {
	key := normalizeFontName(name)
	if key == "" {
		return nil, fmt.Errorf("empty font name")
	}
	cacheKey := key + "/" + style.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.parsed[cacheKey]; ok {
		return f, nil
	}

	var data []byte
	if styles, ok := builtinTTF[key]; ok {
		data = styles[style]
	} else {
		path, err := r.findFile(name, style)
		if err != nil {
			return nil, err
		}
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", path, err)
		}
	}

	otf, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", name, err)
	}
	f := &Font{Name: name, otf: otf}
	r.parsed[cacheKey] = f
	return f, nil
}

func (r *FontRegistry) findFile(name string, style FontStyle) (string, error) {
	base := strings.TrimSpace(name)
	if base != filepath.Base(base) {
		return "", fmt.Errorf("font name %q must not contain a path", name)
	}

	stems := []string{base}
	if style == StyleBold {
		stems = []string{base + "-Bold", base + "_Bold", base + "Bold", base}
	}

	for _, dir := range r.dirs {
		for _, stem := range stems {
			for _, ext := range []string{"", ".ttf", ".otf"} {
				path := filepath.Join(dir, stem+ext)
				if info, err := os.Stat(path); err == nil && !info.IsDir() {
					return path, nil
				}
			}
		}
	}
	return "", fmt.Errorf("font %q not found", name)
}

// Default returns the built-in Go font in the given style.
func (r *FontRegistry) Default(style FontStyle) *Font {
	f, err := r.Resolve("go", style)
	if err != nil {
		// The embedded TTFs always parse; reaching this is a broken build.
		panic(fmt.Sprintf("imaging: default font unavailable: %v", err))
	}
	return f
}

// ResolveOrDefault never fails: an empty or unresolvable name yields the
// default font.
func (r *FontRegistry) ResolveOrDefault(name string, style FontStyle) *Font {
	if strings.TrimSpace(name) == "" {
		return r.Default(style)
	}
	f, err := r.Resolve(name, style)
	if err != nil {
		r.log.WithError(err).WithField("font", name).Debug("falling back to default font")
		return r.Default(style)
	}
	return f
}
