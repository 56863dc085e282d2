package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/image-marker-mcp/internal/imaging"
)

// resourceExtensions are tried, in order, after the bare name.
var resourceExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".gif", ".bmp"}

// errResourceNotFound is returned when no directory holds the resource.
var errResourceNotFound = errors.New("resource not found")

// Resources finds named images in a list of directories. A name is looked up
// as given and then with each common image extension, so "logo" finds
// "logo.png". Absolute paths are opened directly.
type Resources struct {
	Dirs []string
}

// Locate returns the path of the named resource.
func (r Resources) Locate(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty resource name: %w", errResourceNotFound)
	}

	if filepath.IsAbs(name) {
		if isFile(name) {
			return name, nil
		}
		return "", fmt.Errorf("%s: %w", name, errResourceNotFound)
	}

	// Names are resolved inside the resource directories only.
	clean := filepath.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s escapes the resource directories: %w", name, errResourceNotFound)
	}

	for _, dir := range r.Dirs {
		base := filepath.Join(dir, clean)
		if isFile(base) {
			return base, nil
		}
		for _, ext := range resourceExtensions {
			if isFile(base + ext) {
				return base + ext, nil
			}
		}
	}
	return "", fmt.Errorf("%s: %w", name, errResourceNotFound)
}

// Load locates and decodes the named resource.
func (r Resources) Load(name string) (*imaging.Raster, error) {
	path, err := r.Locate(name)
	if err != nil {
		return nil, err
	}
	return imaging.Open(path)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
