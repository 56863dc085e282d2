package marker

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Default extensions for generated destinations.
const (
	TextExtension  = ".jpg"
	ImageExtension = ".png"
)

// DestinationPath derives where a result is written. A filename that already
// ends in .jpg, .jpeg or .png is used as is; any other name gets defaultExt
// appended; an empty name becomes "<uuid>imagemarker" plus defaultExt.
// Directory components in filename are dropped so results stay inside dir.
func DestinationPath(dir, filename, defaultExt string) string {
	name := strings.TrimSpace(filename)
	if name != "" {
		name = filepath.Base(filepath.Clean("/" + name))
	}
	if name == "" || name == "/" || name == "." {
		name = uuid.NewString() + "imagemarker" + defaultExt
	} else if !hasImageExtension(name) {
		name += defaultExt
	}
	return filepath.Join(dir, name)
}

func hasImageExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
