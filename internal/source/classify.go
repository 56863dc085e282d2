package source

import "strings"

// Kind is how an image URI is acquired.
type Kind int

const (
	// KindLocalResource is a bundled, named resource decoded synchronously.
	KindLocalResource Kind = iota
	// KindRemote is an http:// or https:// URL.
	KindRemote
	// KindEmbeddedFile is a file:// URI.
	KindEmbeddedFile
	// KindInlineData is a base64 data: URI carrying an image.
	KindInlineData
)

func (k Kind) String() string {
	switch k {
	case KindRemote:
		return "remote"
	case KindEmbeddedFile:
		return "file"
	case KindInlineData:
		return "data"
	default:
		return "resource"
	}
}

// Async reports whether sources of this kind go through the acquirer.
func (k Kind) Async() bool {
	return k != KindLocalResource
}

// Classify decides how uri is acquired. Anything that is not an http(s),
// file or base64 image data URI is treated as a local resource name.
func Classify(uri string) Kind {
	switch {
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return KindRemote
	case strings.HasPrefix(uri, "file://"):
		return KindEmbeddedFile
	case strings.HasPrefix(uri, "data:") && strings.Contains(uri, "base64") &&
		(strings.Contains(uri, "image") || strings.Contains(uri, "img")):
		return KindInlineData
	default:
		return KindLocalResource
	}
}
