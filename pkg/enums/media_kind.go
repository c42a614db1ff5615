package enums

import "fmt"

// MediaKind names one of the ordered media collections of a product.
type MediaKind string

const (
	MediaKindGallery       MediaKind = "gallery"
	MediaKindDocumentation MediaKind = "documentation"
	MediaKindVideo         MediaKind = "videos"
)

var validMediaKinds = []MediaKind{
	MediaKindGallery,
	MediaKindDocumentation,
	MediaKindVideo,
}

// String implements fmt.Stringer.
func (m MediaKind) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MediaKind.
func (m MediaKind) IsValid() bool {
	for _, candidate := range validMediaKinds {
		if candidate == m {
			return true
		}
	}
	return false
}

// AcceptsUploads reports whether items of this kind come from file uploads.
func (m MediaKind) AcceptsUploads() bool {
	return m == MediaKindGallery || m == MediaKindDocumentation
}

// ParseMediaKind converts raw input into a MediaKind.
func ParseMediaKind(value string) (MediaKind, error) {
	for _, candidate := range validMediaKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media kind %q", value)
}
