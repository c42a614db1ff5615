package media

import (
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

func normalizeMIME(value string) (string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", fmt.Errorf("mime type required")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("mime type invalid: %w", err)
	}
	if mediaType == "" {
		return "", fmt.Errorf("mime type missing")
	}
	return strings.ToLower(mediaType), nil
}

// resolveMIME checks both the declared type and the sniffed content type
// against allowed and returns the effective type. An empty declared type
// falls back to the sniffed one.
func resolveMIME(declared string, data []byte, allowed []string) (string, bool) {
	sniffed := mimetype.Detect(data)
	if !sniffedAllowed(sniffed, allowed) {
		return sniffed.String(), false
	}
	if strings.TrimSpace(declared) == "" {
		return normalizedSniff(sniffed), true
	}
	clean, err := normalizeMIME(declared)
	if err != nil {
		return declared, false
	}
	return clean, contains(allowed, clean)
}

func sniffedAllowed(sniffed *mimetype.MIME, allowed []string) bool {
	for m := sniffed; m != nil; m = m.Parent() {
		for _, candidate := range allowed {
			if m.Is(candidate) {
				return true
			}
		}
	}
	return false
}

func normalizedSniff(sniffed *mimetype.MIME) string {
	clean, err := normalizeMIME(sniffed.String())
	if err != nil {
		return sniffed.String()
	}
	return clean
}

func contains(list []string, value string) bool {
	for _, candidate := range list {
		if strings.EqualFold(candidate, value) {
			return true
		}
	}
	return false
}

func humanReadableList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return fmt.Sprintf("%s o %s", items[0], items[1])
	default:
		return fmt.Sprintf("%s o %s", strings.Join(items[:len(items)-1], ", "), items[len(items)-1])
	}
}
