package media

import (
	"fmt"
	"regexp"
	"strings"
)

var youTubePattern = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?(?:m\.)?(?:youtube\.com|youtu\.be)/(?:watch\?v=|embed/|v/|)([\w-]{11})(?:\S+)?`)

// ExtractVideoID returns the 11-character YouTube id in raw, or "" when raw
// is not a recognised YouTube link.
func ExtractVideoID(raw string) string {
	match := youTubePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// ThumbnailURL returns the high-quality preview image of a video.
func ThumbnailURL(videoID string) string {
	if videoID == "" {
		return ""
	}
	return fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", videoID)
}

// VideoItem builds a collection item for a YouTube link.
func VideoItem(id, rawURL string) Item {
	videoID := ExtractVideoID(rawURL)
	return Item{
		ID:        id,
		URL:       strings.TrimSpace(rawURL),
		VideoID:   videoID,
		Thumbnail: ThumbnailURL(videoID),
	}
}
