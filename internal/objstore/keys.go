package objstore

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Two-level key namespace inside the bucket.
const (
	AudioPrefix = "audio"
	ArtPrefix   = "art"
)

const maxSlugLength = 60

var slugPattern = regexp.MustCompile(`[^\w\-.]`)

// BuildKey constructs a collision-resistant object key of the form
// prefix/<unix-timestamp>_<slug>.<ext>. The timestamp keeps repeated ingests
// of identically named tracks from overwriting each other.
func BuildKey(prefix, title, ext string) string {
	return fmt.Sprintf("%s/%d_%s.%s", prefix, time.Now().Unix(), Slug(title), ext)
}

// Slug derives a storage-safe fragment from a title: non-word characters
// replaced with underscores, length capped.
func Slug(title string) string {
	safe := slugPattern.ReplaceAllString(title, "_")
	if len(safe) > maxSlugLength {
		safe = safe[:maxSlugLength]
	}
	return safe
}

// ContentTypeForExt maps an audio or image file extension to its MIME type.
// Unrecognized extensions fall back to the generic audio type.
func ContentTypeForExt(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "mp3":
		return "audio/mpeg"
	case "m4a":
		return "audio/mp4"
	case "ogg", "opus":
		return "audio/ogg"
	case "flac":
		return "audio/flac"
	case "wav":
		return "audio/wav"
	case "webm":
		return "audio/webm"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	default:
		return "audio/mpeg"
	}
}
