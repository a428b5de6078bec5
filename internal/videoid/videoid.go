// Package videoid resolves YouTube URLs and bare identifiers into the
// canonical 11-character video ID.
package videoid

import (
	"regexp"
	"strings"
)

var bareID = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// Ordered by how commonly each URL shape appears; first match wins.
var urlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/v/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`[?&]v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/live/([a-zA-Z0-9_-]{11})`),
}

// Resolve extracts the canonical video ID from a URL or passes a bare ID
// through unchanged. The second return value is false when the input does not
// contain a video ID; that is a normal outcome for arbitrary text, not an
// error.
func Resolve(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	if bareID.MatchString(input) {
		return input, true
	}
	for _, pattern := range urlPatterns {
		if match := pattern.FindStringSubmatch(input); match != nil {
			return match[1], true
		}
	}
	return "", false
}

// WatchURL returns the canonical watch-page URL for a video ID.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
