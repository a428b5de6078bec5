package captions

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	timeRangeLine = regexp.MustCompile(`^(\d{1,2}:\d{2}:\d{2}\.\d{3})\s*-->`)
	markupTag     = regexp.MustCompile(`<[^>]*>`)
	sequenceLine  = regexp.MustCompile(`^\d+$`)
	spaceRun      = regexp.MustCompile(`\s+`)
)

// Auto-caption filler markers stripped during cleanup.
var fillerMarkers = []string{"[Music]", "[Applause]"}

// ParseVTT extracts transcript text from WebVTT content. Header and metadata
// lines are skipped, inline markup tags are stripped, and a cue text identical
// to any previously emitted cue is dropped; overlapping auto-caption segments
// repeat the same text across adjacent cues.
func ParseVTT(raw string, includeTimestamps bool) string {
	var (
		lines            []string
		seen             = make(map[string]struct{})
		currentTimestamp string
	)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "WEBVTT" ||
			strings.HasPrefix(line, "NOTE") ||
			strings.HasPrefix(line, "STYLE") ||
			strings.HasPrefix(line, "Kind:") ||
			strings.HasPrefix(line, "Language:") {
			continue
		}

		if match := timeRangeLine.FindStringSubmatch(line); match != nil {
			currentTimestamp = reformatVTTTimestamp(match[1])
			continue
		}
		if sequenceLine.MatchString(line) {
			continue
		}

		text := cleanCueText(line)
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}

		if includeTimestamps && currentTimestamp != "" {
			lines = append(lines, fmt.Sprintf("[%s] %s", currentTimestamp, text))
		} else {
			lines = append(lines, text)
		}
	}

	return joinCueLines(lines, includeTimestamps)
}

// Cue is one timed caption entry from a transcript API payload.
type Cue struct {
	Start float64
	Dur   float64
	Text  string
}

// FromCues assembles transcript text from already-parsed cues, applying the
// same dedupe and cleanup rules as the VTT path.
func FromCues(cues []Cue, includeTimestamps bool) string {
	var (
		lines []string
		seen  = make(map[string]struct{})
	)
	for _, cue := range cues {
		text := cleanCueText(cue.Text)
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}

		if includeTimestamps {
			lines = append(lines, fmt.Sprintf("[%s] %s", FormatTimestamp(cue.Start), text))
		} else {
			lines = append(lines, text)
		}
	}
	return joinCueLines(lines, includeTimestamps)
}

// FormatTimestamp renders seconds as MM:SS, or HH:MM:SS once an hour is
// reached.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

func joinCueLines(lines []string, includeTimestamps bool) string {
	if includeTimestamps {
		return strings.TrimSpace(strings.Join(lines, "\n"))
	}
	return strings.TrimSpace(strings.Join(lines, " "))
}

func cleanCueText(text string) string {
	text = markupTag.ReplaceAllString(text, "")
	for _, marker := range fillerMarkers {
		text = strings.ReplaceAll(text, marker, "")
	}
	text = spaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// reformatVTTTimestamp converts a VTT range start (HH:MM:SS.mmm) into the
// display form, dropping the hour field when zero.
func reformatVTTTimestamp(ts string) string {
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return ts
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return ts
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return ts
	}
	secondsFloat, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return ts
	}
	seconds := int(secondsFloat)
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
