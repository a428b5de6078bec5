package captions

import "fmt"

// MaxTranscriptChars caps transcript length before the analysis wrapper is
// applied; longer texts blow past downstream model context windows.
const MaxTranscriptChars = 30000

// TruncationMarker is appended whenever Truncate shortens a transcript.
const TruncationMarker = "\n\n[Transcript truncated due to length...]"

// Truncate cuts a transcript to MaxTranscriptChars characters and appends the
// marker. The cut lands on a rune boundary so multibyte captions stay valid
// UTF-8. Shorter transcripts pass through unchanged.
func Truncate(transcript string) string {
	if len(transcript) <= MaxTranscriptChars {
		return transcript
	}
	count := 0
	for i := range transcript {
		if count == MaxTranscriptChars {
			return transcript[:i] + TruncationMarker
		}
		count++
	}
	return transcript
}

// FormatForAnalysis wraps a transcript in the prompt scaffold consumed by
// pattern-based analysis tools.
func FormatForAnalysis(transcript, videoURL string) string {
	return fmt.Sprintf(`The following is a transcript from a YouTube video:
URL: %s

---
TRANSCRIPT:
%s
---

Please analyze this transcript according to the pattern instructions.`, videoURL, transcript)
}
