package transcriptapi

import (
	"context"
	"net/url"
	"strings"

	"ytscribe/internal/captions"
	"ytscribe/internal/services"
)

// Primary fetches transcripts from the JSON-only hosted service.
type Primary struct {
	endpoint string
	client   HTTPDoer
}

// NewPrimary constructs a client for the primary hosted service.
func NewPrimary(endpoint string, opts ...Option) *Primary {
	resolved := resolveOptions(opts)
	return &Primary{
		endpoint: strings.TrimSpace(endpoint),
		client:   resolved.client,
	}
}

// Fetch retrieves and assembles the transcript for a video.
func (p *Primary) Fetch(ctx context.Context, videoID string, includeTimestamps bool, lang string) (string, error) {
	params := url.Values{"video_id": {videoID}}
	if lang != "" {
		params.Set("lang", lang)
	}

	body, err := get(ctx, p.client, "transcript-api-primary", p.endpoint, params)
	if err != nil {
		return "", err
	}

	cues, err := decodeCues(body)
	if err != nil {
		return "", err
	}

	transcript := captions.FromCues(cues, includeTimestamps)
	if transcript == "" {
		return "", services.Wrap(services.ErrEmpty, "transcript-api-primary", "fetch", "service returned no usable cues", nil)
	}
	return transcript, nil
}
