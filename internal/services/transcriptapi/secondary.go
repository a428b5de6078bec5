package transcriptapi

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/url"
	"strings"

	"ytscribe/internal/captions"
	"ytscribe/internal/services"
)

// Block-page markers: the XML endpoint serves interstitial text instead of an
// HTTP error when it is being throttled upstream.
var blockMarkers = []string{"sorry", "blocking"}

// Secondary fetches transcripts from the hosted service that exposes both a
// JSON endpoint and a timedtext XML endpoint. The XML endpoint is only
// consulted when the JSON endpoint yields nothing usable.
type Secondary struct {
	jsonEndpoint string
	xmlEndpoint  string
	client       HTTPDoer
}

// NewSecondary constructs a client for the secondary hosted service.
func NewSecondary(jsonEndpoint, xmlEndpoint string, opts ...Option) *Secondary {
	resolved := resolveOptions(opts)
	return &Secondary{
		jsonEndpoint: strings.TrimSpace(jsonEndpoint),
		xmlEndpoint:  strings.TrimSpace(xmlEndpoint),
		client:       resolved.client,
	}
}

// Fetch retrieves and assembles the transcript for a video.
func (s *Secondary) Fetch(ctx context.Context, videoID string, includeTimestamps bool, lang string) (string, error) {
	if s.jsonEndpoint != "" {
		transcript, err := s.fetchJSON(ctx, videoID, includeTimestamps, lang)
		if err == nil && transcript != "" {
			return transcript, nil
		}
		if services.Classify(err) == services.CodeRateLimited {
			return "", err
		}
		// Empty or malformed JSON falls through to the XML endpoint.
	}

	if s.xmlEndpoint == "" {
		return "", services.Wrap(services.ErrEmpty, "transcript-api-secondary", "fetch", "json endpoint yielded nothing and no xml fallback configured", nil)
	}
	return s.fetchXML(ctx, videoID, includeTimestamps, lang)
}

func (s *Secondary) fetchJSON(ctx context.Context, videoID string, includeTimestamps bool, lang string) (string, error) {
	params := url.Values{"video_id": {videoID}}
	if lang != "" {
		params.Set("lang", lang)
	}
	body, err := get(ctx, s.client, "transcript-api-secondary", s.jsonEndpoint, params)
	if err != nil {
		return "", err
	}
	cues, err := decodeCues(body)
	if err != nil {
		return "", err
	}
	return captions.FromCues(cues, includeTimestamps), nil
}

func (s *Secondary) fetchXML(ctx context.Context, videoID string, includeTimestamps bool, lang string) (string, error) {
	params := url.Values{"video_id": {videoID}}
	if lang != "" {
		params.Set("lang", lang)
	}
	body, err := get(ctx, s.client, "transcript-api-secondary", s.xmlEndpoint, params)
	if err != nil {
		return "", err
	}

	cues, err := parseTimedText(body)
	if err != nil {
		return "", err
	}

	transcript := captions.FromCues(cues, includeTimestamps)
	if transcript == "" {
		return "", services.Wrap(services.ErrEmpty, "transcript-api-secondary", "fetch", "xml endpoint returned no usable cues", nil)
	}
	return transcript, nil
}

type timedText struct {
	XMLName xml.Name       `xml:"transcript"`
	Texts   []timedTextCue `xml:"text"`
}

type timedTextCue struct {
	Start float64 `xml:"start,attr"`
	Dur   float64 `xml:"dur,attr"`
	Body  string  `xml:",chardata"`
}

func parseTimedText(body []byte) ([]captions.Cue, error) {
	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode timedtext payload: %w", err)
	}

	cues := make([]captions.Cue, 0, len(doc.Texts))
	for _, entry := range doc.Texts {
		text := html.UnescapeString(strings.TrimSpace(entry.Body))
		if text == "" || isBlockPageLine(text) {
			continue
		}
		cues = append(cues, captions.Cue{Start: entry.Start, Dur: entry.Dur, Text: text})
	}
	return cues, nil
}

func isBlockPageLine(text string) bool {
	lowered := strings.ToLower(text)
	for _, marker := range blockMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
