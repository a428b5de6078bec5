package innertube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"ytscribe/internal/captions"
	"ytscribe/internal/language"
	"ytscribe/internal/services"
)

// DefaultTimeout bounds one HTTP request against the watch page or a track.
const DefaultTimeout = 25 * time.Second

const defaultBaseURL = "https://www.youtube.com"

// HTTPDoer describes the HTTP client used by the innertube client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (primarily for tests).
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithBaseURL overrides the watch-page host (primarily for tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// Client scrapes caption tracks from watch pages.
type Client struct {
	baseURL string
	client  HTTPDoer
}

// New constructs an innertube client.
func New(opts ...Option) *Client {
	client := &Client{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Fetch retrieves the transcript for a video. The language-filtered attempt
// runs first; if no track matches the preference list, the lookup runs once
// more accepting any available track.
func (c *Client) Fetch(ctx context.Context, videoID string, includeTimestamps bool, lang string) (string, error) {
	prefs := language.Preference(lang)

	transcript, err := c.fetch(ctx, videoID, includeTimestamps, prefs)
	if err == nil {
		return transcript, nil
	}
	if services.Classify(err) == services.CodeRateLimited {
		return "", err
	}

	retried, retryErr := c.fetch(ctx, videoID, includeTimestamps, nil)
	if retryErr != nil {
		return "", err
	}
	return retried, nil
}

// captionTrack mirrors the playerCaptionsTrackListRenderer entry shape.
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type captionsPayload struct {
	PlayerCaptionsTrackListRenderer struct {
		CaptionTracks []captionTrack `json:"captionTracks"`
	} `json:"playerCaptionsTrackListRenderer"`
}

func (c *Client) fetch(ctx context.Context, videoID string, includeTimestamps bool, prefs []string) (string, error) {
	page, err := c.get(ctx, c.baseURL+"/watch?v="+videoID)
	if err != nil {
		return "", err
	}

	split := strings.Split(page, `"captions":`)
	if len(split) <= 1 {
		if strings.Contains(page, `class="g-recaptcha"`) {
			return "", services.Wrap(services.ErrRateLimited, "innertube", "fetch", "watch page served a captcha", nil)
		}
		return "", services.Wrap(services.ErrNotFound, "innertube", "fetch", "watch page has no captions payload", nil)
	}

	rawCaptions := strings.ReplaceAll(strings.Split(split[1], `,"videoDetails`)[0], "\n", "")
	var payload captionsPayload
	if err := json.Unmarshal([]byte(rawCaptions), &payload); err != nil {
		return "", fmt.Errorf("decode captions payload: %w", err)
	}

	track := bestTrack(payload.PlayerCaptionsTrackListRenderer.CaptionTracks, prefs)
	if track == nil {
		return "", services.Wrap(services.ErrNotFound, "innertube", "fetch", "no caption track matches the language preference", nil)
	}

	body, err := c.get(ctx, track.BaseURL)
	if err != nil {
		return "", err
	}

	cues, err := parseTimedText([]byte(body))
	if err != nil {
		return "", err
	}

	transcript := captions.FromCues(cues, includeTimestamps)
	if transcript == "" {
		return "", services.Wrap(services.ErrEmpty, "innertube", "fetch", "caption track parsed to empty text", nil)
	}
	return transcript, nil
}

func (c *Client) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call innertube: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read innertube response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", services.Wrap(services.ErrRateLimited, "innertube", "fetch", "youtube returned 429", nil)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("innertube returned status %d", resp.StatusCode)
	}
	return string(body), nil
}

// bestTrack prefers manually authored tracks in a preferred language, then
// auto-generated tracks in a preferred language. With no preference list, any
// manual track beats the first auto-generated one.
func bestTrack(tracks []captionTrack, prefs []string) *captionTrack {
	for _, pref := range prefs {
		for i, t := range tracks {
			if languageMatches(t.LanguageCode, pref) && t.Kind != "asr" {
				return &tracks[i]
			}
		}
	}
	for _, pref := range prefs {
		for i, t := range tracks {
			if languageMatches(t.LanguageCode, pref) {
				return &tracks[i]
			}
		}
	}
	if len(prefs) > 0 {
		return nil
	}

	for i, t := range tracks {
		if t.Kind != "asr" {
			return &tracks[i]
		}
	}
	if len(tracks) > 0 {
		return &tracks[0]
	}
	return nil
}

func languageMatches(trackCode, pref string) bool {
	trackCode = strings.ToLower(trackCode)
	pref = strings.ToLower(pref)
	return trackCode == pref || strings.HasPrefix(trackCode, pref+"-")
}

type timedText struct {
	XMLName xml.Name `xml:"transcript"`
	Entries []struct {
		Text  string  `xml:",chardata"`
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
	} `xml:"text"`
}

func parseTimedText(body []byte) ([]captions.Cue, error) {
	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode timedtext payload: %w", err)
	}

	cues := make([]captions.Cue, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		text := html.UnescapeString(strings.TrimSpace(entry.Text))
		if text == "" {
			continue
		}
		cues = append(cues, captions.Cue{Start: entry.Start, Dur: entry.Dur, Text: text})
	}
	return cues, nil
}
