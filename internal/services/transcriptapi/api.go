package transcriptapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"ytscribe/internal/captions"
	"ytscribe/internal/services"
)

// DefaultTimeout bounds one HTTP attempt against a hosted service.
const DefaultTimeout = 25 * time.Second

// HTTPDoer describes the HTTP client used by the transcript API clients.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a client.
type Option func(*clientOptions)

type clientOptions struct {
	client HTTPDoer
}

// WithHTTPClient overrides the HTTP client (primarily for tests).
func WithHTTPClient(client HTTPDoer) Option {
	return func(o *clientOptions) {
		if client != nil {
			o.client = client
		}
	}
}

func resolveOptions(opts []Option) clientOptions {
	resolved := clientOptions{
		client: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(&resolved)
	}
	return resolved
}

// cue matches the common hosted-service cue shape. Providers disagree on
// whether the duration field is "dur" or "duration".
type cue struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Dur      float64 `json:"dur"`
	Duration float64 `json:"duration"`
}

func (c cue) toCaption() captions.Cue {
	dur := c.Dur
	if dur == 0 {
		dur = c.Duration
	}
	return captions.Cue{Start: c.Start, Dur: dur, Text: c.Text}
}

// decodeCues accepts either a bare cue array or a {"transcript": [...]}
// wrapper.
func decodeCues(body []byte) ([]captions.Cue, error) {
	var raw []cue
	if err := json.Unmarshal(body, &raw); err != nil {
		var wrapped struct {
			Transcript []cue `json:"transcript"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("decode transcript payload: %w", err)
		}
		raw = wrapped.Transcript
	}

	cues := make([]captions.Cue, 0, len(raw))
	for _, c := range raw {
		cues = append(cues, c.toCaption())
	}
	return cues, nil
}

func get(ctx context.Context, client HTTPDoer, strategy, endpoint string, params url.Values) ([]byte, error) {
	target, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	query := target.Query()
	for key, values := range params {
		for _, value := range values {
			query.Set(key, value)
		}
	}
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/xml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", strategy, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, services.Wrap(services.ErrRateLimited, strategy, "fetch", "service returned 429", nil)
	case resp.StatusCode == http.StatusNotFound:
		return nil, services.Wrap(services.ErrNotFound, strategy, "fetch", "service returned 404", nil)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s returned status %d", strategy, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", strategy, err)
	}
	return body, nil
}
