package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"ytscribe/internal/logging"
	"ytscribe/internal/pipeline"
	"ytscribe/internal/services"
)

type stubStrategy struct {
	name       string
	transcript string
	err        error
	calls      int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Attempt(_ context.Context, _ pipeline.Request) (string, error) {
	s.calls++
	return s.transcript, s.err
}

type memoryCache struct {
	entries map[string]string
	stores  int
}

func cacheKey(videoID, lang string, timestamps bool) string {
	key := videoID + "|" + lang
	if timestamps {
		key += "|ts"
	}
	return key
}

func (c *memoryCache) Lookup(_ context.Context, videoID, lang string, timestamps bool) (string, bool) {
	transcript, ok := c.entries[cacheKey(videoID, lang, timestamps)]
	return transcript, ok
}

func (c *memoryCache) Store(_ context.Context, videoID, lang string, timestamps bool, transcript string) error {
	if c.entries == nil {
		c.entries = make(map[string]string)
	}
	c.entries[cacheKey(videoID, lang, timestamps)] = transcript
	c.stores++
	return nil
}

func TestRunFallsThroughToNextStrategy(t *testing.T) {
	first := &stubStrategy{name: "proxy-rotation", err: services.Wrap(services.ErrRateLimited, "proxy-rotation", "attempt", "throttled", nil)}
	second := &stubStrategy{name: "browser-cookies", transcript: "it worked"}

	p := pipeline.New([]pipeline.Strategy{first, second})
	outcome, err := p.Run(context.Background(), "dQw4w9WgXcQ", false, "en")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Transcript != "it worked" {
		t.Fatalf("unexpected transcript: %q", outcome.Transcript)
	}
	if outcome.Strategy != "browser-cookies" {
		t.Fatalf("unexpected winning strategy: %q", outcome.Strategy)
	}
	if len(outcome.Attempts) != 1 || outcome.Attempts[0].Strategy != "proxy-rotation" || outcome.Attempts[0].Code != services.CodeRateLimited {
		t.Fatalf("unexpected attempt log: %+v", outcome.Attempts)
	}
}

func TestRunExhaustionSummary(t *testing.T) {
	strategies := []pipeline.Strategy{
		&stubStrategy{name: "proxy-rotation", err: services.Wrap(services.ErrRateLimited, "", "", "", nil)},
		&stubStrategy{name: "browser-cookies", err: services.Wrap(services.ErrNotFound, "", "", "", nil)},
		&stubStrategy{name: "innertube", err: errors.New("mystery failure")},
	}

	_, err := pipeline.New(strategies).Run(context.Background(), "dQw4w9WgXcQ", false, "")
	if err == nil {
		t.Fatal("expected exhaustion error")
	}

	lines := strings.Split(err.Error(), "\n")
	want := []string{
		"All methods failed:",
		"proxy-rotation: rate_limited",
		"browser-cookies: not_found",
		"innertube: error",
	}
	if len(lines) != len(want) {
		t.Fatalf("summary line count = %d, want %d: %q", len(lines), len(want), err.Error())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("summary line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRunInvalidInputShortCircuits(t *testing.T) {
	strategy := &stubStrategy{name: "proxy-rotation", transcript: "never"}

	_, err := pipeline.New([]pipeline.Strategy{strategy}).Run(context.Background(), "not a url", false, "")
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("expected invalid-input error, got %v", err)
	}
	if strategy.calls != 0 {
		t.Fatalf("no strategy should run for invalid input, got %d calls", strategy.calls)
	}
}

func TestRunResolvesURLBeforeStrategies(t *testing.T) {
	strategy := &stubStrategy{name: "innertube", transcript: "ok"}

	outcome, err := pipeline.New([]pipeline.Strategy{strategy}).Run(
		context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=30", false, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected video id: %q", outcome.VideoID)
	}
}

func TestRunTreatsBlankTranscriptAsFailure(t *testing.T) {
	blank := &stubStrategy{name: "proxy-rotation", transcript: "   "}
	good := &stubStrategy{name: "innertube", transcript: "text"}

	outcome, err := pipeline.New([]pipeline.Strategy{blank, good}).Run(context.Background(), "dQw4w9WgXcQ", false, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Strategy != "innertube" {
		t.Fatalf("blank transcript should fall through, winner = %q", outcome.Strategy)
	}
	if len(outcome.Attempts) != 1 || outcome.Attempts[0].Code != services.CodeEmpty {
		t.Fatalf("unexpected attempt log: %+v", outcome.Attempts)
	}
}

func TestRunUsesCache(t *testing.T) {
	cache := &memoryCache{entries: map[string]string{
		cacheKey("dQw4w9WgXcQ", "en", false): "cached transcript",
	}}
	strategy := &stubStrategy{name: "proxy-rotation", transcript: "fresh"}

	p := pipeline.New([]pipeline.Strategy{strategy}, pipeline.WithCache(cache))
	outcome, err := p.Run(context.Background(), "dQw4w9WgXcQ", false, "en")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !outcome.FromCache || outcome.Transcript != "cached transcript" {
		t.Fatalf("expected cache hit, got %+v", outcome)
	}
	if strategy.calls != 0 {
		t.Fatal("strategies should not run on a cache hit")
	}
}

func TestRunStoresSuccessInCache(t *testing.T) {
	cache := &memoryCache{}
	strategy := &stubStrategy{name: "innertube", transcript: "fresh text"}

	p := pipeline.New([]pipeline.Strategy{strategy}, pipeline.WithCache(cache))
	if _, err := p.Run(context.Background(), "dQw4w9WgXcQ", true, "en"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cache.stores != 1 {
		t.Fatalf("expected one cache store, got %d", cache.stores)
	}
	if got := cache.entries[cacheKey("dQw4w9WgXcQ", "en", true)]; got != "fresh text" {
		t.Fatalf("unexpected cached value: %q", got)
	}
}

func TestRunAttemptLogCarriesTruncatedDetail(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", Output: &buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	noise := strings.Repeat("x", 80)
	failing := &stubStrategy{name: "proxy-rotation", err: services.Wrap(services.ErrRateLimited, "proxy-rotation", "fetch", noise, nil)}
	winning := &stubStrategy{name: "innertube", transcript: "hello"}

	p := pipeline.New([]pipeline.Strategy{failing, winning}, pipeline.WithLogger(logger))
	if _, err := p.Run(context.Background(), "dQw4w9WgXcQ", false, "en"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	logs := buf.String()
	for _, want := range []string{
		`"event_type":"strategy_failed"`,
		`"code":"rate_limited"`,
		`"detail":"`,
	} {
		if !strings.Contains(logs, want) {
			t.Fatalf("expected %s in attempt log, got:\n%s", want, logs)
		}
	}
	// The raw 80-char message must not leak into the detail field untruncated.
	if strings.Contains(logs, `"detail":"`+noise) {
		t.Fatalf("detail not truncated:\n%s", logs)
	}
	if !strings.Contains(logs, `..."`) {
		t.Fatalf("expected truncation ellipsis in detail, got:\n%s", logs)
	}
}
