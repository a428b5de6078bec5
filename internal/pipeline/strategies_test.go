package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"ytscribe/internal/pipeline"
	"ytscribe/internal/proxy"
	"ytscribe/internal/services"
	"ytscribe/internal/services/ytdlp"
)

type fetchCall struct {
	opts ytdlp.FetchOptions
}

// scriptedFetcher returns canned results per call, recording options.
type scriptedFetcher struct {
	results []struct {
		transcript string
		err        error
	}
	calls []fetchCall
}

func (f *scriptedFetcher) push(transcript string, err error) {
	f.results = append(f.results, struct {
		transcript string
		err        error
	}{transcript, err})
}

func (f *scriptedFetcher) Fetch(_ context.Context, _ string, opts ytdlp.FetchOptions) (string, error) {
	f.calls = append(f.calls, fetchCall{opts: opts})
	if len(f.results) == 0 {
		return "", errors.New("unexpected call")
	}
	next := f.results[0]
	f.results = f.results[1:]
	return next.transcript, next.err
}

func rateLimited() error {
	return services.Wrap(services.ErrRateLimited, "ytdlp", "fetch", "throttled", nil)
}

func testPool(hosts ...string) proxy.Pool {
	pool := proxy.Pool{Username: "u", Password: "p"}
	for i, host := range hosts {
		pool.Endpoints = append(pool.Endpoints, proxy.Endpoint{Host: host, Port: 8000 + i})
	}
	return pool
}

func TestProxyRotationAdvancesOnRateLimit(t *testing.T) {
	fetcher := &scriptedFetcher{}
	fetcher.push("", rateLimited())
	fetcher.push("got it", nil)

	strategy := &pipeline.ProxyRotation{Pool: testPool("a", "b", "c"), Fetcher: fetcher}
	got, err := strategy.Attempt(context.Background(), pipeline.Request{VideoID: "dQw4w9WgXcQ"})
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if got != "got it" {
		t.Fatalf("unexpected transcript: %q", got)
	}
	if len(fetcher.calls) != 2 {
		t.Fatalf("expected 2 proxy attempts, got %d", len(fetcher.calls))
	}
	for _, call := range fetcher.calls {
		if call.opts.ProxyURL == "" {
			t.Fatal("every rotation attempt must carry a proxy URL")
		}
	}
}

func TestProxyRotationStopsOnNonRateLimit(t *testing.T) {
	fetcher := &scriptedFetcher{}
	fetcher.push("", services.Wrap(services.ErrNotFound, "ytdlp", "fetch", "no captions", nil))

	strategy := &pipeline.ProxyRotation{Pool: testPool("a", "b", "c"), Fetcher: fetcher}
	_, err := strategy.Attempt(context.Background(), pipeline.Request{VideoID: "dQw4w9WgXcQ"})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if len(fetcher.calls) != 1 {
		t.Fatalf("non-rate-limit failure should stop rotation, got %d calls", len(fetcher.calls))
	}
}

func TestProxyRotationCapsAttempts(t *testing.T) {
	fetcher := &scriptedFetcher{}
	for n := 0; n < 7; n++ {
		fetcher.push("", rateLimited())
	}

	strategy := &pipeline.ProxyRotation{Pool: testPool("a", "b", "c", "d", "e", "f", "g"), Fetcher: fetcher}
	_, err := strategy.Attempt(context.Background(), pipeline.Request{VideoID: "dQw4w9WgXcQ"})
	if !errors.Is(err, services.ErrRateLimited) {
		t.Fatalf("expected rate-limited error, got %v", err)
	}
	if len(fetcher.calls) != 5 {
		t.Fatalf("rotation should cap at 5 proxies, got %d calls", len(fetcher.calls))
	}
}

func TestBrowserCookiesTriesProfilesThenNoAuth(t *testing.T) {
	fetcher := &scriptedFetcher{}
	fetcher.push("", rateLimited())
	fetcher.push("", rateLimited())
	fetcher.push("from chrome... no, plain", nil)

	strategy := &pipeline.BrowserCookies{Fetcher: fetcher, Profiles: []string{"firefox", "chrome"}}
	got, err := strategy.Attempt(context.Background(), pipeline.Request{VideoID: "dQw4w9WgXcQ"})
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if got == "" {
		t.Fatal("expected transcript from final no-auth attempt")
	}

	if fetcher.calls[0].opts.CookiesFromBrowser != "firefox" || fetcher.calls[1].opts.CookiesFromBrowser != "chrome" {
		t.Fatalf("unexpected profile order: %+v", fetcher.calls)
	}
	if fetcher.calls[2].opts.CookiesFromBrowser != "" {
		t.Fatal("final attempt should run without browser cookies")
	}
}

func TestBrowserCookiesStopsWhenToolMissing(t *testing.T) {
	fetcher := &scriptedFetcher{}
	fetcher.push("", services.Wrap(services.ErrToolUnavailable, "ytdlp", "fetch", "missing", nil))

	strategy := &pipeline.BrowserCookies{Fetcher: fetcher}
	_, err := strategy.Attempt(context.Background(), pipeline.Request{VideoID: "dQw4w9WgXcQ"})
	if !errors.Is(err, services.ErrToolUnavailable) {
		t.Fatalf("expected tool-unavailable error, got %v", err)
	}
	if len(fetcher.calls) != 1 {
		t.Fatalf("missing tool should stop profile iteration, got %d calls", len(fetcher.calls))
	}
}

func TestSavedProxyRequiresPinnedProxy(t *testing.T) {
	strategy := &pipeline.SavedProxy{Fetcher: &scriptedFetcher{}}
	_, err := strategy.Attempt(context.Background(), pipeline.Request{VideoID: "dQw4w9WgXcQ"})
	if !errors.Is(err, services.ErrToolUnavailable) {
		t.Fatalf("expected tool-unavailable error, got %v", err)
	}
}

func TestSavedProxyUsesPinnedURL(t *testing.T) {
	fetcher := &scriptedFetcher{}
	fetcher.push("pinned result", nil)

	strategy := &pipeline.SavedProxy{
		Config: proxy.SavedConfig{
			ActiveProxy: &proxy.Pinned{Host: "203.0.113.9", Port: 3128, ProxyType: "socks5"},
		},
		Fetcher: fetcher,
	}
	got, err := strategy.Attempt(context.Background(), pipeline.Request{VideoID: "dQw4w9WgXcQ"})
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if got != "pinned result" {
		t.Fatalf("unexpected transcript: %q", got)
	}
	if fetcher.calls[0].opts.ProxyURL != "socks5://203.0.113.9:3128" {
		t.Fatalf("unexpected proxy url: %q", fetcher.calls[0].opts.ProxyURL)
	}
}
