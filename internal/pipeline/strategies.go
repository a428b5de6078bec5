package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"ytscribe/internal/logging"
	"ytscribe/internal/proxy"
	"ytscribe/internal/services"
	"ytscribe/internal/services/ytdlp"
)

// maxRotationAttempts caps how many proxies one run burns through.
const maxRotationAttempts = 5

// DefaultBrowserProfiles is the cookie-source order for the local-session
// strategy, most common browser first.
var DefaultBrowserProfiles = []string{"firefox", "chrome", "edge"}

// CaptionFetcher is the subprocess seam shared by the proxy-routed and
// local-session strategies.
type CaptionFetcher interface {
	Fetch(ctx context.Context, videoID string, opts ytdlp.FetchOptions) (string, error)
}

// APIFetcher is the shared contract of the HTTP and library-backed services.
type APIFetcher interface {
	Fetch(ctx context.Context, videoID string, includeTimestamps bool, lang string) (string, error)
}

// ProxyRotation routes the download tool through rotating proxies, advancing
// to the next proxy only on rate-limit failures.
type ProxyRotation struct {
	Pool    proxy.Pool
	Fetcher CaptionFetcher
	Logger  *slog.Logger
}

func (s *ProxyRotation) Name() string { return "proxy-rotation" }

func (s *ProxyRotation) Attempt(ctx context.Context, req Request) (string, error) {
	if s.Pool.Empty() {
		return "", services.Wrap(services.ErrToolUnavailable, s.Name(), "attempt", "no proxy pool configured", nil)
	}

	endpoints := s.Pool.Shuffled()
	if len(endpoints) > maxRotationAttempts {
		endpoints = endpoints[:maxRotationAttempts]
	}

	var lastErr error
	for _, ep := range endpoints {
		transcript, err := s.Fetcher.Fetch(ctx, req.VideoID, ytdlp.FetchOptions{
			IncludeTimestamps: req.IncludeTimestamps,
			Language:          req.Language,
			ProxyURL:          s.Pool.URL(ep),
		})
		if err == nil {
			return transcript, nil
		}
		lastErr = err
		if services.Classify(err) != services.CodeRateLimited {
			// Non-throttling failures repeat on every exit node; stop burning
			// proxies.
			return "", err
		}
		if s.Logger != nil {
			logging.WithContext(ctx, s.Logger).Debug("proxy rate limited, rotating",
				logging.String("proxy_host", ep.Host))
		}
	}
	return "", lastErr
}

// BrowserCookies runs the download tool with locally stored browser sessions,
// trying each profile before a final unauthenticated attempt.
type BrowserCookies struct {
	Fetcher  CaptionFetcher
	Profiles []string
}

func (s *BrowserCookies) Name() string { return "browser-cookies" }

func (s *BrowserCookies) Attempt(ctx context.Context, req Request) (string, error) {
	profiles := s.Profiles
	if len(profiles) == 0 {
		profiles = DefaultBrowserProfiles
	}

	var lastErr error
	for _, profile := range profiles {
		transcript, err := s.Fetcher.Fetch(ctx, req.VideoID, ytdlp.FetchOptions{
			IncludeTimestamps:  req.IncludeTimestamps,
			Language:           req.Language,
			CookiesFromBrowser: profile,
		})
		if err == nil {
			return transcript, nil
		}
		lastErr = err
		if errors.Is(err, services.ErrToolUnavailable) {
			return "", err
		}
	}

	transcript, err := s.Fetcher.Fetch(ctx, req.VideoID, ytdlp.FetchOptions{
		IncludeTimestamps: req.IncludeTimestamps,
		Language:          req.Language,
	})
	if err == nil {
		return transcript, nil
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", err
}

// APIStrategy adapts an APIFetcher to the strategy contract.
type APIStrategy struct {
	StrategyName string
	Fetcher      APIFetcher
}

func (s *APIStrategy) Name() string { return s.StrategyName }

func (s *APIStrategy) Attempt(ctx context.Context, req Request) (string, error) {
	return s.Fetcher.Fetch(ctx, req.VideoID, req.IncludeTimestamps, req.Language)
}

// SavedProxy retries the download tool through the user-pinned proxy from the
// bypass workflow. It runs last; the pinned proxy is a deliberate manual
// override, not part of the rotating pool.
type SavedProxy struct {
	Config  proxy.SavedConfig
	Fetcher CaptionFetcher
}

func (s *SavedProxy) Name() string { return "saved-proxy" }

func (s *SavedProxy) Attempt(ctx context.Context, req Request) (string, error) {
	if s.Config.ActiveProxy == nil {
		return "", services.Wrap(services.ErrToolUnavailable, s.Name(), "attempt", "no pinned proxy saved", nil)
	}
	return s.Fetcher.Fetch(ctx, req.VideoID, ytdlp.FetchOptions{
		IncludeTimestamps: req.IncludeTimestamps,
		Language:          req.Language,
		ProxyURL:          s.Config.ActiveProxy.URL(),
	})
}
