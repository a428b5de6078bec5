package proxy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	healthCheckTimeout = 10 * time.Second
	healthConcurrency  = 8
)

// HealthResult records the outcome of probing one endpoint.
type HealthResult struct {
	Endpoint Endpoint
	Latency  time.Duration
	Err      error
}

// OK reports whether the endpoint answered the probe.
func (r HealthResult) OK() bool {
	return r.Err == nil
}

// CheckPool probes every endpoint in the pool concurrently against targetURL
// and returns one result per endpoint in pool order. Endpoint failures are
// reported in the results, not as an error; the returned error is reserved
// for context cancellation.
func CheckPool(ctx context.Context, pool Pool, targetURL string) ([]HealthResult, error) {
	results := make([]HealthResult, len(pool.Endpoints))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(healthConcurrency)
	for i, ep := range pool.Endpoints {
		i, ep := i, ep
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			latency, err := probe(ctx, pool.URL(ep), targetURL)
			results[i] = HealthResult{Endpoint: ep, Latency: latency, Err: err}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func probe(ctx context.Context, proxyURL, targetURL string) (time.Duration, error) {
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return 0, fmt.Errorf("parse proxy url: %w", err)
	}

	client := &http.Client{
		Transport: &http.Transport{Proxy: http.ProxyURL(parsed)},
		Timeout:   healthCheckTimeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build probe request: %w", err)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("probe returned status %d", resp.StatusCode)
	}
	return time.Since(start), nil
}
