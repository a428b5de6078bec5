package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"ytscribe/internal/logging"
)

// Endpoint is one rotating proxy exit node. Credentials live on the pool; the
// provider issues one account for all endpoints.
type Endpoint struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	Country string `json:"country,omitempty"`
	City    string `json:"city,omitempty"`
}

// Pool is a credentialed set of rotating proxy endpoints.
type Pool struct {
	Username  string     `json:"username"`
	Password  string     `json:"password"`
	Endpoints []Endpoint `json:"proxies"`
}

// Empty reports whether the pool has no usable endpoints.
func (p Pool) Empty() bool {
	return len(p.Endpoints) == 0
}

// URL builds the authenticated proxy URL for an endpoint, using the http
// scheme expected by the download tool's --proxy flag.
func (p Pool) URL(ep Endpoint) string {
	u := url.URL{
		Scheme: "http",
		Host:   fmt.Sprintf("%s:%d", ep.Host, ep.Port),
	}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	return u.String()
}

// Shuffled returns a randomized copy of the endpoint list. The pool itself is
// never reordered; each pipeline run shuffles its own copy.
func (p Pool) Shuffled() []Endpoint {
	out := make([]Endpoint, len(p.Endpoints))
	copy(out, p.Endpoints)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// DefaultPoolPaths returns the candidate credential file locations in probe
// order.
func DefaultPoolPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "ytscribe", "proxies.json"),
			filepath.Join(home, ".ytscribe", "proxies.json"),
		)
	}
	paths = append(paths, "proxies.json")
	return paths
}

// LoadPool probes the candidate paths in order and parses the first file that
// exists. A missing or malformed file yields an empty pool, never an error;
// the pipeline treats an empty pool as "skip the proxy strategy".
func LoadPool(paths []string, logger *slog.Logger) Pool {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "proxy")

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Warn("proxy credentials unreadable",
					logging.String("path", path),
					logging.Error(err))
			}
			continue
		}

		var pool Pool
		if err := json.Unmarshal(data, &pool); err != nil {
			logger.Warn("proxy credentials malformed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "proxy rotation disabled for this run"))
			return Pool{}
		}

		pool.Endpoints = pruneEndpoints(pool.Endpoints)
		logger.Debug("loaded proxy pool",
			logging.String("path", path),
			logging.Int("endpoint_count", len(pool.Endpoints)))
		return pool
	}

	return Pool{}
}

func pruneEndpoints(endpoints []Endpoint) []Endpoint {
	out := endpoints[:0]
	for _, ep := range endpoints {
		ep.Host = strings.TrimSpace(ep.Host)
		if ep.Host == "" || ep.Port <= 0 {
			continue
		}
		out = append(out, ep)
	}
	return out
}
