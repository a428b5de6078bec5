package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"ytscribe/internal/captions"
	"ytscribe/internal/logging"
	"ytscribe/internal/services"
	"ytscribe/internal/videoid"
)

// Strategy is one transcript acquisition method. Attempt never panics; every
// failure comes back as a classified error.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, req Request) (string, error)
}

// Request carries the per-run parameters shared by all strategies.
type Request struct {
	VideoID           string
	IncludeTimestamps bool
	Language          string
}

// Attempt records one strategy failure for the exhaustion summary.
type Attempt struct {
	Strategy string
	Code     services.Code
	Err      error
}

// Outcome is a successful pipeline run.
type Outcome struct {
	VideoID    string
	Transcript string
	Strategy   string
	FromCache  bool
	// Attempts holds the failures that preceded the winning strategy.
	Attempts []Attempt
}

// Cache is the optional transcript cache consulted before any strategy runs.
type Cache interface {
	Lookup(ctx context.Context, videoID, lang string, timestamps bool) (string, bool)
	Store(ctx context.Context, videoID, lang string, timestamps bool, transcript string) error
}

// Pipeline runs strategies in priority order.
type Pipeline struct {
	strategies []Strategy
	cache      Cache
	logger     *slog.Logger
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithCache attaches a transcript cache.
func WithCache(cache Cache) Option {
	return func(p *Pipeline) {
		p.cache = cache
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New constructs a pipeline over the given strategies, tried in order.
func New(strategies []Strategy, opts ...Option) *Pipeline {
	p := &Pipeline{
		strategies: strategies,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "pipeline")
	return p
}

// Run resolves the input to a video ID and tries each strategy until one
// yields usable text. The transcript is capped at the length limit before it
// is returned or cached.
func (p *Pipeline) Run(ctx context.Context, input string, includeTimestamps bool, lang string) (Outcome, error) {
	id, ok := videoid.Resolve(input)
	if !ok {
		return Outcome{}, services.Wrap(services.ErrInvalidInput, "pipeline", "resolve", fmt.Sprintf("not a video URL or ID: %.50s", input), nil)
	}

	ctx = services.WithRequestID(ctx, uuid.NewString())
	req := Request{VideoID: id, IncludeTimestamps: includeTimestamps, Language: lang}

	if p.cache != nil {
		if transcript, hit := p.cache.Lookup(ctx, id, lang, includeTimestamps); hit {
			logging.WithContext(ctx, p.logger).Debug("cache hit",
				logging.String(logging.FieldVideoID, id))
			return Outcome{VideoID: id, Transcript: transcript, Strategy: "cache", FromCache: true}, nil
		}
	}

	var attempts []Attempt
	for _, strategy := range p.strategies {
		attemptCtx := services.WithStrategy(ctx, strategy.Name())
		logger := logging.WithContext(attemptCtx, p.logger)
		logger.Debug("strategy attempt",
			logging.String(logging.FieldVideoID, id),
			logging.Bool("timestamps", req.IncludeTimestamps))

		transcript, err := strategy.Attempt(attemptCtx, req)
		if err == nil && strings.TrimSpace(transcript) != "" {
			logger.Info("transcript acquired",
				logging.String(logging.FieldVideoID, id),
				logging.Int("transcript_chars", len(transcript)))

			transcript = captions.Truncate(transcript)
			if p.cache != nil {
				if cacheErr := p.cache.Store(ctx, id, lang, includeTimestamps, transcript); cacheErr != nil {
					logger.Warn("transcript cache store failed", logging.Error(cacheErr))
				}
			}
			return Outcome{
				VideoID:    id,
				Transcript: transcript,
				Strategy:   strategy.Name(),
				Attempts:   attempts,
			}, nil
		}
		if err == nil {
			err = services.Wrap(services.ErrEmpty, strategy.Name(), "attempt", "strategy returned no text", nil)
		}

		code := services.Classify(err)
		attempts = append(attempts, Attempt{Strategy: strategy.Name(), Code: code, Err: err})
		logger.Warn("strategy failed",
			logging.String(logging.FieldEventType, "strategy_failed"),
			logging.String(logging.FieldVideoID, id),
			logging.Any("code", code),
			logging.String("detail", services.Detail(err)),
			logging.Error(err))
	}

	return Outcome{VideoID: id, Attempts: attempts}, exhaustionError(attempts)
}

func exhaustionError(attempts []Attempt) error {
	var b strings.Builder
	b.WriteString("All methods failed:")
	for _, attempt := range attempts {
		b.WriteString("\n")
		b.WriteString(attempt.Strategy)
		b.WriteString(": ")
		b.WriteString(string(attempt.Code))
	}
	return fmt.Errorf("%s", b.String())
}
