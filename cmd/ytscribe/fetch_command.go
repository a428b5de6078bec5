package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"ytscribe/internal/captions"
	"ytscribe/internal/config"
	"ytscribe/internal/logging"
	"ytscribe/internal/pipeline"
	"ytscribe/internal/proxy"
	"ytscribe/internal/services/innertube"
	"ytscribe/internal/services/transcriptapi"
	"ytscribe/internal/services/ytdlp"
	"ytscribe/internal/transcriptcache"
	"ytscribe/internal/videoid"
)

const lockRetryDelay = 250 * time.Millisecond

type fetchResult struct {
	VideoID    string `json:"video_id"`
	Strategy   string `json:"strategy"`
	FromCache  bool   `json:"from_cache"`
	Transcript string `json:"transcript"`
}

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var (
		urlFlag    string
		timestamps bool
		lang       string
		noCache    bool
		plain      bool
		analyze    bool
	)

	cmd := &cobra.Command{
		Use:   "fetch [url-or-id]",
		Short: "Fetch the transcript for a YouTube video",
		Long: `Fetch the transcript for a YouTube video, trying each acquisition
method in turn until one yields text: rotating proxies, browser cookie
sessions, hosted transcript services, and a direct watch-page scrape.

The result is JSON on stdout ({"transcript": ..., "video_id": ...} or
{"error": ...}) so callers can shell out to ytscribe. The JSON
transcript is wrapped in the analysis prompt the pattern tools consume;
pass --plain for the bare transcript text.

Examples:
  ytscribe fetch https://www.youtube.com/watch?v=dQw4w9WgXcQ
  ytscribe fetch dQw4w9WgXcQ --timestamps --plain
  ytscribe fetch --url dQw4w9WgXcQ --lang pt-br`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.TrimSpace(urlFlag)
			if len(args) > 0 {
				input = args[0]
			}
			if input == "" {
				return fmt.Errorf("a video URL or ID is required (positional or --url)")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if !cmd.Flags().Changed("timestamps") {
				timestamps = cfg.Fetch.Timestamps
			}
			if !cmd.Flags().Changed("lang") {
				lang = cfg.Fetch.Language
			}

			logger, closeLogger, err := ctx.newLogger(cfg)
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}
			defer closeLogger()

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := os.MkdirAll(filepath.Dir(cfg.Paths.LockPath), 0o755); err != nil {
				return fmt.Errorf("create lock directory: %w", err)
			}
			lock := flock.New(cfg.Paths.LockPath)
			locked, err := lock.TryLockContext(runCtx, lockRetryDelay)
			if err != nil {
				return fmt.Errorf("acquire fetch lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another ytscribe fetch holds the lock at %s", cfg.Paths.LockPath)
			}
			defer func() { _ = lock.Unlock() }()

			opts := []pipeline.Option{pipeline.WithLogger(logger)}
			if cfg.Cache.Enabled && !noCache {
				store, err := transcriptcache.Open(cfg.CachePath())
				if err != nil {
					logger.Warn("transcript cache unavailable",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "check cache.path permissions or run 'ytscribe cache clear'"),
						logging.String(logging.FieldImpact, "every fetch hits the network"))
				} else {
					defer store.Close()
					opts = append(opts, pipeline.WithCache(store))
				}
			}

			strategies, err := buildStrategies(cfg, logger)
			if err != nil {
				return err
			}

			outcome, err := pipeline.New(strategies, opts...).Run(runCtx, input, timestamps, lang)
			if err != nil {
				if !plain {
					_ = writeJSON(cmd, map[string]string{"error": err.Error()})
				}
				return err
			}

			// JSON output always carries the analysis wrapper; that is the
			// contract shell callers parse. --plain stays bare unless asked.
			transcript := outcome.Transcript
			if !plain || analyze {
				transcript = captions.FormatForAnalysis(transcript, videoid.WatchURL(outcome.VideoID))
			}

			if plain {
				fmt.Fprintln(cmd.OutOrStdout(), transcript)
				return nil
			}
			return writeJSON(cmd, fetchResult{
				VideoID:    outcome.VideoID,
				Strategy:   outcome.Strategy,
				FromCache:  outcome.FromCache,
				Transcript: transcript,
			})
		},
	}

	cmd.Flags().StringVarP(&urlFlag, "url", "u", "", "Video URL or ID (alternative to the positional argument)")
	cmd.Flags().BoolVarP(&timestamps, "timestamps", "t", false, "Prefix each line with its [MM:SS] timestamp")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Preferred caption language (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the transcript cache for this run")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print the bare transcript instead of JSON")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "Wrap --plain output in the analysis prompt as well")
	return cmd
}

// buildStrategies assembles the acquisition order from configuration. The
// rotating pool leads when credentials exist, hosted services run only when
// their endpoints are configured, and the pinned proxy goes last.
func buildStrategies(cfg *config.Config, logger *slog.Logger) ([]pipeline.Strategy, error) {
	fetcher, err := ytdlp.New(cfg.YtDlp.Binary, cfg.YtDlp.Timeout)
	if err != nil {
		return nil, fmt.Errorf("configure download tool: %w", err)
	}

	apiClient := &http.Client{Timeout: time.Duration(cfg.APIs.Timeout) * time.Second}

	var strategies []pipeline.Strategy

	pool := proxy.LoadPool(cfg.Proxy.PoolPaths, logger)
	if !pool.Empty() {
		strategies = append(strategies, &pipeline.ProxyRotation{
			Pool:    pool,
			Fetcher: fetcher,
			Logger:  logger,
		})
	}

	strategies = append(strategies, &pipeline.BrowserCookies{
		Fetcher:  fetcher,
		Profiles: cfg.Fetch.BrowserProfiles,
	})

	if cfg.APIs.PrimaryURL != "" {
		strategies = append(strategies, &pipeline.APIStrategy{
			StrategyName: "transcript-api-primary",
			Fetcher:      transcriptapi.NewPrimary(cfg.APIs.PrimaryURL, transcriptapi.WithHTTPClient(apiClient)),
		})
	}
	if cfg.APIs.SecondaryJSONURL != "" {
		strategies = append(strategies, &pipeline.APIStrategy{
			StrategyName: "transcript-api-secondary",
			Fetcher:      transcriptapi.NewSecondary(cfg.APIs.SecondaryJSONURL, cfg.APIs.SecondaryXMLURL, transcriptapi.WithHTTPClient(apiClient)),
		})
	}

	strategies = append(strategies, &pipeline.APIStrategy{
		StrategyName: "innertube",
		Fetcher:      innertube.New(innertube.WithHTTPClient(apiClient)),
	})

	saved, err := proxy.LoadSaved(cfg.Proxy.SavedConfigPath)
	if err != nil {
		logger.Warn("pinned proxy configuration unreadable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "saved-proxy strategy skipped"))
	} else if saved.ActiveProxy != nil {
		strategies = append(strategies, &pipeline.SavedProxy{
			Config:  saved,
			Fetcher: fetcher,
		})
	}

	return strategies, nil
}
