package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"ytscribe/internal/captions"
	"ytscribe/internal/language"
	"ytscribe/internal/services"
	"ytscribe/internal/videoid"
)

// DefaultBinary is the download tool looked up on PATH when none is
// configured.
const DefaultBinary = "yt-dlp"

// DefaultTimeoutSeconds bounds one subprocess invocation.
const DefaultTimeoutSeconds = 60

// Executor abstracts command execution for testability. Run returns the
// captured stderr; the tool runs quiet, so stdout carries nothing useful.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (stderr string, err error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// FetchOptions select subtitle language and transport for one invocation.
type FetchOptions struct {
	IncludeTimestamps bool
	Language          string
	// ProxyURL routes the download through a proxy when non-empty.
	ProxyURL string
	// CookiesFromBrowser names a browser profile whose session cookies
	// authenticate the request, e.g. "firefox" or "chrome".
	CookiesFromBrowser string
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs a yt-dlp client.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = DefaultTimeoutSeconds
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Fetch downloads caption files for a video and returns the parsed transcript
// text. Failures are tagged with the sentinel that classifies them: rate
// limiting, timeout, missing tool, missing captions, or empty captions.
func (c *Client) Fetch(ctx context.Context, videoID string, opts FetchOptions) (string, error) {
	tempDir, err := os.MkdirTemp("", "ytscribe-"+videoID+"-")
	if err != nil {
		return "", fmt.Errorf("create caption temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	args := c.buildArgs(videoID, tempDir, opts)

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stderr, err := c.exec.Run(runCtx, c.binary, args)
	if err != nil {
		switch {
		case errors.Is(err, exec.ErrNotFound):
			return "", services.Wrap(services.ErrToolUnavailable, "ytdlp", "fetch", c.binary+" not found on PATH", err)
		case runCtx.Err() != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded):
			return "", services.Wrap(services.ErrTimeout, "ytdlp", "fetch", fmt.Sprintf("tool exceeded %s", c.timeout), err)
		case isRateLimited(stderr):
			return "", services.Wrap(services.ErrRateLimited, "ytdlp", "fetch", "remote signaled throttling", err)
		}
		// Exit status alone is not conclusive; yt-dlp fails loudly when no
		// subtitles exist. Fall through and let the file check decide.
	}
	if isRateLimited(stderr) {
		return "", services.Wrap(services.ErrRateLimited, "ytdlp", "fetch", "remote signaled throttling", errors.New(firstLine(stderr)))
	}

	vttFiles, globErr := filepath.Glob(filepath.Join(tempDir, "*.vtt"))
	if globErr != nil {
		return "", fmt.Errorf("scan caption files: %w", globErr)
	}
	if len(vttFiles) == 0 {
		cause := err
		if cause == nil {
			cause = errors.New("no caption files produced")
		}
		return "", services.Wrap(services.ErrNotFound, "ytdlp", "fetch", "no caption track available", cause)
	}

	data, readErr := os.ReadFile(vttFiles[0])
	if readErr != nil {
		return "", fmt.Errorf("read caption file: %w", readErr)
	}

	transcript := captions.ParseVTT(string(data), opts.IncludeTimestamps)
	if strings.TrimSpace(transcript) == "" {
		return "", services.Wrap(services.ErrEmpty, "ytdlp", "fetch", "caption file parsed to empty text", nil)
	}
	return transcript, nil
}

func (c *Client) buildArgs(videoID, tempDir string, opts FetchOptions) []string {
	args := []string{
		"--write-auto-subs",
		"--write-subs",
		"--skip-download",
		"--sub-format", "vtt",
		"--quiet",
		"--no-warnings",
		"-o", filepath.Join(tempDir, "%(id)s.%(ext)s"),
		"--sub-langs", language.SubtitleSpec(opts.Language),
	}
	if opts.ProxyURL != "" {
		args = append(args, "--proxy", opts.ProxyURL)
	}
	if opts.CookiesFromBrowser != "" {
		args = append(args, "--cookies-from-browser", opts.CookiesFromBrowser)
	}
	return append(args, videoid.WatchURL(videoID))
}

func isRateLimited(stderr string) bool {
	return strings.Contains(stderr, "429") || strings.Contains(stderr, "Too Many Requests")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return s
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}
