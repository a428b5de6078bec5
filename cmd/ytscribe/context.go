package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"ytscribe/internal/config"
	"ytscribe/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the run logger from configuration. Log output goes to
// stderr so transcript text on stdout stays pipeable; when the log directory
// is writable the same records are appended to ytscribe.log there.
func (c *commandContext) newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	output := io.Writer(os.Stderr)
	cleanup := func() {}

	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		file, err := os.OpenFile(filepath.Join(dir, "ytscribe.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			output = io.MultiWriter(os.Stderr, file)
			cleanup = func() { _ = file.Close() }
		}
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: output,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return logger, cleanup, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
