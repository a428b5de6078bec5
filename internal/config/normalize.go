package config

import (
	"fmt"
	"strings"

	"ytscribe/internal/proxy"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFetch()
	c.normalizeYtDlp()
	if err := c.normalizeProxy(); err != nil {
		return err
	}
	c.normalizeAPIs()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LockPath) == "" {
		c.Paths.LockPath = defaultLockPath
	}
	if c.Paths.LockPath, err = expandPath(c.Paths.LockPath); err != nil {
		return fmt.Errorf("paths.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeFetch() {
	c.Fetch.Language = strings.ToLower(strings.TrimSpace(c.Fetch.Language))
	if c.Fetch.Language == "" {
		c.Fetch.Language = defaultLanguage
	}

	profiles := make([]string, 0, len(c.Fetch.BrowserProfiles))
	for _, profile := range c.Fetch.BrowserProfiles {
		if trimmed := strings.ToLower(strings.TrimSpace(profile)); trimmed != "" {
			profiles = append(profiles, trimmed)
		}
	}
	if len(profiles) == 0 {
		profiles = append([]string(nil), defaultBrowserProfiles...)
	}
	c.Fetch.BrowserProfiles = profiles
}

func (c *Config) normalizeYtDlp() {
	c.YtDlp.Binary = strings.TrimSpace(c.YtDlp.Binary)
	if c.YtDlp.Binary == "" {
		c.YtDlp.Binary = defaultYtDlpBinary
	}
	if c.YtDlp.Timeout <= 0 {
		c.YtDlp.Timeout = defaultYtDlpTimeout
	}
}

func (c *Config) normalizeProxy() error {
	if len(c.Proxy.PoolPaths) == 0 {
		c.Proxy.PoolPaths = proxy.DefaultPoolPaths()
	} else {
		expanded := make([]string, 0, len(c.Proxy.PoolPaths))
		for _, path := range c.Proxy.PoolPaths {
			if strings.TrimSpace(path) == "" {
				continue
			}
			resolved, err := expandPath(path)
			if err != nil {
				return fmt.Errorf("proxy.pool_paths: %w", err)
			}
			expanded = append(expanded, resolved)
		}
		c.Proxy.PoolPaths = expanded
	}

	if strings.TrimSpace(c.Proxy.SavedConfigPath) == "" {
		c.Proxy.SavedConfigPath = defaultSavedProxyPath
	}
	resolved, err := expandPath(c.Proxy.SavedConfigPath)
	if err != nil {
		return fmt.Errorf("proxy.saved_config_path: %w", err)
	}
	c.Proxy.SavedConfigPath = resolved

	c.Proxy.HealthCheckURL = strings.TrimSpace(c.Proxy.HealthCheckURL)
	if c.Proxy.HealthCheckURL == "" {
		c.Proxy.HealthCheckURL = defaultHealthCheckURL
	}
	return nil
}

func (c *Config) normalizeAPIs() {
	c.APIs.PrimaryURL = strings.TrimSpace(c.APIs.PrimaryURL)
	c.APIs.SecondaryJSONURL = strings.TrimSpace(c.APIs.SecondaryJSONURL)
	c.APIs.SecondaryXMLURL = strings.TrimSpace(c.APIs.SecondaryXMLURL)
	if c.APIs.Timeout <= 0 {
		c.APIs.Timeout = defaultAPITimeout
	}
}

func (c *Config) normalizeCache() error {
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = Default().Cache.Path
	}
	resolved, err := expandPath(c.Cache.Path)
	if err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	c.Cache.Path = resolved
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
