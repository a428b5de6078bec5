package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultLogDir         = "~/.local/share/ytscribe/logs"
	defaultLockPath       = "~/.local/share/ytscribe/ytscribe.lock"
	defaultSavedProxyPath = "~/.config/ytscribe/proxy_config.json"
	defaultHealthCheckURL = "https://www.youtube.com/robots.txt"
	defaultLanguage       = "en"
	defaultYtDlpBinary    = "yt-dlp"
	defaultYtDlpTimeout   = 60
	defaultAPITimeout     = 25
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultCacheEnabled   = true
	defaultCacheFileName  = "transcripts.db"
)

var defaultBrowserProfiles = []string{"firefox", "chrome", "edge"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	cacheDir := defaultCacheDir()
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			CacheDir: cacheDir,
			LockPath: defaultLockPath,
		},
		Fetch: Fetch{
			Language:        defaultLanguage,
			BrowserProfiles: append([]string(nil), defaultBrowserProfiles...),
		},
		YtDlp: YtDlp{
			Binary:  defaultYtDlpBinary,
			Timeout: defaultYtDlpTimeout,
		},
		Proxy: Proxy{
			SavedConfigPath: defaultSavedProxyPath,
			HealthCheckURL:  defaultHealthCheckURL,
		},
		APIs: APIs{
			Timeout: defaultAPITimeout,
		},
		Cache: Cache{
			Enabled: defaultCacheEnabled,
			Path:    filepath.Join(cacheDir, defaultCacheFileName),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "ytscribe")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/ytscribe"
	}
	return filepath.Join(home, ".cache", "ytscribe")
}
