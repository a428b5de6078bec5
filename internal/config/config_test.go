package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytscribe/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved == "" {
		t.Fatal("expected resolved path even when missing")
	}
	if cfg.YtDlp.Binary != "yt-dlp" || cfg.YtDlp.Timeout != 60 {
		t.Fatalf("unexpected ytdlp defaults: %+v", cfg.YtDlp)
	}
	if cfg.Fetch.Language != "en" {
		t.Fatalf("unexpected default language: %q", cfg.Fetch.Language)
	}
	if len(cfg.Fetch.BrowserProfiles) == 0 {
		t.Fatal("expected default browser profiles")
	}
	if !cfg.Cache.Enabled || cfg.Cache.Path == "" {
		t.Fatalf("unexpected cache defaults: %+v", cfg.Cache)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	path := writeConfig(t, `
[fetch]
language = " EN-us "
browser_profiles = ["Firefox", "", "chrome"]

[ytdlp]
binary = "  /opt/tools/yt-dlp  "
timeout = 30

[apis]
secondary_json_url = "https://captions.example.net/api/transcript"
secondary_xml_url = "https://captions.example.net/api/timedtext"

[paths]
log_dir = "~/ytscribe-logs"

[logging]
format = "JSON"
level = "DEBUG"
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Fetch.Language != "en-us" {
		t.Fatalf("language not normalized: %q", cfg.Fetch.Language)
	}
	if len(cfg.Fetch.BrowserProfiles) != 2 || cfg.Fetch.BrowserProfiles[0] != "firefox" {
		t.Fatalf("profiles not normalized: %v", cfg.Fetch.BrowserProfiles)
	}
	if cfg.YtDlp.Binary != "/opt/tools/yt-dlp" || cfg.YtDlp.Timeout != 30 {
		t.Fatalf("unexpected ytdlp settings: %+v", cfg.YtDlp)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
	if strings.HasPrefix(cfg.Paths.LogDir, "~") {
		t.Fatalf("log_dir not expanded: %q", cfg.Paths.LogDir)
	}
}

func TestLoadRejectsBadLogFormat(t *testing.T) {
	path := writeConfig(t, "[logging]\nformat = \"xml\"\n")
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for unknown log format")
	}
}

func TestLoadRejectsBadAPIURL(t *testing.T) {
	path := writeConfig(t, "[apis]\nprimary_url = \"ftp://nope\"\n")
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for non-http endpoint")
	}
}

func TestLoadRejectsXMLWithoutJSON(t *testing.T) {
	path := writeConfig(t, "[apis]\nsecondary_xml_url = \"https://captions.example.net/api/timedtext\"\n")
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for xml url without json url")
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
[paths]
log_dir = "`+filepath.Join(dir, "logs")+`"
cache_dir = "`+filepath.Join(dir, "cache")+`"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, sub := range []string{"logs", "cache"} {
		if _, err := os.Stat(filepath.Join(dir, sub)); err != nil {
			t.Fatalf("expected %s directory: %v", sub, err)
		}
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[ytdlp]") {
		t.Fatal("sample config missing ytdlp section")
	}

	// The sample must itself load cleanly.
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
