package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Pinned is a user-selected proxy saved by the bypass workflow, independent of
// the rotating pool.
type Pinned struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	ProxyType string `json:"proxy_type"`
}

// URL builds the unauthenticated proxy URL for a pinned endpoint.
func (p Pinned) URL() string {
	scheme := strings.TrimSpace(p.ProxyType)
	if scheme == "" {
		scheme = "http"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
	}
	return u.String()
}

// SavedConfig holds the pinned proxy plus backups kept from the last
// successful bypass run. ActiveProxy is nil when no proxy is pinned.
type SavedConfig struct {
	ActiveProxy   *Pinned  `json:"active_proxy"`
	BackupProxies []Pinned `json:"backup_proxies"`
}

// LoadSaved reads the pinned proxy configuration. A missing file is a normal
// state and returns an empty config.
func LoadSaved(path string) (SavedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return SavedConfig{}, nil
		}
		return SavedConfig{}, fmt.Errorf("read saved proxy config: %w", err)
	}

	var cfg SavedConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return SavedConfig{}, fmt.Errorf("parse saved proxy config: %w", err)
	}
	return cfg, nil
}

// SaveSaved writes the pinned proxy configuration atomically.
func SaveSaved(path string, cfg SavedConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal saved proxy config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
