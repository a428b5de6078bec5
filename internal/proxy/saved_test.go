package proxy_test

import (
	"path/filepath"
	"testing"

	"ytscribe/internal/proxy"
)

func TestLoadSavedMissingFile(t *testing.T) {
	cfg, err := proxy.LoadSaved(filepath.Join(t.TempDir(), "proxy_config.json"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.ActiveProxy != nil {
		t.Fatal("expected nil active proxy for fresh config")
	}
}

func TestSaveAndLoadSavedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "proxy_config.json")
	in := proxy.SavedConfig{
		ActiveProxy: &proxy.Pinned{Host: "203.0.113.9", Port: 3128, ProxyType: "socks5"},
		BackupProxies: []proxy.Pinned{
			{Host: "203.0.113.10", Port: 8080, ProxyType: "http"},
		},
	}

	if err := proxy.SaveSaved(path, in); err != nil {
		t.Fatalf("SaveSaved: %v", err)
	}
	out, err := proxy.LoadSaved(path)
	if err != nil {
		t.Fatalf("LoadSaved: %v", err)
	}
	if out.ActiveProxy == nil || *out.ActiveProxy != *in.ActiveProxy {
		t.Fatalf("active proxy mismatch: %+v", out.ActiveProxy)
	}
	if len(out.BackupProxies) != 1 || out.BackupProxies[0] != in.BackupProxies[0] {
		t.Fatalf("backup proxies mismatch: %+v", out.BackupProxies)
	}
}

func TestLoadSavedMalformedErrors(t *testing.T) {
	path := writeFile(t, t.TempDir(), "proxy_config.json", "]]")
	if _, err := proxy.LoadSaved(path); err == nil {
		t.Fatal("expected error for malformed saved config")
	}
}

func TestPinnedURLDefaultsToHTTP(t *testing.T) {
	p := proxy.Pinned{Host: "203.0.113.9", Port: 3128}
	if got := p.URL(); got != "http://203.0.113.9:3128" {
		t.Fatalf("unexpected url: %q", got)
	}
	p.ProxyType = "socks5"
	if got := p.URL(); got != "socks5://203.0.113.9:3128" {
		t.Fatalf("unexpected url: %q", got)
	}
}
