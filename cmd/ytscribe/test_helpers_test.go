package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	cachePath  string
	poolPath   string
	savedPath  string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		cachePath:  filepath.Join(base, "cache", "transcripts.db"),
		poolPath:   filepath.Join(base, "proxies.json"),
		savedPath:  filepath.Join(base, "proxy_config.json"),
	}

	content := fmt.Sprintf(`[paths]
log_dir = %q
cache_dir = %q
lock_path = %q

[proxy]
pool_paths = [%q]
saved_config_path = %q

[cache]
path = %q
`,
		filepath.Join(base, "logs"),
		filepath.Join(base, "cache"),
		filepath.Join(base, "ytscribe.lock"),
		env.poolPath,
		env.savedPath,
		env.cachePath,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}
