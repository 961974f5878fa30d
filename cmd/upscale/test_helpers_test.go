package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	stagingDir string
	outputDir  string
	logDir     string
	identity   string
}

func setupCLITestEnv(t *testing.T, baseURL string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		stagingDir: filepath.Join(base, "staging"),
		outputDir:  filepath.Join(base, "output"),
		logDir:     filepath.Join(base, "logs"),
		identity:   filepath.Join(base, "client_ids.json"),
	}

	if baseURL == "" {
		baseURL = "https://127.0.0.1:1/unused"
	}

	contents := fmt.Sprintf(`[paths]
staging_dir = %q
output_dir = %q
log_dir = %q
identity_path = %q

[service]
base_url = %q
poll_interval = 1
max_attempts = 3

[output]
width_px = 380
height_px = 380
dpi = 300
jpeg_quality = 90

[logging]
format = "console"
level = "error"
`, env.stagingDir, env.outputDir, env.logDir, env.identity, baseURL)

	if err := os.WriteFile(env.configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, error) {
	t.Helper()

	full := append([]string{"--config", env.configPath}, args...)
	cmd := newRootCommand()
	cmd.SetArgs(full)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}
