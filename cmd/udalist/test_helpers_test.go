package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"udalist/internal/config"
	"udalist/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

// setupCLITestEnv writes a two-domain tree: neurodomain apple(2) banana(1),
// vegfru-test apple(3) banana(2).
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	cfg.Target = "vegfru-test"
	t.Setenv("HOME", filepath.Join(testsupport.BaseDir(cfg), "home"))

	testsupport.WriteImageTree(t, cfg.DomainDir("neurodomain", ""), testsupport.ImageTree{
		"apple":  {"a1.jpg", "a2.jpg"},
		"banana": {"b1.png"},
	}, "banana", "apple")
	testsupport.WriteImageTree(t, cfg.DomainDir("vegfru-test", ""), testsupport.ImageTree{
		"apple":  {"1.jpg", "2.JPG", "3.bmp"},
		"banana": {"1.jpeg", "2.png", "readme.md"},
	})

	configPath := filepath.Join(testsupport.BaseDir(cfg), "udalist.toml")
	testsupport.WriteConfigFile(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--cfg_file", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}

func writeText(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
