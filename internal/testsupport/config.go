package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"udalist/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a unique temp directory per test with
// source "neurodomain" and target "vegfru". History is written under the same
// temp directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.RootDir = filepath.Join(base, "data")
	cfgVal.OutputDir = cfgVal.RootDir
	cfgVal.Source = "neurodomain"
	cfgVal.Target = "vegfru"
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := os.MkdirAll(builder.cfg.RootDir, 0o755); err != nil {
		t.Fatalf("mkdir root: %v", err)
	}
	return builder.cfg
}

// WithSplits enables the split-aware layout.
func WithSplits() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SplitAware = true
	}
}

// WithClasses sets an authoritative vocabulary.
func WithClasses(classes ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Classes = classes
	}
}

// WithoutHistory disables the history database.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithOutputDir writes manifests to a directory under the test base instead of root_dir.
func WithOutputDir(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.OutputDir = filepath.Join(b.baseDir, name)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.RootDir)
}

// WriteConfigFile serializes cfg as TOML to path.
func WriteConfigFile(t testing.TB, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
