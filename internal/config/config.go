package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed sample_config.toml
var sampleConfig string

// ErrMalformed reports a configuration file that cannot be parsed or that
// lacks a required key.
var ErrMalformed = errors.New("malformed configuration")

// ErrConfigNotFound reports an explicitly requested configuration file that
// does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Split names used by split-aware layouts (root/domain/split/class/image).
const (
	SplitTrain = "train"
	SplitVal   = "val"
	SplitTest  = "test"
)

// Splits is the fixed split set walked when split_aware is enabled.
var Splits = []string{SplitTrain, SplitVal, SplitTest}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" yaml:"format"`
	Level  string `toml:"level" yaml:"level"`
	Dir    string `toml:"dir" yaml:"dir"`
}

// History contains configuration for the generation run database.
type History struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// Config encapsulates all configuration values for udalist.
//
// Sections:
//   - dataset keys (top level): root directory, domain folders, layout
//   - Logging: log format, level, and optional file directory
//   - History: SQLite record of generation runs
type Config struct {
	RootDir    string   `toml:"root_dir" yaml:"root_dir"`
	Source     string   `toml:"source" yaml:"source"`
	Target     string   `toml:"target" yaml:"target"`
	OutputDir  string   `toml:"output_dir" yaml:"output_dir"`
	SplitAware bool     `toml:"split_aware" yaml:"split_aware"`
	Classes    []string `toml:"classes" yaml:"classes"`
	SortFiles  bool     `toml:"sort_files" yaml:"sort_files"`
	Extensions []string `toml:"extensions" yaml:"extensions"`

	Logging Logging `toml:"logging" yaml:"logging"`
	History History `toml:"history" yaml:"history"`
}

// Domains returns the source and target folder names in processing order.
func (c *Config) Domains() []string {
	return []string{c.Source, c.Target}
}

// SplitNames returns the splits to walk. A flat layout yields a single empty
// split so callers can iterate uniformly.
func (c *Config) SplitNames() []string {
	if !c.SplitAware {
		return []string{""}
	}
	out := make([]string, len(Splits))
	copy(out, Splits)
	return out
}

// DomainDir returns the directory holding class folders for a domain and
// optional split.
func (c *Config) DomainDir(domain, split string) string {
	if split == "" {
		return filepath.Join(c.RootDir, domain)
	}
	return filepath.Join(c.RootDir, domain, split)
}

// LockPath returns the lock file guarding the output directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.OutputDir, ".udalist.lock")
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. An empty path falls
// back to the default location and then ./udalist.toml; a missing file is an
// error either way because the dataset keys have no defaults.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", err
	}
	if !exists {
		return nil, resolvedPath, fmt.Errorf("%w: %s (create one with 'udalist config init')", ErrConfigNotFound, resolvedPath)
	}

	data, err := os.ReadFile(resolvedPath)
	if err != nil {
		return nil, "", fmt.Errorf("open config: %w", err)
	}
	if err := decode(resolvedPath, data, &cfg); err != nil {
		return nil, "", err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return &cfg, resolvedPath, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("%w: parse yaml %s: %v", ErrMalformed, path, err)
		}
	default:
		decoder := toml.NewDecoder(bytes.NewReader(data))
		if err := decoder.Decode(cfg); err != nil {
			return fmt.Errorf("%w: parse toml %s: %v", ErrMalformed, path, err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("%w: %s is a directory", ErrMalformed, expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("udalist.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output directory. The dataset root is never
// created: when output_dir is root_dir or lies under it, a missing root is an
// error. The history database directory is created by history.Open so an
// unusable history path cannot block manifest generation.
func (c *Config) EnsureDirectories() error {
	if c.RootDir != "" && isWithin(c.OutputDir, c.RootDir) {
		if _, err := os.Stat(c.RootDir); err != nil {
			return fmt.Errorf("root directory %q: %w", c.RootDir, err)
		}
	}
	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory %q: %w", c.OutputDir, err)
	}
	return nil
}

// isWithin reports whether path equals dir or is nested below it.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
