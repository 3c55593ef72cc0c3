package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeDataset(); err != nil {
		return err
	}
	c.normalizeExtensions()
	c.normalizeClasses()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeDataset() error {
	var err error
	c.Source = strings.TrimSpace(c.Source)
	c.Target = strings.TrimSpace(c.Target)
	c.RootDir = strings.TrimSpace(c.RootDir)
	if c.RootDir != "" {
		if c.RootDir, err = expandPath(c.RootDir); err != nil {
			return fmt.Errorf("root_dir: %w", err)
		}
	}
	c.OutputDir = strings.TrimSpace(c.OutputDir)
	if c.OutputDir == "" {
		c.OutputDir = c.RootDir
	}
	if c.OutputDir != "" {
		if c.OutputDir, err = expandPath(c.OutputDir); err != nil {
			return fmt.Errorf("output_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeExtensions() {
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), DefaultExtensions...)
		return
	}
	exts := make([]string, 0, len(c.Extensions))
	seen := make(map[string]struct{}, len(c.Extensions))
	for _, ext := range c.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = append([]string(nil), DefaultExtensions...)
	}
	c.Extensions = exts
}

func (c *Config) normalizeClasses() {
	if len(c.Classes) == 0 {
		c.Classes = nil
		return
	}
	classes := make([]string, 0, len(c.Classes))
	for _, name := range c.Classes {
		classes = append(classes, strings.TrimSpace(name))
	}
	c.Classes = classes
}

func (c *Config) normalizeHistory() error {
	var err error
	c.History.Path = strings.TrimSpace(c.History.Path)
	if c.History.Path == "" {
		c.History.Path = defaultHistoryPath
	}
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		var err error
		if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
	}
	return nil
}
