package config

import (
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Every failure wraps ErrMalformed.
func (c *Config) Validate() error {
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateClasses(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDataset() error {
	required := []struct {
		key   string
		value string
	}{
		{"root_dir", c.RootDir},
		{"source", c.Source},
		{"target", c.Target},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrMalformed, field.key)
		}
	}
	for key, value := range map[string]string{"source": c.Source, "target": c.Target} {
		if strings.ContainsAny(value, `/\`) || value == "." || value == ".." {
			return fmt.Errorf("%w: %s must be a single folder name, got %q", ErrMalformed, key, value)
		}
	}
	if c.Source == c.Target {
		return fmt.Errorf("%w: source and target must differ (both %q)", ErrMalformed, c.Source)
	}
	return nil
}

func (c *Config) validateClasses() error {
	seen := make(map[string]struct{}, len(c.Classes))
	for i, name := range c.Classes {
		if name == "" {
			return fmt.Errorf("%w: classes[%d] is empty", ErrMalformed, i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: classes lists %q more than once", ErrMalformed, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("%w: logging.level must be one of debug, info, warn, error (got %q)", ErrMalformed, c.Logging.Level)
	}
}
