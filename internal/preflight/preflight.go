package preflight

import (
	"udalist/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional,omitempty"`
	Detail   string `json:"detail"`
}

// Blocking reports whether the result should stop a build.
func (r Result) Blocking() bool {
	return !r.Passed && !r.Optional
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckReadableDir("Root directory", cfg.RootDir)}
	for _, domain := range cfg.Domains() {
		for _, split := range cfg.SplitNames() {
			name := "Domain " + domain
			if split != "" {
				name += "/" + split
			}
			check := CheckReadableDir(name, cfg.DomainDir(domain, split))
			check.Optional = true
			results = append(results, check)
		}
	}
	results = append(results, CheckOutputDir("Output directory", cfg.OutputDir))

	if cfg.History.Enabled {
		// History recording never blocks manifest generation.
		check := CheckHistory(cfg.History.Path)
		check.Optional = true
		results = append(results, check)
	}
	return results
}

// Blocking filters results down to failed required checks.
func Blocking(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Blocking() {
			out = append(out, r)
		}
	}
	return out
}
