// Package config loads, normalizes, and validates udalist configuration data.
//
// A configuration names the dataset root, the source and target domain
// folders beneath it, and optional knobs for split-aware layouts, an
// authoritative class vocabulary, accepted image extensions, logging, and the
// generation history database. Files are TOML by default; paths ending in
// .yaml or .yml are decoded as YAML.
//
// The dataset keys have no defaults. A configuration missing root_dir,
// source, or target is rejected with ErrMalformed so callers never walk a
// directory tree nobody asked for.
package config
