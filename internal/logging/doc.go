// Package logging assembles structured slog loggers and formatting helpers used
// across udalist.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so the generation pipeline can tag log
// lines with run IDs, domains, and splits. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
package logging
