package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized key for generation run identifiers.
	FieldRunID = "run_id"
	// FieldDomain is the standardized key for domain folder names.
	FieldDomain = "domain"
	// FieldSplit is the standardized key for dataset split names.
	FieldSplit = "split"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step after a warning or error.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

type contextKey string

const (
	runIDKey  contextKey = "run_id"
	domainKey contextKey = "domain"
	splitKey  contextKey = "split"
)

// WithRunID annotates ctx with the generation run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// WithDomain annotates ctx with the domain being processed.
func WithDomain(ctx context.Context, domain string) context.Context {
	if domain == "" {
		return ctx
	}
	return context.WithValue(ctx, domainKey, domain)
}

// WithSplit annotates ctx with the split being processed.
func WithSplit(ctx context.Context, split string) context.Context {
	if split == "" {
		return ctx
	}
	return context.WithValue(ctx, splitKey, split)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	for _, entry := range []struct {
		key   contextKey
		field string
	}{
		{runIDKey, FieldRunID},
		{domainKey, FieldDomain},
		{splitKey, FieldSplit},
	} {
		if v, ok := ctx.Value(entry.key).(string); ok && v != "" {
			fields = append(fields, slog.String(entry.field, v))
		}
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
