package logging

import (
	"context"
	"log/slog"

	"fileforge/internal/services"
)

// Shared structured field names. Keeping these centralized keeps log output
// consistent across components and greppable after the fact.
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldJobID      = "job_id"
	FieldJobKey     = "job_key"
	FieldConverter  = "converter"
	FieldRequestID  = "request_id"
	FieldEventType  = "event_type"
	FieldSourcePath = "source_path"
	FieldOutputPath = "output_path"
	FieldFormat     = "format"
	FieldTier       = "tier"
	FieldStatus     = "status"
	FieldProgress   = "progress"
	FieldDuration   = "duration"
	FieldErrorHint  = "error_hint"
)

// ContextFields extracts known request identifiers from ctx as attributes.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs := make([]slog.Attr, 0, 4)
	if id, ok := services.JobIDFromContext(ctx); ok {
		attrs = append(attrs, Int64(FieldJobID, id))
	}
	if key, ok := services.JobKeyFromContext(ctx); ok {
		attrs = append(attrs, String(FieldJobKey, key))
	}
	if name, ok := services.ConverterFromContext(ctx); ok {
		attrs = append(attrs, String(FieldConverter, name))
	}
	if id, ok := services.RequestIDFromContext(ctx); ok {
		attrs = append(attrs, String(FieldRequestID, id))
	}
	return attrs
}

// WithContext returns a logger pre-tagged with any identifiers found in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	attrs := ContextFields(ctx)
	if len(attrs) == 0 {
		return logger
	}
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return logger.With(args...)
}
