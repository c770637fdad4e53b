package services

import "context"

type contextKey string

const (
	jobIDKey     contextKey = "job_id"
	jobKeyKey    contextKey = "job_key"
	converterKey contextKey = "converter"
	requestIDKey contextKey = "request_id"
)

// WithJobID annotates context with the job row identifier.
func WithJobID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, jobIDKey, id)
}

// JobIDFromContext extracts the job row identifier if present.
func JobIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(jobIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithJobKey annotates context with the public job key.
func WithJobKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, jobKeyKey, key)
}

// JobKeyFromContext returns the public job key if present.
func JobKeyFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(jobKeyKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithConverter annotates context with the converter name handling the job.
func WithConverter(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, converterKey, name)
}

// ConverterFromContext returns the converter name if present.
func ConverterFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(converterKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
