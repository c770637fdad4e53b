package audit

import (
	"context"
	"log/slog"

	"fileforge/internal/logging"
)

// Recorder wraps the ledger with the deployment's enable switch and the
// per-tier detail policy. A disabled recorder drops writes silently and
// refuses reads.
type Recorder struct {
	log     *Log
	enabled bool
	logger  *slog.Logger
}

func NewRecorder(log *Log, enabled bool, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Recorder{log: log, enabled: enabled, logger: logging.NewComponentLogger(logger, "audit")}
}

// Enabled reports whether audit reads are available.
func (r *Recorder) Enabled() bool {
	return r != nil && r.enabled && r.log != nil
}

// Record appends one event. Append failures are logged, not propagated; the
// conversion pipeline does not stall on ledger trouble.
func (r *Recorder) Record(ctx context.Context, jobKey string, eventType EventType, payload string) {
	if !r.Enabled() {
		return
	}
	if err := r.log.Append(ctx, jobKey, eventType, payload); err != nil {
		r.logger.Warn("audit append failed",
			logging.String(logging.FieldJobKey, jobKey),
			logging.String(logging.FieldEventType, string(eventType)),
			logging.Error(err))
	}
}

// RecordProgress appends a progress checkpoint only when the tier mandates
// full audit detail.
func (r *Recorder) RecordProgress(ctx context.Context, jobKey string, fullDetail bool, payload string) {
	if !fullDetail {
		return
	}
	r.Record(ctx, jobKey, EventProgress, payload)
}

// Query reads one page, newest first.
func (r *Recorder) Query(ctx context.Context, page, pageSize int) ([]Entry, error) {
	if !r.Enabled() {
		return nil, ErrDisabled
	}
	return r.log.Query(ctx, page, pageSize)
}

// ForJob reads a single job's trail in append order.
func (r *Recorder) ForJob(ctx context.Context, jobKey string) ([]Entry, error) {
	if !r.Enabled() {
		return nil, ErrDisabled
	}
	return r.log.ForJob(ctx, jobKey)
}

// Count returns the ledger size.
func (r *Recorder) Count(ctx context.Context) (int64, error) {
	if !r.Enabled() {
		return 0, ErrDisabled
	}
	return r.log.Count(ctx)
}
