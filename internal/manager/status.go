package manager

import (
	"context"

	"fileforge/internal/queue"
	"fileforge/internal/services"
)

// Status returns the current record for one job.
func (m *Manager) Status(ctx context.Context, jobKey string) (*queue.Job, error) {
	job, err := m.store.GetByKey(ctx, jobKey)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, services.Wrap(services.ErrNotFound, "manager", "status",
			"no job with key "+jobKey, nil)
	}
	return job, nil
}

// Jobs lists jobs, optionally filtered by status.
func (m *Manager) Jobs(ctx context.Context, statuses ...queue.Status) ([]*queue.Job, error) {
	return m.store.List(ctx, statuses...)
}

// Statistics aggregates queue counters for reporting.
func (m *Manager) Statistics(ctx context.Context) (queue.Stats, error) {
	return m.store.Stats(ctx)
}
