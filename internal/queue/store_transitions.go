package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fileforge/internal/services"
)

// SetProgress updates progress for a processing job. Progress is
// non-decreasing while a job is processing; a lower value than the stored
// one is rejected, as is any update to a job outside processing.
func (s *Store) SetProgress(ctx context.Context, id int64, percent int, message string) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("progress percent %d out of range", percent)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET progress_percent = ?, progress_message = ?, updated_at = ?
         WHERE id = ? AND status = ? AND progress_percent <= ?`,
		percent, nullableString(message), now, id, StatusProcessing, percent)
	if err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return s.transitionRejection(ctx, id, "set progress")
	}
	return nil
}

// MarkCompleted transitions a processing job to completed with its
// artifacts. At least one artifact is required.
func (s *Store) MarkCompleted(ctx context.Context, id int64, artifactsJSON string) error {
	var artifacts []json.RawMessage
	if err := json.Unmarshal([]byte(artifactsJSON), &artifacts); err != nil {
		return fmt.Errorf("parse artifacts: %w", err)
	}
	if len(artifacts) == 0 {
		return fmt.Errorf("completed job %d requires at least one artifact", id)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, progress_percent = 100, progress_message = ?,
             artifacts_json = ?, completed_at = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusCompleted, "conversion complete", artifactsJSON, now, now, id, StatusProcessing)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return s.transitionRejection(ctx, id, "mark completed")
	}
	return nil
}

// MarkFailed transitions a processing job to failed with the captured error.
func (s *Store) MarkFailed(ctx context.Context, id int64, message string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, error_message = ?, progress_message = ?,
             completed_at = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusFailed, nullableString(message), nullableString(message), now, now, id, StatusProcessing)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return s.transitionRejection(ctx, id, "mark failed")
	}
	return nil
}

// transitionRejection explains why a guarded update matched no row.
func (s *Store) transitionRejection(ctx context.Context, id int64, operation string) error {
	job, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if job == nil {
		return services.Wrap(services.ErrNotFound, "queue", operation, fmt.Sprintf("job %d does not exist", id), nil)
	}
	if job.Status == StatusProcessing {
		return fmt.Errorf("%s rejected: job %d progress is non-decreasing", operation, id)
	}
	return fmt.Errorf("%s rejected: job %d is %s", operation, id, job.Status)
}
