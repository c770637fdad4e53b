package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewJobParams carries everything needed to enqueue a job. JobKey is
// assigned when left empty; callers that namespace staging or output
// directories by key supply their own.
type NewJobParams struct {
	JobKey              string
	SourceName          string
	SourcePath          string
	InputFormat         string
	OutputFormat        string
	QualityTier         string
	OutputDir           string
	EstimatedCompletion time.Time
}

// NewJob inserts a job in the queued state and returns the stored row.
func (s *Store) NewJob(ctx context.Context, params NewJobParams) (*Job, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	jobKey := params.JobKey
	if jobKey == "" {
		jobKey = uuid.NewString()
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO jobs (
            job_key, source_name, source_path, input_format, output_format,
            quality_tier, status, progress_percent, progress_message,
            output_dir, created_at, updated_at, estimated_completion
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		jobKey,
		nullableString(params.SourceName),
		nullableString(params.SourcePath),
		params.InputFormat,
		params.OutputFormat,
		params.QualityTier,
		StatusQueued,
		0,
		nil,
		nullableString(params.OutputDir),
		timestamp,
		timestamp,
		params.EstimatedCompletion.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a job by rowid.
func (s *Store) GetByID(ctx context.Context, id int64) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// GetByKey fetches a job by its public key.
func (s *Store) GetByKey(ctx context.Context, jobKey string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE job_key = ?`, jobKey)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job by key: %w", err)
	}
	return job, nil
}

// List returns jobs filtered by status set (or all jobs when no status is
// provided), oldest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + jobColumns + ` FROM jobs`
	orderClause := ` ORDER BY created_at, id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// ClaimNextQueued atomically transitions the oldest queued job to processing
// and returns it, or nil when the queue is empty. The guarded update makes
// concurrent workers claim distinct jobs.
func (s *Store) ClaimNextQueued(ctx context.Context) (*Job, error) {
	for {
		row := s.db.QueryRowContext(ctx,
			`SELECT id FROM jobs WHERE status = ? ORDER BY created_at, id LIMIT 1`, StatusQueued)
		var id int64
		err := row.Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("select next queued: %w", err)
		}

		now := time.Now().UTC().Format(time.RFC3339Nano)
		res, err := s.execWithRetry(ctx,
			`UPDATE jobs SET status = ?, started_at = ?, updated_at = ?
             WHERE id = ? AND status = ?`,
			StatusProcessing, now, now, id, StatusQueued)
		if err != nil {
			return nil, fmt.Errorf("claim job: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("rows affected: %w", err)
		}
		if affected == 1 {
			return s.GetByID(ctx, id)
		}
		// Another worker claimed this row first; try the next one.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

// Remove deletes a job by rowid.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
