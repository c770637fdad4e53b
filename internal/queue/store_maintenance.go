package queue

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Stats aggregates counters over the stored job rows.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{
		ByPair: map[string]int{},
		ByTier: map[string]int{},
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return Stats{}, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var statusStr string
		var count int
		if err := rows.Scan(&statusStr, &count); err != nil {
			return Stats{}, err
		}
		stats.Total += count
		switch Status(statusStr) {
		case StatusQueued:
			stats.Queued = count
		case StatusProcessing:
			stats.Processing = count
		case StatusCompleted:
			stats.Completed = count
		case StatusFailed:
			stats.Failed = count
		}
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	pairRows, err := s.db.QueryContext(ctx,
		`SELECT input_format, output_format, COUNT(*) FROM jobs GROUP BY input_format, output_format`)
	if err != nil {
		return Stats{}, fmt.Errorf("count by pair: %w", err)
	}
	defer pairRows.Close()
	for pairRows.Next() {
		var input, output string
		var count int
		if err := pairRows.Scan(&input, &output, &count); err != nil {
			return Stats{}, err
		}
		stats.ByPair[PairKey(input, output)] = count
	}
	if err := pairRows.Err(); err != nil {
		return Stats{}, err
	}

	tierRows, err := s.db.QueryContext(ctx, `SELECT quality_tier, COUNT(*) FROM jobs GROUP BY quality_tier`)
	if err != nil {
		return Stats{}, fmt.Errorf("count by tier: %w", err)
	}
	defer tierRows.Close()
	for tierRows.Next() {
		var tier string
		var count int
		if err := tierRows.Scan(&tier, &count); err != nil {
			return Stats{}, err
		}
		stats.ByTier[tier] = count
	}
	if err := tierRows.Err(); err != nil {
		return Stats{}, err
	}

	var avg sql.NullFloat64
	err = s.db.QueryRowContext(ctx,
		`SELECT AVG((julianday(completed_at) - julianday(started_at)) * 86400.0)
         FROM jobs WHERE status = ? AND started_at IS NOT NULL AND completed_at IS NOT NULL`,
		StatusCompleted).Scan(&avg)
	if err != nil {
		return Stats{}, fmt.Errorf("average duration: %w", err)
	}
	if avg.Valid {
		stats.AvgProcessingSeconds = avg.Float64
	}
	return stats, nil
}

// ResetStuckProcessing fails any job left in processing, typically after an
// unclean daemon restart. Crashed workers cannot resume their jobs.
func (s *Store) ResetStuckProcessing(ctx context.Context, reason string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, error_message = ?, progress_message = ?,
             completed_at = ?, updated_at = ?
         WHERE status = ?`,
		StatusFailed, reason, reason, now, now, StatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("reset stuck processing: %w", err)
	}
	return res.RowsAffected()
}

// EvictTerminal removes terminal jobs whose completion is older than the
// retention window and returns the evicted rows so callers can clean up
// artifact directories.
func (s *Store) EvictTerminal(ctx context.Context, olderThan time.Duration) ([]*Job, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339Nano)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs
         WHERE status IN (?, ?) AND completed_at IS NOT NULL AND completed_at < ?`,
		StatusCompleted, StatusFailed, cutoff)
	if err != nil {
		return nil, fmt.Errorf("select evictable: %w", err)
	}
	defer rows.Close()

	var evicted []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		evicted = append(evicted, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, job := range evicted {
		if _, err := s.execWithRetry(ctx, `DELETE FROM jobs WHERE id = ? AND status IN (?, ?)`,
			job.ID, StatusCompleted, StatusFailed); err != nil {
			return nil, fmt.Errorf("evict job %d: %w", job.ID, err)
		}
	}
	return evicted, nil
}
