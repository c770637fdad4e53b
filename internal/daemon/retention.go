package daemon

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"fileforge/internal/logging"
)

// sweepLoop evicts terminal jobs past the retention TTL along with their
// artifact directories. Active jobs are never touched.
func (d *Daemon) sweepLoop(ctx context.Context) {
	defer d.wg.Done()

	interval := time.Duration(d.cfg.Workers.RetentionSweep) * time.Second
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.sweepOnce(ctx)
		}
	}
}

func (d *Daemon) sweepOnce(ctx context.Context) {
	ttl := time.Duration(d.cfg.Workers.RetentionHours) * time.Hour
	if ttl <= 0 {
		return
	}

	evicted, err := d.store.EvictTerminal(ctx, ttl)
	if err != nil {
		d.logger.Warn("retention sweep failed", logging.Error(err))
		return
	}
	if len(evicted) == 0 {
		return
	}

	for _, job := range evicted {
		dir := job.OutputDir
		if dir == "" {
			dir = filepath.Join(d.cfg.Paths.OutputDir, job.JobKey)
		}
		if err := os.RemoveAll(dir); err != nil {
			d.logger.Warn("remove evicted artifacts",
				logging.String(logging.FieldJobKey, job.JobKey),
				logging.Error(err))
		}
	}
	d.logger.Info("retention sweep evicted jobs", logging.Int("count", len(evicted)))
}
