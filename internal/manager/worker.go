package manager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"fileforge/internal/audit"
	"fileforge/internal/convert"
	"fileforge/internal/logging"
	"fileforge/internal/notifications"
	"fileforge/internal/quality"
	"fileforge/internal/queue"
	"fileforge/internal/services"
)

// Coarse phase checkpoints reported while a job is processing.
const (
	progressClaimed       = 10
	progressPreConversion = 25
	progressConverting    = 50
	progressFinalizing    = 90
)

func (m *Manager) workerLoop(ctx context.Context, workerID int) {
	defer m.wg.Done()
	logger := m.logger.With(logging.Int("worker", workerID))

	for {
		if ctx.Err() != nil {
			return
		}
		job, err := m.store.ClaimNextQueued(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("claim next job", logging.Error(err))
			if !m.sleep(ctx, m.pollInterval) {
				return
			}
			continue
		}
		if job == nil {
			if !m.sleep(ctx, m.pollInterval) {
				return
			}
			continue
		}
		m.execute(ctx, job, logger)
	}
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = time.Second
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// execute drives one claimed job to a terminal state. It never leaves a job
// stuck in processing: every exit path records completed or failed.
func (m *Manager) execute(ctx context.Context, job *queue.Job, logger *slog.Logger) {
	jobCtx := services.WithJobID(ctx, job.ID)
	jobCtx = services.WithJobKey(jobCtx, job.JobKey)

	profile, err := quality.Resolve(job.QualityTier)
	if err != nil {
		m.failJob(jobCtx, job, "quality tier vanished: "+err.Error())
		return
	}

	m.recorder.Record(jobCtx, job.JobKey, audit.EventStarted, fmt.Sprintf(`{"tier":%q}`, profile.Tier))
	m.publishTransition(job, queue.StatusProcessing, 0, "")

	m.checkpoint(jobCtx, job, profile, progressClaimed, "claim confirmed")

	category, ok := m.registry.CategoryFor(job.InputFormat)
	if !ok {
		m.failJob(jobCtx, job, "input format "+job.InputFormat+" left the catalog")
		return
	}
	converter, err := m.converters.Get(category.Converter)
	if err != nil {
		m.failJob(jobCtx, job, err.Error())
		return
	}
	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		m.failJob(jobCtx, job, "create output directory: "+err.Error())
		return
	}

	m.checkpoint(jobCtx, job, profile, progressPreConversion, "pre-conversion checks passed")

	budget := m.jobTimeout
	if budget <= 0 {
		budget = 10 * time.Minute
	}
	convertCtx, cancel := context.WithTimeout(jobCtx, budget)
	defer cancel()

	m.checkpoint(jobCtx, job, profile, progressConverting, "converting with "+converter.Name())

	type outcome struct {
		artifacts []convert.Artifact
		err       error
	}
	results := make(chan outcome, 1)
	go func() {
		artifacts, convErr := converter.Convert(convertCtx, convert.Request{
			InputPath:    job.SourcePath,
			OutputDir:    job.OutputDir,
			InputFormat:  job.InputFormat,
			OutputFormat: job.OutputFormat,
			Profile:      profile,
		})
		results <- outcome{artifacts: artifacts, err: convErr}
	}()

	var result outcome
	select {
	case result = <-results:
	case <-convertCtx.Done():
		// The harness enforces the budget; a result arriving later is
		// discarded.
		if errors.Is(convertCtx.Err(), context.DeadlineExceeded) {
			m.failJob(jobCtx, job, services.Wrap(services.ErrTimeout, "manager", "execute",
				fmt.Sprintf("job exceeded %s budget", budget), nil).Error())
		} else {
			m.failJob(context.Background(), job, queue.ShutdownFailureReason)
		}
		return
	}

	if result.err != nil {
		if errors.Is(result.err, context.DeadlineExceeded) || errors.Is(result.err, services.ErrTimeout) {
			m.failJob(jobCtx, job, services.Wrap(services.ErrTimeout, "manager", "execute",
				fmt.Sprintf("job exceeded %s budget", budget), result.err).Error())
			return
		}
		if ctx.Err() != nil {
			m.failJob(context.Background(), job, queue.ShutdownFailureReason)
			return
		}
		m.failJob(jobCtx, job, result.err.Error())
		return
	}

	m.checkpoint(jobCtx, job, profile, progressFinalizing, "finalizing artifacts")

	artifactsJSON, err := json.Marshal(result.artifacts)
	if err != nil {
		m.failJob(jobCtx, job, "encode artifacts: "+err.Error())
		return
	}
	if err := m.store.MarkCompleted(jobCtx, job.ID, string(artifactsJSON)); err != nil {
		m.failJob(jobCtx, job, "record completion: "+err.Error())
		return
	}

	m.recorder.Record(jobCtx, job.JobKey, audit.EventCompleted,
		fmt.Sprintf(`{"artifacts":%d}`, len(result.artifacts)))
	m.publishTransition(job, queue.StatusCompleted, 100, "")
	m.cleanupStaging(job)

	logger.Info("job completed",
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String(logging.FieldJobKey, job.JobKey),
		logging.Int("artifacts", len(result.artifacts)))
}

func (m *Manager) checkpoint(ctx context.Context, job *queue.Job, profile quality.Profile, percent int, message string) {
	if err := m.store.SetProgress(ctx, job.ID, percent, message); err != nil {
		m.logger.Error("record progress", logging.Int64(logging.FieldJobID, job.ID), logging.Error(err))
		return
	}
	m.recorder.RecordProgress(ctx, job.JobKey, profile.FullAuditDetail,
		fmt.Sprintf(`{"percent":%d,"message":%q}`, percent, message))
	m.publishTransition(job, queue.StatusProcessing, percent, message)
}

// failJob moves a job to failed, store first, then audit and broadcast.
func (m *Manager) failJob(ctx context.Context, job *queue.Job, message string) {
	if err := m.store.MarkFailed(ctx, job.ID, message); err != nil {
		m.logger.Error("mark failed",
			logging.Int64(logging.FieldJobID, job.ID),
			logging.Error(err))
	}
	m.recorder.Record(ctx, job.JobKey, audit.EventError, fmt.Sprintf(`{"error":%q}`, message))
	m.publishTransition(job, queue.StatusFailed, 0, message)
	m.cleanupStaging(job)
}

func (m *Manager) publishTransition(job *queue.Job, status queue.Status, progress int, message string) {
	event := notifications.JobEvent{
		JobKey:       job.JobKey,
		Status:       status,
		Progress:     progress,
		InputFormat:  job.InputFormat,
		OutputFormat: job.OutputFormat,
	}
	if status == queue.StatusFailed {
		event.Error = message
	} else {
		event.Message = message
	}
	m.bus.Publish(event)
}

func (m *Manager) cleanupStaging(job *queue.Job) {
	if job.SourcePath == "" {
		return
	}
	_ = os.Remove(job.SourcePath)
}
