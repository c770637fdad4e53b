package manager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"fileforge/internal/audit"
	"fileforge/internal/fileutil"
	"fileforge/internal/formats"
	"fileforge/internal/logging"
	"fileforge/internal/notifications"
	"fileforge/internal/quality"
	"fileforge/internal/queue"
	"fileforge/internal/services"
)

// SubmitRequest carries one conversion submission.
type SubmitRequest struct {
	Data         []byte
	DeclaredName string
	ContentType  string
	OutputFormat string
	QualityTier  string
}

// JobHandle is returned to the caller once a submission is accepted.
type JobHandle struct {
	JobID               int64     `json:"job_id"`
	JobKey              string    `json:"job_key"`
	DetectedInputFormat string    `json:"detected_input_format"`
	OutputFormat        string    `json:"output_format"`
	QualityTier         string    `json:"quality_tier"`
	EstimatedCompletion time.Time `json:"estimated_completion"`
	StatusReference     string    `json:"status_reference"`
}

// Submit runs the pre-flight pipeline synchronously: format detection,
// conversion validation, tier resolution, staging, and the security scan.
// Any pre-flight failure aborts with no job created and nothing left
// behind. On success the job is queued for asynchronous execution.
func (m *Manager) Submit(ctx context.Context, req SubmitRequest) (*JobHandle, error) {
	if len(req.Data) == 0 {
		return nil, services.Wrap(services.ErrUnknownFormat, "manager", "submit", "empty upload", nil)
	}
	if maxBytes := int64(m.cfg.Security.MaxUploadMiB) << 20; int64(len(req.Data)) > maxBytes {
		return nil, services.Wrap(services.ErrSecurityThreat, "manager", "submit",
			fmt.Sprintf("upload exceeds %d MiB limit", m.cfg.Security.MaxUploadMiB), nil)
	}

	inputFormat, err := m.detector.Detect(req.Data, req.DeclaredName, req.ContentType)
	if err != nil {
		return nil, err
	}

	outputFormat := formats.Normalize(req.OutputFormat)
	if err := m.registry.ValidateConversion(inputFormat, outputFormat); err != nil {
		return nil, err
	}

	tier := strings.TrimSpace(req.QualityTier)
	if tier == "" {
		tier = quality.DefaultTier
	}
	profile, err := quality.Resolve(tier)
	if err != nil {
		return nil, err
	}

	jobKey := uuid.NewString()
	stagedPath, err := m.stageUpload(jobKey, req.DeclaredName, req.Data)
	if err != nil {
		return nil, err
	}

	result, err := m.scanner.Scan(ctx, stagedPath, inputFormat)
	if err != nil {
		_ = os.Remove(stagedPath)
		return nil, err
	}
	if !result.Clean {
		_ = os.Remove(stagedPath)
		return nil, services.Wrap(services.ErrSecurityThreat, "manager", "submit",
			"scanner flagged upload: "+strings.Join(result.Threats, ", "), nil)
	}

	estimated := m.EstimateCompletion(inputFormat, outputFormat, profile)
	job, err := m.store.NewJob(ctx, queue.NewJobParams{
		JobKey:              jobKey,
		SourceName:          fileutil.SanitizeFileName(req.DeclaredName),
		SourcePath:          stagedPath,
		InputFormat:         inputFormat,
		OutputFormat:        outputFormat,
		QualityTier:         profile.Tier,
		OutputDir:           filepath.Join(m.cfg.Paths.OutputDir, jobKey),
		EstimatedCompletion: estimated,
	})
	if err != nil {
		_ = os.Remove(stagedPath)
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	m.recorder.Record(ctx, job.JobKey, audit.EventSubmitted, fmt.Sprintf(
		`{"source":%q,"input_format":%q,"output_format":%q,"tier":%q}`,
		job.SourceName, inputFormat, outputFormat, profile.Tier))
	m.recorder.Record(ctx, job.JobKey, audit.EventScan, fmt.Sprintf(
		`{"clean":true,"confidence":%.2f}`, result.Confidence))

	m.bus.Publish(notifications.JobEvent{
		JobKey:       job.JobKey,
		Status:       queue.StatusQueued,
		InputFormat:  inputFormat,
		OutputFormat: outputFormat,
	})

	m.logger.Info("job submitted",
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String(logging.FieldJobKey, job.JobKey),
		logging.String(logging.FieldFormat, inputFormat+">"+outputFormat),
		logging.String(logging.FieldTier, profile.Tier))

	return &JobHandle{
		JobID:               job.ID,
		JobKey:              job.JobKey,
		DetectedInputFormat: inputFormat,
		OutputFormat:        outputFormat,
		QualityTier:         profile.Tier,
		EstimatedCompletion: estimated,
		StatusReference:     "/api/jobs/" + job.JobKey,
	}, nil
}

func (m *Manager) stageUpload(jobKey, declaredName string, data []byte) (string, error) {
	if err := os.MkdirAll(m.cfg.Paths.StagingDir, 0o755); err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}
	stagedPath := filepath.Join(m.cfg.Paths.StagingDir, jobKey+"-"+fileutil.SanitizeFileName(declaredName))
	if err := os.WriteFile(stagedPath, data, 0o644); err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	return stagedPath, nil
}
