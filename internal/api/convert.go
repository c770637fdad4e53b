package api

import (
	"encoding/json"

	"fileforge/internal/audit"
	"fileforge/internal/convert"
	"fileforge/internal/formats"
	"fileforge/internal/manager"
	"fileforge/internal/notifications"
	"fileforge/internal/quality"
	"fileforge/internal/queue"
)

// FromJob converts a queue record to its API representation.
func FromJob(job *queue.Job) Job {
	if job == nil {
		return Job{}
	}

	dto := Job{
		ID:           job.ID,
		JobKey:       job.JobKey,
		SourceName:   job.SourceName,
		InputFormat:  job.InputFormat,
		OutputFormat: job.OutputFormat,
		QualityTier:  job.QualityTier,
		Status:       string(job.Status),
		Progress: JobProgress{
			Percent: job.ProgressPercent,
			Message: job.ProgressMessage,
		},
		ErrorMessage: job.ErrorMessage,
	}

	if raw := job.ArtifactsJSON; raw != "" {
		var artifacts []convert.Artifact
		if err := json.Unmarshal([]byte(raw), &artifacts); err == nil {
			for _, artifact := range artifacts {
				dto.Artifacts = append(dto.Artifacts, Artifact{
					Name:         artifact.Name,
					Size:         artifact.Size,
					Format:       artifact.Format,
					DownloadPath: "/api/download/" + job.JobKey + "/" + artifact.Name,
				})
			}
		}
	}

	if !job.CreatedAt.IsZero() {
		dto.CreatedAt = job.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !job.UpdatedAt.IsZero() {
		dto.UpdatedAt = job.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	if job.StartedAt != nil {
		dto.StartedAt = job.StartedAt.UTC().Format(dateTimeFormat)
	}
	if job.CompletedAt != nil {
		dto.CompletedAt = job.CompletedAt.UTC().Format(dateTimeFormat)
	}
	if !job.EstimatedCompletion.IsZero() {
		dto.EstimatedCompletion = job.EstimatedCompletion.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromJobs converts a slice of queue records into API DTOs.
func FromJobs(jobs []*queue.Job) []Job {
	if len(jobs) == 0 {
		return nil
	}
	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, FromJob(job))
	}
	return out
}

// FromHandle converts a submission handle to its API payload.
func FromHandle(handle *manager.JobHandle) Submission {
	if handle == nil {
		return Submission{}
	}
	return Submission{
		JobID:               handle.JobID,
		JobKey:              handle.JobKey,
		DetectedInputFormat: handle.DetectedInputFormat,
		OutputFormat:        handle.OutputFormat,
		QualityTier:         handle.QualityTier,
		EstimatedCompletion: handle.EstimatedCompletion.UTC().Format(dateTimeFormat),
		StatusReference:     handle.StatusReference,
	}
}

// FromCategories converts the format catalog into API DTOs.
func FromCategories(categories []formats.Category) []FormatCategory {
	out := make([]FormatCategory, 0, len(categories))
	for _, category := range categories {
		out = append(out, FormatCategory{
			ID:          category.ID,
			DisplayName: category.DisplayName,
			Description: category.Description,
			Inputs:      category.Inputs,
			Outputs:     category.Outputs,
		})
	}
	return out
}

// FromProfiles converts quality tiers into API DTOs.
func FromProfiles(profiles []quality.Profile) []QualityTier {
	out := make([]QualityTier, 0, len(profiles))
	for _, profile := range profiles {
		out = append(out, QualityTier{
			Tier:            profile.Tier,
			Priority:        string(profile.Priority),
			QualityPercent:  profile.QualityPercent,
			CostMultiplier:  profile.CostMultiplier,
			ProcessingDepth: profile.ProcessingDepth,
			FullAuditDetail: profile.FullAuditDetail,
		})
	}
	return out
}

// FromStats converts queue statistics into the API payload.
func FromStats(stats queue.Stats) Stats {
	return Stats{
		Total:                stats.Total,
		Queued:               stats.Queued,
		Processing:           stats.Processing,
		Completed:            stats.Completed,
		Failed:               stats.Failed,
		AvgProcessingSeconds: stats.AvgProcessingSeconds,
		ByPair:               stats.ByPair,
		ByTier:               stats.ByTier,
	}
}

// FromAuditEntries converts ledger rows into API DTOs.
func FromAuditEntries(entries []audit.Entry) []AuditEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]AuditEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, AuditEntry{
			ID:        entry.ID,
			Timestamp: entry.Timestamp.UTC().Format(dateTimeFormat),
			JobKey:    entry.JobKey,
			EventType: string(entry.EventType),
			Payload:   entry.Payload,
		})
	}
	return out
}

// FromJobEvents converts bus notifications into API DTOs.
func FromJobEvents(events []notifications.JobEvent) []JobEvent {
	if len(events) == 0 {
		return nil
	}
	out := make([]JobEvent, 0, len(events))
	for _, event := range events {
		out = append(out, JobEvent{
			Sequence:     event.Sequence,
			Timestamp:    event.Timestamp.UTC().Format(dateTimeFormat),
			JobKey:       event.JobKey,
			Status:       string(event.Status),
			Progress:     event.Progress,
			Message:      event.Message,
			InputFormat:  event.InputFormat,
			OutputFormat: event.OutputFormat,
			Error:        event.Error,
		})
	}
	return out
}
