package queue

import (
	"database/sql"
	"errors"
	"time"
)

const jobColumns = "id, job_key, source_name, source_path, input_format, output_format, quality_tier, status, progress_percent, progress_message, output_dir, artifacts_json, error_message, created_at, updated_at, started_at, completed_at, estimated_completion"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id              int64
		jobKey          string
		sourceName      sql.NullString
		sourcePath      sql.NullString
		inputFormat     string
		outputFormat    string
		qualityTier     string
		statusStr       string
		progressPercent sql.NullInt64
		progressMessage sql.NullString
		outputDir       sql.NullString
		artifactsJSON   sql.NullString
		errorMessage    sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
		startedRaw      sql.NullString
		completedRaw    sql.NullString
		estimatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&jobKey,
		&sourceName,
		&sourcePath,
		&inputFormat,
		&outputFormat,
		&qualityTier,
		&statusStr,
		&progressPercent,
		&progressMessage,
		&outputDir,
		&artifactsJSON,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&startedRaw,
		&completedRaw,
		&estimatedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:              id,
		JobKey:          jobKey,
		SourceName:      sourceName.String,
		SourcePath:      sourcePath.String,
		InputFormat:     inputFormat,
		OutputFormat:    outputFormat,
		QualityTier:     qualityTier,
		Status:          Status(statusStr),
		ProgressPercent: int(progressPercent.Int64),
		ProgressMessage: progressMessage.String,
		OutputDir:       outputDir.String,
		ArtifactsJSON:   artifactsJSON.String,
		ErrorMessage:    errorMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	if startedRaw.Valid {
		if started, err := parseTimeString(startedRaw.String); err == nil {
			job.StartedAt = &started
		}
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			job.CompletedAt = &completed
		}
	}
	if estimated, err := parseTimeString(estimatedRaw.String); err == nil {
		job.EstimatedCompletion = estimated
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
