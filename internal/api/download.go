package api

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"fileforge/internal/queue"
	"fileforge/internal/services"
)

// JobReader abstracts queue persistence interactions needed for API queries.
type JobReader interface {
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Job, error)
	GetByKey(ctx context.Context, jobKey string) (*queue.Job, error)
	Stats(ctx context.Context) (queue.Stats, error)
}

// JobService exposes read-only job operations returning API DTOs.
type JobService struct {
	store JobReader
}

// NewJobService constructs a JobService around the provided reader.
func NewJobService(store JobReader) *JobService {
	if store == nil {
		return nil
	}
	return &JobService{store: store}
}

// List returns jobs filtered by status.
func (s *JobService) List(ctx context.Context, statuses ...queue.Status) ([]Job, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	jobs, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromJobs(jobs), nil
}

// Describe fetches a single job by key.
func (s *JobService) Describe(ctx context.Context, jobKey string) (*Job, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	job, err := s.store.GetByKey(ctx, jobKey)
	if err != nil || job == nil {
		return nil, err
	}
	dto := FromJob(job)
	return &dto, nil
}

// Stats returns the aggregated queue counters.
func (s *JobService) Stats(ctx context.Context) (Stats, error) {
	if s == nil || s.store == nil {
		return Stats{}, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}
	return FromStats(stats), nil
}

// ResolveDownload maps a job key and artifact name to a file inside that
// job's output directory. Names carrying separators or parent references are
// rejected before touching the filesystem, and the resolved path is checked
// to still sit under the job's directory.
func (s *JobService) ResolveDownload(ctx context.Context, outputRoot, jobKey, artifactName string) (string, error) {
	if s == nil || s.store == nil {
		return "", services.Wrap(services.ErrNotFound, "api", "download", "job store unavailable", nil)
	}
	if !safePathSegment(jobKey) || !safePathSegment(artifactName) {
		return "", services.Wrap(services.ErrAccessDenied, "api", "download",
			"artifact reference escapes the job directory", nil)
	}

	job, err := s.store.GetByKey(ctx, jobKey)
	if err != nil {
		return "", err
	}
	if job == nil {
		return "", services.Wrap(services.ErrNotFound, "api", "download", "no job with key "+jobKey, nil)
	}
	if job.Status != queue.StatusCompleted {
		return "", services.Wrap(services.ErrNotFound, "api", "download",
			"job "+jobKey+" has no downloadable artifacts while "+string(job.Status), nil)
	}

	jobDir := filepath.Join(outputRoot, jobKey)
	resolved := filepath.Join(jobDir, artifactName)
	if rel, relErr := filepath.Rel(jobDir, resolved); relErr != nil || rel != artifactName {
		return "", services.Wrap(services.ErrAccessDenied, "api", "download",
			"artifact reference escapes the job directory", nil)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return "", services.Wrap(services.ErrNotFound, "api", "download",
				"artifact "+artifactName+" not found for job "+jobKey, nil)
		}
		return "", err
	}
	if info.IsDir() || info.Size() == 0 {
		return "", services.Wrap(services.ErrNotFound, "api", "download",
			"artifact "+artifactName+" not found for job "+jobKey, nil)
	}
	return resolved, nil
}

// safePathSegment accepts only plain file names: no separators, no parent
// references, nothing hidden behind cleaning.
func safePathSegment(segment string) bool {
	if segment == "" || segment == "." || segment == ".." {
		return false
	}
	if strings.ContainsAny(segment, "/\\") {
		return false
	}
	return filepath.Clean(segment) == segment
}
