package api_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fileforge/internal/api"
	"fileforge/internal/queue"
	"fileforge/internal/services"
)

type stubStore struct {
	jobs map[string]*queue.Job
}

func (s *stubStore) List(ctx context.Context, statuses ...queue.Status) ([]*queue.Job, error) {
	out := make([]*queue.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job)
	}
	return out, nil
}

func (s *stubStore) GetByKey(ctx context.Context, jobKey string) (*queue.Job, error) {
	return s.jobs[jobKey], nil
}

func (s *stubStore) Stats(ctx context.Context) (queue.Stats, error) {
	return queue.Stats{Total: len(s.jobs)}, nil
}

func newDownloadFixture(t *testing.T) (*api.JobService, string) {
	t.Helper()

	outputRoot := t.TempDir()
	jobDir := filepath.Join(outputRoot, "job-done")
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		t.Fatalf("create job dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(jobDir, "converted.pdf"), []byte("%PDF-1.7 payload"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	store := &stubStore{jobs: map[string]*queue.Job{
		"job-done": {
			ID:           1,
			JobKey:       "job-done",
			InputFormat:  "docx",
			OutputFormat: "pdf",
			Status:       queue.StatusCompleted,
		},
		"job-running": {
			ID:           2,
			JobKey:       "job-running",
			InputFormat:  "json",
			OutputFormat: "csv",
			Status:       queue.StatusProcessing,
		},
	}}
	return api.NewJobService(store), outputRoot
}

func TestResolveDownloadReturnsArtifactPath(t *testing.T) {
	svc, outputRoot := newDownloadFixture(t)

	path, err := svc.ResolveDownload(context.Background(), outputRoot, "job-done", "converted.pdf")
	if err != nil {
		t.Fatalf("resolve download: %v", err)
	}
	want := filepath.Join(outputRoot, "job-done", "converted.pdf")
	if path != want {
		t.Fatalf("resolved path = %q, want %q", path, want)
	}
}

func TestResolveDownloadRejectsTraversal(t *testing.T) {
	svc, outputRoot := newDownloadFixture(t)

	cases := []struct {
		name     string
		jobKey   string
		artifact string
	}{
		{"parent traversal", "job-done", "../../etc/passwd"},
		{"absolute path", "job-done", "/etc/passwd"},
		{"backslash separator", "job-done", "..\\secrets"},
		{"dot dot name", "job-done", ".."},
		{"traversal in job key", "../job-done", "converted.pdf"},
		{"empty artifact", "job-done", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ResolveDownload(context.Background(), outputRoot, tc.jobKey, tc.artifact)
			if !errors.Is(err, services.ErrAccessDenied) {
				t.Fatalf("error = %v, want access denied", err)
			}
		})
	}
}

func TestResolveDownloadUnknownJob(t *testing.T) {
	svc, outputRoot := newDownloadFixture(t)

	_, err := svc.ResolveDownload(context.Background(), outputRoot, "no-such-job", "converted.pdf")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestResolveDownloadRequiresCompletedJob(t *testing.T) {
	svc, outputRoot := newDownloadFixture(t)

	_, err := svc.ResolveDownload(context.Background(), outputRoot, "job-running", "converted.csv")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestResolveDownloadMissingArtifact(t *testing.T) {
	svc, outputRoot := newDownloadFixture(t)

	_, err := svc.ResolveDownload(context.Background(), outputRoot, "job-done", "other.pdf")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestDescribeReturnsDTO(t *testing.T) {
	svc, _ := newDownloadFixture(t)

	dto, err := svc.Describe(context.Background(), "job-done")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if dto == nil || dto.JobKey != "job-done" || dto.Status != string(queue.StatusCompleted) {
		t.Fatalf("describe returned %+v", dto)
	}

	missing, err := svc.Describe(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("describe missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("describe missing returned %+v", missing)
	}
}

func TestFromJobRendersArtifactsAndTimes(t *testing.T) {
	started := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	completed := started.Add(42 * time.Second)
	job := &queue.Job{
		ID:              7,
		JobKey:          "job-7",
		SourceName:      "report.docx",
		InputFormat:     "docx",
		OutputFormat:    "pdf",
		QualityTier:     "standard",
		Status:          queue.StatusCompleted,
		ProgressPercent: 100,
		ArtifactsJSON:   `[{"name":"converted.pdf","path":"/out/job-7/converted.pdf","size":2048,"format":"pdf"}]`,
		CreatedAt:       started.Add(-time.Minute),
		UpdatedAt:       completed,
		StartedAt:       &started,
		CompletedAt:     &completed,
	}

	dto := api.FromJob(job)
	if len(dto.Artifacts) != 1 {
		t.Fatalf("artifacts = %+v, want one entry", dto.Artifacts)
	}
	artifact := dto.Artifacts[0]
	if artifact.Name != "converted.pdf" || artifact.Size != 2048 {
		t.Fatalf("artifact = %+v", artifact)
	}
	if artifact.DownloadPath != "/api/download/job-7/converted.pdf" {
		t.Fatalf("download path = %q", artifact.DownloadPath)
	}
	if dto.StartedAt == "" || dto.CompletedAt == "" {
		t.Fatalf("timestamps missing: %+v", dto)
	}
	if dto.Progress.Percent != 100 {
		t.Fatalf("progress = %+v", dto.Progress)
	}
}
