package ipc

import "fileforge/internal/api"

// Job mirrors the HTTP API job DTO for IPC callers.
type Job = api.Job

// AuditEntry mirrors the HTTP API ledger DTO.
type AuditEntry = api.AuditEntry

// JobEvent mirrors the HTTP API notification DTO.
type JobEvent = api.JobEvent

// DependencyStatus describes availability of an external tool.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents daemon runtime information.
type StatusResponse struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	APIAddr      string             `json:"api_addr"`
	JobDBPath    string             `json:"job_db_path"`
	AuditDBPath  string             `json:"audit_db_path"`
	LockPath     string             `json:"lock_path"`
	Queue        api.Stats          `json:"queue"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// StopRequest stops job processing.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// JobsRequest filters job listing by status.
type JobsRequest struct {
	Statuses []string `json:"statuses"`
}

// JobsResponse contains job entries.
type JobsResponse struct {
	Jobs []Job `json:"jobs"`
}

// DescribeRequest fetches a single job by key.
type DescribeRequest struct {
	JobKey string `json:"job_key"`
}

// DescribeResponse contains a single job.
type DescribeResponse struct {
	Job Job `json:"job"`
}

// StatsRequest fetches aggregate queue counters.
type StatsRequest struct{}

// StatsResponse reports queue statistics.
type StatsResponse struct {
	Stats api.Stats `json:"stats"`
}

// AuditRequest fetches ledger entries, paged newest first, or a single job's
// trail when JobKey is set.
type AuditRequest struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	JobKey   string `json:"job_key"`
}

// AuditResponse contains ledger entries.
type AuditResponse struct {
	Entries []AuditEntry `json:"entries"`
	Total   int64        `json:"total"`
}

// WatchRequest long-polls the notification bus.
type WatchRequest struct {
	Since      uint64 `json:"since"`
	Limit      int    `json:"limit"`
	WaitMillis int    `json:"wait_millis"`
}

// WatchResponse returns bus events and the next cursor.
type WatchResponse struct {
	Events []JobEvent `json:"events"`
	Next   uint64     `json:"next"`
}
