package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Job describes a conversion job in a transport-friendly format.
type Job struct {
	ID                  int64       `json:"id"`
	JobKey              string      `json:"jobKey"`
	SourceName          string      `json:"sourceName"`
	InputFormat         string      `json:"inputFormat"`
	OutputFormat        string      `json:"outputFormat"`
	QualityTier         string      `json:"qualityTier"`
	Status              string      `json:"status"`
	Progress            JobProgress `json:"progress"`
	ErrorMessage        string      `json:"errorMessage,omitempty"`
	Artifacts           []Artifact  `json:"artifacts,omitempty"`
	CreatedAt           string      `json:"createdAt,omitempty"`
	UpdatedAt           string      `json:"updatedAt,omitempty"`
	StartedAt           string      `json:"startedAt,omitempty"`
	CompletedAt         string      `json:"completedAt,omitempty"`
	EstimatedCompletion string      `json:"estimatedCompletion,omitempty"`
}

// JobProgress captures checkpoint progress for a job.
type JobProgress struct {
	Percent int    `json:"percent"`
	Message string `json:"message,omitempty"`
}

// Artifact describes one produced output file.
type Artifact struct {
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	Format       string `json:"format"`
	DownloadPath string `json:"downloadPath"`
}

// Submission is returned when a conversion request is accepted.
type Submission struct {
	JobID               int64  `json:"jobId"`
	JobKey              string `json:"jobKey"`
	DetectedInputFormat string `json:"detectedInputFormat"`
	OutputFormat        string `json:"outputFormat"`
	QualityTier         string `json:"qualityTier"`
	EstimatedCompletion string `json:"estimatedCompletion"`
	StatusReference     string `json:"statusReference"`
}

// FormatCategory describes one catalog category and its accepted formats.
type FormatCategory struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	Inputs      []string `json:"inputs"`
	Outputs     []string `json:"outputs"`
}

// QualityTier describes one resolvable tier.
type QualityTier struct {
	Tier            string  `json:"tier"`
	Priority        string  `json:"priority"`
	QualityPercent  int     `json:"qualityPercent"`
	CostMultiplier  float64 `json:"costMultiplier"`
	ProcessingDepth int     `json:"processingDepth"`
	FullAuditDetail bool    `json:"fullAuditDetail"`
}

// Stats is a normalized queue statistics payload.
type Stats struct {
	Total                int            `json:"total"`
	Queued               int            `json:"queued"`
	Processing           int            `json:"processing"`
	Completed            int            `json:"completed"`
	Failed               int            `json:"failed"`
	AvgProcessingSeconds float64        `json:"avgProcessingSeconds"`
	ByPair               map[string]int `json:"byPair,omitempty"`
	ByTier               map[string]int `json:"byTier,omitempty"`
}

// AuditEntry is the transport form of one ledger row.
type AuditEntry struct {
	ID        int64  `json:"id"`
	Timestamp string `json:"timestamp"`
	JobKey    string `json:"jobKey"`
	EventType string `json:"eventType"`
	Payload   string `json:"payload,omitempty"`
}

// JobEvent is the transport form of one bus notification.
type JobEvent struct {
	Sequence     uint64 `json:"sequence"`
	Timestamp    string `json:"timestamp"`
	JobKey       string `json:"jobKey"`
	Status       string `json:"status"`
	Progress     int    `json:"progress"`
	Message      string `json:"message,omitempty"`
	InputFormat  string `json:"inputFormat,omitempty"`
	OutputFormat string `json:"outputFormat,omitempty"`
	Error        string `json:"error,omitempty"`
}

// JobListResponse wraps a collection of jobs.
type JobListResponse struct {
	Jobs []Job `json:"jobs"`
}

// JobResponse wraps a single job.
type JobResponse struct {
	Job Job `json:"job"`
}

// FormatsResponse lists the conversion catalog.
type FormatsResponse struct {
	Categories []FormatCategory `json:"categories"`
}

// QualityResponse lists the resolvable quality tiers.
type QualityResponse struct {
	Tiers   []QualityTier `json:"tiers"`
	Default string        `json:"default"`
}

// AuditPageResponse wraps one page of ledger entries, newest first.
type AuditPageResponse struct {
	Entries  []AuditEntry `json:"entries"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
	Total    int64        `json:"total"`
}

// EventStreamResponse carries bus notifications for long-poll consumers.
type EventStreamResponse struct {
	Events []JobEvent `json:"events"`
	Next   uint64     `json:"next"`
}
