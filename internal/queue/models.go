package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a conversion job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ShutdownFailureReason is recorded when in-flight jobs are failed because
// the daemon stopped underneath them.
const ShutdownFailureReason = "daemon stopped during conversion"

var allStatuses = []Status{
	StatusQueued,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var terminalStatuses = map[Status]struct{}{
	StatusCompleted: {},
	StatusFailed:    {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status is final and immutable.
func IsTerminal(status Status) bool {
	_, ok := terminalStatuses[status]
	return ok
}

// Job represents a conversion job persisted in SQLite.
type Job struct {
	ID                  int64
	JobKey              string
	SourceName          string
	SourcePath          string
	InputFormat         string
	OutputFormat        string
	QualityTier         string
	Status              Status
	ProgressPercent     int
	ProgressMessage     string
	OutputDir           string
	ArtifactsJSON       string
	ErrorMessage        string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	StartedAt           *time.Time
	CompletedAt         *time.Time
	EstimatedCompletion time.Time
}

// IsTerminal reports whether the job has reached a final state.
func (j Job) IsTerminal() bool {
	return IsTerminal(j.Status)
}

// ProcessingDuration returns the wall time spent converting, zero until the
// job has both started and completed.
func (j Job) ProcessingDuration() time.Duration {
	if j.StartedAt == nil || j.CompletedAt == nil {
		return 0
	}
	return j.CompletedAt.Sub(*j.StartedAt)
}

// Stats aggregates queue counters derived from job rows. There are no
// separately maintained counters to drift from the rows themselves.
type Stats struct {
	Total                int
	Queued               int
	Processing           int
	Completed            int
	Failed               int
	AvgProcessingSeconds float64
	ByPair               map[string]int
	ByTier               map[string]int
}

// PairKey renders a format pair for the statistics breakdown.
func PairKey(input, output string) string {
	return input + "->" + output
}
