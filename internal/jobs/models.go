package jobs

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusRunning    Status = "running"
	StatusCancelling Status = "cancelling"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

// Type identifies the kind of work a job performs.
type Type string

const (
	TypeTranscribe Type = "transcribe"
	TypeScan       Type = "scan"
	TypeTranslate  Type = "translate"
)

var allStatuses = []Status{
	StatusQueued,
	StatusRunning,
	StatusCancelling,
	StatusCompleted,
	StatusFailed,
	StatusCanceled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var allTypes = []Type{TypeTranscribe, TypeScan, TypeTranslate}

// Job represents a queued unit of work persisted in SQLite.
type Job struct {
	ID              string
	Type            Type
	SourcePath      string
	Language        string
	TargetLanguage  string
	Status          Status
	Outputs         []string
	ErrorMessage    string
	ProgressWindow  int
	ProgressTotal   int
	ProgressMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	StartedAt       *time.Time
	FinishedAt      *time.Time
}

// Summary describes aggregated job counts per lifecycle state.
type Summary struct {
	Total      int
	Queued     int
	Running    int
	Cancelling int
	Completed  int
	Failed     int
	Canceled   int
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

// ParseType converts a string into a known Type.
func ParseType(value string) (Type, bool) {
	normalized := Type(strings.ToLower(strings.TrimSpace(value)))
	for _, t := range allTypes {
		if t == normalized {
			return t, true
		}
	}
	return "", false
}

// IsTerminal reports whether the status will never change again.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCanceled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the job has reached a final state.
func (j Job) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// SetProgress updates the window counters and message together.
func (j *Job) SetProgress(window, total int, message string) {
	j.ProgressWindow = window
	j.ProgressTotal = total
	j.ProgressMessage = message
}

// SetFailed marks the job as failed with the given error message.
func (j *Job) SetFailed(message string) {
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.ProgressMessage = message
}

// AddOutput records a produced artifact path, keeping the list unique and
// in production order.
func (j *Job) AddOutput(path string) {
	if path == "" {
		return
	}
	for _, existing := range j.Outputs {
		if existing == path {
			return
		}
	}
	j.Outputs = append(j.Outputs, path)
}

// PrimaryOutput returns the first produced artifact, usually the
// source-language subtitle track.
func (j *Job) PrimaryOutput() string {
	if len(j.Outputs) == 0 {
		return ""
	}
	return j.Outputs[0]
}
