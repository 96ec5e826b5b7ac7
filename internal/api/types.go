package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// JobView describes a job in a transport-friendly format.
type JobView struct {
	ID             string      `json:"id"`
	Type           string      `json:"type"`
	SourcePath     string      `json:"sourcePath"`
	Language       string      `json:"language,omitempty"`
	TargetLanguage string      `json:"targetLanguage,omitempty"`
	Status         string      `json:"status"`
	Outputs        []string    `json:"outputs,omitempty"`
	ErrorMessage   string      `json:"errorMessage,omitempty"`
	Progress       JobProgress `json:"progress"`
	CreatedAt      string      `json:"createdAt,omitempty"`
	UpdatedAt      string      `json:"updatedAt,omitempty"`
	StartedAt      string      `json:"startedAt,omitempty"`
	FinishedAt     string      `json:"finishedAt,omitempty"`
}

// JobProgress captures window progress for a running job.
type JobProgress struct {
	Window  int     `json:"window"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
	Message string  `json:"message,omitempty"`
}

// SubmitRequest is the body of a job submission.
type SubmitRequest struct {
	Type           string `json:"type"`
	SourcePath     string `json:"sourcePath"`
	Language       string `json:"language,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
}

// JobListResponse wraps a collection of jobs.
type JobListResponse struct {
	Jobs []JobView `json:"jobs"`
}

// JobResponse wraps a single job.
type JobResponse struct {
	Job JobView `json:"job"`
}

// QueueSummary reports job counts per lifecycle state.
type QueueSummary struct {
	Total      int `json:"total"`
	Queued     int `json:"queued"`
	Running    int `json:"running"`
	Cancelling int `json:"cancelling"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Canceled   int `json:"canceled"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool         `json:"running"`
	PID          int          `json:"pid"`
	Version      string       `json:"version"`
	DatabasePath string       `json:"databasePath"`
	MediaDir     string       `json:"mediaDir"`
	Queue        QueueSummary `json:"queue"`
}

// MediaFileView describes one library entry from a media scan.
type MediaFileView struct {
	Path             string   `json:"path"`
	SidecarLanguages []string `json:"sidecarLanguages,omitempty"`
	Generated        bool     `json:"generated"`
}

// MediaListResponse wraps a media library listing.
type MediaListResponse struct {
	Files []MediaFileView `json:"files"`
}

// ErrorResponse carries a transport-level failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}
