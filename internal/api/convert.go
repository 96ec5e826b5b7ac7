package api

import (
	"time"

	"subgen/internal/jobs"
	"subgen/internal/media"
)

// FromJob converts a job record to its API representation.
func FromJob(job *jobs.Job) JobView {
	if job == nil {
		return JobView{}
	}

	view := JobView{
		ID:             job.ID,
		Type:           string(job.Type),
		SourcePath:     job.SourcePath,
		Language:       job.Language,
		TargetLanguage: job.TargetLanguage,
		Status:         string(job.Status),
		Outputs:        append([]string(nil), job.Outputs...),
		ErrorMessage:   job.ErrorMessage,
		Progress: JobProgress{
			Window:  job.ProgressWindow,
			Total:   job.ProgressTotal,
			Message: job.ProgressMessage,
		},
	}
	if job.ProgressTotal > 0 {
		view.Progress.Percent = 100 * float64(job.ProgressWindow) / float64(job.ProgressTotal)
	}

	view.CreatedAt = FormatTime(job.CreatedAt)
	view.UpdatedAt = FormatTime(job.UpdatedAt)
	if job.StartedAt != nil {
		view.StartedAt = FormatTime(*job.StartedAt)
	}
	if job.FinishedAt != nil {
		view.FinishedAt = FormatTime(*job.FinishedAt)
	}
	return view
}

// FromJobs converts a slice of job records into API views.
func FromJobs(records []*jobs.Job) []JobView {
	if len(records) == 0 {
		return nil
	}
	out := make([]JobView, 0, len(records))
	for _, job := range records {
		out = append(out, FromJob(job))
	}
	return out
}

// FromSummary converts store statistics to an API payload.
func FromSummary(summary jobs.Summary) QueueSummary {
	return QueueSummary{
		Total:      summary.Total,
		Queued:     summary.Queued,
		Running:    summary.Running,
		Cancelling: summary.Cancelling,
		Completed:  summary.Completed,
		Failed:     summary.Failed,
		Canceled:   summary.Canceled,
	}
}

// FromMediaFiles converts scanner results to API views.
func FromMediaFiles(files []media.File) []MediaFileView {
	if len(files) == 0 {
		return nil
	}
	out := make([]MediaFileView, 0, len(files))
	for _, file := range files {
		out = append(out, MediaFileView{
			Path:             file.Path,
			SidecarLanguages: file.SidecarLanguages,
			Generated:        file.Generated,
		})
	}
	return out
}

// FormatTime converts a time to RFC3339 or returns an empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
