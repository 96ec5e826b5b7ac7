package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfig marks bad chunk/overlap/threshold parameters. Work is
	// rejected before any chunk is read.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrUnavailable marks a remote transcription call that exhausted its
	// retry budget. The job fails; any committed journal is preserved.
	ErrUnavailable = errors.New("transcription unavailable")
	// ErrBadResponse marks a schema-violating provider response. Assumed
	// non-transient and never retried.
	ErrBadResponse = errors.New("bad response")
	// ErrJobActive marks a delete attempted on a non-terminal job.
	ErrJobActive = errors.New("job active")
	// ErrResumeCorrupt marks resume files that are unreadable or inconsistent
	// on restart. The job is failed rather than restarted from window zero.
	ErrResumeCorrupt = errors.New("resume state corrupt")
	// ErrTransient marks retryable network-class failures. It never escapes
	// the STT adapter except wrapped into ErrUnavailable.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Details extracts the human-readable portion of a wrapped service error,
// stripping the marker prefix so job records read cleanly.
func Details(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []error{ErrInvalidConfig, ErrUnavailable, ErrBadResponse, ErrJobActive, ErrResumeCorrupt, ErrTransient} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
