package engine

import (
	"context"
	"fmt"

	"subgen/internal/jobs"
	"subgen/internal/logging"
	"subgen/internal/media"
)

// runScan walks the media library and queues a transcription job for every
// video that still needs subtitles. With skip_existing enabled, files that
// already carry sidecar or embedded subtitles are left alone.
func (e *Engine) runScan(ctx context.Context, job *jobs.Job) error {
	logger := e.logger.With(logging.String("job_id", job.ID))

	root := job.SourcePath
	if root == "" {
		root = e.cfg.Paths.MediaDir
	}
	if root == "" {
		return fmt.Errorf("no media directory to scan")
	}

	files, err := media.NewScanner(root).Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}

	pending, err := e.pendingSources(ctx)
	if err != nil {
		return err
	}

	queued := 0
	for i, file := range files {
		if e.shouldCancel(job.ID) {
			return errCanceled
		}

		job.SetProgress(i+1, len(files), fmt.Sprintf("checked %d of %d", i+1, len(files)))
		if err := e.store.Update(ctx, job); err != nil {
			logger.Warn("persist progress", logging.Error(err))
		}

		if _, active := pending[file.Path]; active {
			continue
		}
		if e.cfg.Transcribe.SkipExisting {
			if file.Generated || file.HasSidecar() {
				continue
			}
			probed, err := media.Probe(ctx, e.cfg.FFprobeBinary(), file.Path)
			if err != nil {
				logger.Warn("probe failed, skipping file",
					logging.String("path", file.Path),
					logging.Error(err))
				continue
			}
			if probed.HasEmbeddedSubtitles() {
				continue
			}
		}

		queuedJob, err := e.store.NewJob(ctx, jobs.TypeTranscribe, file.Path, e.cfg.Transcribe.Language, "")
		if err != nil {
			return fmt.Errorf("queue transcription for %s: %w", file.Path, err)
		}
		queued++
		logger.Info("queued transcription",
			logging.String("path", file.Path),
			logging.String("queued_job_id", queuedJob.ID))
	}

	job.SetProgress(len(files), len(files), fmt.Sprintf("queued %d of %d files", queued, len(files)))
	return nil
}

// pendingSources returns the source paths of jobs that are not yet
// terminal, so a rescan never queues the same file twice.
func (e *Engine) pendingSources(ctx context.Context) (map[string]struct{}, error) {
	active, err := e.store.List(ctx, jobs.StatusQueued, jobs.StatusRunning, jobs.StatusCancelling)
	if err != nil {
		return nil, fmt.Errorf("list active jobs: %w", err)
	}
	pending := make(map[string]struct{}, len(active))
	for _, j := range active {
		if j.Type == jobs.TypeTranscribe {
			pending[j.SourcePath] = struct{}{}
		}
	}
	return pending, nil
}
