package engine

import (
	"context"
	"fmt"
	"os"

	"subgen/internal/jobs"
	"subgen/internal/logging"
	"subgen/internal/media"
	"subgen/internal/subtitles"
)

// runTranslate converts an existing generated subtitle track into another
// language. The job's source path names the media file, its language the
// track to read, and its target language the track to produce.
func (e *Engine) runTranslate(ctx context.Context, job *jobs.Job) error {
	if e.translator == nil {
		return fmt.Errorf("translation is not enabled")
	}
	if job.TargetLanguage == "" {
		return fmt.Errorf("translation job has no target language")
	}

	srcLang := job.Language
	if srcLang == "" {
		srcLang = e.cfg.Transcribe.Language
	}
	srcPath := media.OutputPath(job.SourcePath, srcLang)
	content, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read subtitle track %s: %w", srcPath, err)
	}

	track := subtitles.ParseSRT(string(content))
	if len(track) == 0 {
		return fmt.Errorf("no cues in %s", srcPath)
	}

	job.SetProgress(0, len(track), fmt.Sprintf("translating %d cues to %s", len(track), job.TargetLanguage))
	if err := e.store.Update(ctx, job); err != nil {
		e.logger.Warn("persist progress", logging.String("job_id", job.ID), logging.Error(err))
	}

	translated, err := e.translator.Segments(ctx, track, job.TargetLanguage)
	if err != nil {
		if ctx.Err() != nil && e.shouldCancel(job.ID) {
			return errCanceled
		}
		return err
	}

	outputPath := media.OutputPath(job.SourcePath, job.TargetLanguage)
	if err := subtitles.WriteSRT(outputPath, translated); err != nil {
		return err
	}
	job.AddOutput(outputPath)
	job.SetProgress(len(track), len(track), fmt.Sprintf("translated %d cues", len(track)))
	return nil
}
