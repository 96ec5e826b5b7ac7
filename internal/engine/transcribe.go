package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"subgen/internal/audio"
	"subgen/internal/jobs"
	"subgen/internal/language"
	"subgen/internal/logging"
	"subgen/internal/media"
	"subgen/internal/resume"
	"subgen/internal/subtitles"
)

// runTranscribe streams the source's audio through the speech service in
// overlapping windows and writes the reconciled track as an SRT sidecar.
// Every committed window is journaled, so a restart resumes after the last
// window that made it to disk.
func (e *Engine) runTranscribe(ctx context.Context, job *jobs.Job) error {
	logger := e.logger.With(logging.String("job_id", job.ID))

	sourceInfo, err := os.Stat(job.SourcePath)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	probed, err := media.Probe(ctx, e.cfg.FFprobeBinary(), job.SourcePath)
	if err != nil {
		return err
	}
	if probed.AudioStreams == 0 {
		return fmt.Errorf("no audio streams in %s", job.SourcePath)
	}

	lang := job.Language
	if lang == "" {
		lang = e.cfg.Transcribe.Language
	}

	manifest := resume.Manifest{
		JobID:          job.ID,
		SourcePath:     job.SourcePath,
		SourceSize:     sourceInfo.Size(),
		SourceModTime:  sourceInfo.ModTime().UTC(),
		SampleRate:     e.cfg.STT.SampleRate,
		ChunkSeconds:   e.cfg.Transcribe.ChunkSeconds,
		OverlapSeconds: e.cfg.Transcribe.OverlapSeconds,
		VADThreshold:   e.cfg.Transcribe.VADThreshold,
		Language:       lang,
	}

	state, err := e.openResumeState(manifest)
	if err != nil {
		return err
	}
	defer state.Close()

	reconciler := subtitles.NewReconciler(float64(e.cfg.Transcribe.OverlapSeconds))
	lastWindow := state.LastWindow()
	if lastWindow >= 0 {
		reconciler.Seed(state.Segments())
		logger.Info("resuming transcription",
			logging.Int("last_window", lastWindow),
			logging.Int("segments", len(state.Segments())))
	}

	totalWindows := estimateWindows(probed.DurationSeconds, e.cfg.Transcribe.ChunkSeconds, e.cfg.Transcribe.OverlapSeconds)

	stream, err := media.StartPCM(ctx, e.cfg.FFmpegBinary(), job.SourcePath, e.cfg.STT.SampleRate)
	if err != nil {
		return err
	}

	chunker, err := audio.NewChunker(stream, audio.Config{
		SampleRate:     e.cfg.STT.SampleRate,
		ChunkSeconds:   e.cfg.Transcribe.ChunkSeconds,
		OverlapSeconds: e.cfg.Transcribe.OverlapSeconds,
	})
	if err != nil {
		stream.Abandon()
		return err
	}

	detectedLang := ""
	for {
		if e.shouldCancel(job.ID) {
			stream.Abandon()
			e.writePartialTrack(job, reconciler, detectedLang, logger)
			return errCanceled
		}

		window, err := chunker.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			stream.Abandon()
			return err
		}
		if window.Index <= lastWindow {
			// Committed in a previous run; the bytes still had to be
			// decoded to reach this point in the stream.
			continue
		}

		var accepted []subtitles.Segment
		spans := audio.SpeechSpans(window.PCM, e.cfg.STT.SampleRate, e.cfg.Transcribe.VADThreshold)
		if len(spans) > 0 {
			logger.Debug("speech detected",
				logging.Int("window", window.Index),
				logging.Float64("score", audio.SpeechScore(window.PCM, e.cfg.STT.SampleRate)),
				logging.Any("spans", spans))
			result, err := e.transcriber.Transcribe(ctx, window.PCM, lang)
			if err != nil {
				stream.Abandon()
				if ctx.Err() != nil && e.shouldCancel(job.ID) {
					e.writePartialTrack(job, reconciler, detectedLang, logger)
					return errCanceled
				}
				return err
			}
			if detectedLang == "" {
				detectedLang = result.Language
			}
			segments := make([]subtitles.Segment, len(result.Segments))
			for i, seg := range result.Segments {
				segments[i] = subtitles.Segment{Start: seg.Start, End: seg.End, Text: seg.Text}
			}
			accepted = reconciler.Merge(window.Index, window.StartSec, segments)
		} else {
			logger.Debug("window below speech threshold",
				logging.Int("window", window.Index),
				logging.Float64("score", audio.SpeechScore(window.PCM, e.cfg.STT.SampleRate)))
		}

		if err := state.CommitWindow(window.Index, accepted); err != nil {
			stream.Abandon()
			return err
		}

		job.SetProgress(window.Index+1, totalWindows, fmt.Sprintf("window %d of %d", window.Index+1, totalWindows))
		if err := e.store.Update(ctx, job); err != nil {
			logger.Warn("persist progress", logging.Error(err))
		}
	}

	if err := stream.Close(); err != nil {
		return err
	}

	outLang := outputLanguage(job.Language, e.cfg.Transcribe.Language, detectedLang)
	track := reconciler.Segments()
	outputPath := media.OutputPath(job.SourcePath, outLang)
	if err := subtitles.WriteSRT(outputPath, track); err != nil {
		return err
	}
	job.AddOutput(outputPath)
	if job.Language == "" {
		job.Language = outLang
	}
	logger.Info("subtitle track written",
		logging.String("output", outputPath),
		logging.Int("segments", len(track)))

	e.translateTrack(ctx, job, track, outLang, logger)
	return nil
}

// translateTrack writes additional language sidecars for a finished track.
// Translation failures do not fail the job; the primary subtitle already
// exists.
func (e *Engine) translateTrack(ctx context.Context, job *jobs.Job, track []subtitles.Segment, outLang string, logger *slog.Logger) {
	if e.translator == nil || len(track) == 0 {
		return
	}
	targets := e.cfg.Translate.TargetLanguages
	if job.TargetLanguage != "" {
		targets = []string{job.TargetLanguage}
	}
	for _, target := range targets {
		if target == "" || target == outLang {
			continue
		}
		translated, err := e.translator.Segments(ctx, track, target)
		if err != nil {
			logger.Warn("translate track", logging.String("target", target), logging.Error(err))
			continue
		}
		path := media.OutputPath(job.SourcePath, target)
		if err := subtitles.WriteSRT(path, translated); err != nil {
			logger.Warn("write translated track", logging.String("target", target), logging.Error(err))
			continue
		}
		job.AddOutput(path)
		logger.Info("translated track written", logging.String("target", target), logging.String("output", path))
	}
}

// writePartialTrack flushes whatever the reconciler has committed so far.
// A canceled job still leaves a usable prefix of the track behind.
func (e *Engine) writePartialTrack(job *jobs.Job, reconciler *subtitles.Reconciler, detectedLang string, logger *slog.Logger) {
	track := reconciler.Segments()
	if len(track) == 0 {
		return
	}
	outLang := outputLanguage(job.Language, e.cfg.Transcribe.Language, detectedLang)
	path := media.OutputPath(job.SourcePath, outLang)
	if err := subtitles.WriteSRT(path, track); err != nil {
		logger.Warn("write partial track", logging.Error(err))
		return
	}
	job.AddOutput(path)
	logger.Info("partial track written",
		logging.String("output", path),
		logging.Int("segments", len(track)))
}

// openResumeState loads existing resume state when it matches the current
// input and parameters, and starts fresh otherwise. Corrupt state is
// discarded after surfacing, so a resubmitted job starts clean.
func (e *Engine) openResumeState(manifest resume.Manifest) (*resume.JobState, error) {
	state, err := e.resume.Load(manifest.JobID)
	if err != nil {
		if discardErr := e.resume.Discard(manifest.JobID); discardErr != nil {
			e.logger.Warn("discard corrupt resume state",
				logging.String("job_id", manifest.JobID),
				logging.Error(discardErr))
		}
		return nil, err
	}
	if state != nil {
		if state.Manifest().Compatible(manifest) {
			return state, nil
		}
		_ = state.Close()
		e.logger.Info("resume state stale, starting over", logging.String("job_id", manifest.JobID))
	}
	return e.resume.Create(manifest)
}

// estimateWindows predicts how many windows the stream will produce so
// progress can be reported as a fraction. Zero means unknown duration.
func estimateWindows(durationSeconds float64, chunkSeconds, overlapSeconds int) int {
	if durationSeconds <= 0 || chunkSeconds <= 0 {
		return 0
	}
	if durationSeconds <= float64(chunkSeconds) {
		return 1
	}
	stride := float64(chunkSeconds - overlapSeconds)
	if stride <= 0 {
		return 1
	}
	return 1 + int(math.Ceil((durationSeconds-float64(chunkSeconds))/stride))
}

// outputLanguage picks the language tag used in the generated file name:
// the requested language, then the configured default, then whatever the
// service detected.
func outputLanguage(requested, configured, detected string) string {
	for _, candidate := range []string{requested, configured, detected} {
		if candidate == "" {
			continue
		}
		if iso2 := language.ToISO2(candidate); iso2 != "" {
			return iso2
		}
		return candidate
	}
	return "und"
}
