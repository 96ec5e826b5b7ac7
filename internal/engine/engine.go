// Package engine schedules queued jobs onto a bounded worker pool and runs
// the transcription, scan, and translation pipelines.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"subgen/internal/config"
	"subgen/internal/jobs"
	"subgen/internal/logging"
	"subgen/internal/notifications"
	"subgen/internal/resume"
	"subgen/internal/services"
	"subgen/internal/stt"
	"subgen/internal/translate"
)

// errCanceled marks a pipeline that stopped because cancellation was
// requested, as opposed to failing.
var errCanceled = errors.New("job canceled")

// Engine owns the job queue workers. Jobs are claimed from the store one at
// a time and each runs on its own goroutine, bounded by a weighted
// semaphore sized to the configured worker count.
type Engine struct {
	cfg         *config.Config
	store       *jobs.Store
	resume      *resume.Store
	transcriber *stt.Client
	translator  *translate.Client
	notifier    notifications.Service
	logger      *slog.Logger

	sem     *semaphore.Weighted
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	started bool
}

// New wires an engine from its dependencies. Start must be called before
// jobs are processed.
func New(cfg *config.Config, store *jobs.Store, resumeStore *resume.Store, notifier notifications.Service, logger *slog.Logger) *Engine {
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	workers := cfg.Workflow.Workers
	if workers < 1 {
		workers = 1
	}
	engine := &Engine{
		cfg:         cfg,
		store:       store,
		resume:      resumeStore,
		transcriber: stt.NewClient(cfg, logger),
		notifier:    notifier,
		logger:      logging.NewComponentLogger(logger, "engine"),
		sem:         semaphore.NewWeighted(int64(workers)),
	}
	if cfg.Translate.Enabled {
		engine.translator = translate.NewClient(cfg, logger)
	}
	return engine
}

// Start recovers jobs interrupted by a previous shutdown and launches the
// queue dispatcher.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return errors.New("engine already started")
	}
	e.started = true
	e.mu.Unlock()

	if err := e.recoverInterrupted(ctx); err != nil {
		return err
	}

	e.baseCtx, e.cancel = context.WithCancel(context.Background())
	e.wg.Add(1)
	go e.dispatch(e.baseCtx)
	e.logger.Info("engine started", logging.Int("workers", e.cfg.Workflow.Workers))
	return nil
}

// Stop halts the dispatcher and waits for in-flight jobs to wind down or
// the context to expire. Interrupted jobs keep their resume state and are
// requeued, so the next start picks them up where they left off.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("engine shutdown: %w", ctx.Err())
	}
}

// Submit enqueues a new job.
func (e *Engine) Submit(ctx context.Context, jobType jobs.Type, sourcePath, lang, targetLang string) (*jobs.Job, error) {
	job, err := e.store.NewJob(ctx, jobType, sourcePath, lang, targetLang)
	if err != nil {
		return nil, err
	}
	e.logger.Info("job queued",
		logging.String("job_id", job.ID),
		logging.String("type", string(job.Type)),
		logging.String("source", job.SourcePath))
	return job, nil
}

// Get fetches one job by identifier. Returns nil when no job matches.
func (e *Engine) Get(ctx context.Context, id string) (*jobs.Job, error) {
	return e.store.GetByID(ctx, id)
}

// List returns jobs filtered by status.
func (e *Engine) List(ctx context.Context, statuses ...jobs.Status) ([]*jobs.Job, error) {
	return e.store.List(ctx, statuses...)
}

// Status returns aggregate queue counts.
func (e *Engine) Status(ctx context.Context) (jobs.Summary, error) {
	return e.store.Stats(ctx)
}

// Cancel requests cancellation of a job. Queued jobs cancel immediately;
// running jobs observe the request at the next window boundary, so the
// in-flight remote call finishes and its window commits first. Committed
// segments and resume state are retained until the job is deleted.
func (e *Engine) Cancel(ctx context.Context, id string) (*jobs.Job, error) {
	return e.store.RequestCancel(ctx, id)
}

// Delete removes a terminal job and its resume state. Active jobs return
// services.ErrJobActive.
func (e *Engine) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := e.store.Remove(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		if err := e.resume.Discard(id); err != nil {
			e.logger.Warn("discard resume state", logging.String("job_id", id), logging.Error(err))
		}
	}
	return removed, nil
}

// recoverInterrupted handles jobs left running or cancelling by an unclean
// shutdown. Jobs whose resume state is intact go back to the queue; jobs
// with corrupt or missing resume state fail so the operator can resubmit.
// Restarting such a job from window 0 would silently re-bill every window
// against the remote service, so it is never done.
func (e *Engine) recoverInterrupted(ctx context.Context) error {
	interrupted, err := e.store.List(ctx, jobs.StatusRunning, jobs.StatusCancelling)
	if err != nil {
		return fmt.Errorf("list interrupted jobs: %w", err)
	}
	for _, job := range interrupted {
		state, loadErr := e.resume.Load(job.ID)
		if loadErr == nil && state == nil {
			loadErr = services.Wrap(services.ErrResumeCorrupt, "engine", "recover", "resume state missing for interrupted job", nil)
		}
		if loadErr != nil {
			e.logger.Error("resume state corrupt, failing job",
				logging.String("job_id", job.ID),
				logging.Error(loadErr))
			job.SetFailed(loadErr.Error())
			now := time.Now().UTC()
			job.FinishedAt = &now
			if err := e.store.Update(ctx, job); err != nil {
				return err
			}
			if err := e.resume.Discard(job.ID); err != nil {
				e.logger.Warn("discard resume state", logging.String("job_id", job.ID), logging.Error(err))
			}
			continue
		}
		_ = state.Close()
		if err := e.store.Requeue(ctx, job.ID); err != nil {
			return err
		}
		e.logger.Info("requeued interrupted job", logging.String("job_id", job.ID))
	}
	return nil
}

// dispatch claims queued jobs as worker slots free up.
func (e *Engine) dispatch(ctx context.Context) {
	defer e.wg.Done()

	poll := time.Duration(e.cfg.Workflow.QueuePollInterval) * time.Second
	if poll <= 0 {
		poll = 5 * time.Second
	}
	retry := time.Duration(e.cfg.Workflow.ErrorRetryInterval) * time.Second
	if retry <= 0 {
		retry = poll
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		wait := poll
		for {
			if err := e.sem.Acquire(ctx, 1); err != nil {
				return
			}
			job, err := e.store.ClaimQueued(ctx)
			if err != nil {
				e.sem.Release(1)
				if ctx.Err() != nil {
					return
				}
				e.logger.Error("claim queued job", logging.Error(err))
				wait = retry
				break
			}
			if job == nil {
				e.sem.Release(1)
				break
			}
			e.wg.Add(1)
			go func(job *jobs.Job) {
				defer e.wg.Done()
				defer e.sem.Release(1)
				e.runJob(ctx, job)
			}(job)
		}

		ticker.Reset(wait)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// runJob executes one claimed job and records its terminal state. The job
// context is canceled only by engine shutdown; user cancellation is polled
// at window boundaries so in-flight remote calls always finish.
func (e *Engine) runJob(ctx context.Context, job *jobs.Job) {
	jobCtx := services.WithJobID(ctx, job.ID)

	logger := e.logger.With(logging.String("job_id", job.ID), logging.String("type", string(job.Type)))
	logger.Info("job started", logging.String("source", job.SourcePath))
	if err := e.notifier.NotifyJobStarted(jobCtx, jobTitle(job)); err != nil {
		logger.Warn("job started notification", logging.Error(err))
	}

	var err error
	switch job.Type {
	case jobs.TypeTranscribe:
		err = e.runTranscribe(jobCtx, job)
	case jobs.TypeScan:
		err = e.runScan(jobCtx, job)
	case jobs.TypeTranslate:
		err = e.runTranslate(jobCtx, job)
	default:
		err = fmt.Errorf("unknown job type %q", job.Type)
	}

	e.finalize(ctx, job, err, logger)
}

// finalize moves a finished job to its terminal state. Engine shutdown
// requeues the job instead so it resumes on the next start.
func (e *Engine) finalize(ctx context.Context, job *jobs.Job, runErr error, logger *slog.Logger) {
	// Store writes after shutdown use a fresh context so the terminal state
	// still lands.
	storeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if runErr != nil && ctx.Err() != nil && !errors.Is(runErr, errCanceled) {
		if err := e.store.Requeue(storeCtx, job.ID); err != nil {
			logger.Error("requeue interrupted job", logging.Error(err))
		} else {
			logger.Info("job interrupted by shutdown, requeued")
		}
		return
	}

	now := time.Now().UTC()
	job.FinishedAt = &now

	switch {
	case runErr == nil:
		job.Status = jobs.StatusCompleted
		job.ErrorMessage = ""
		logger.Info("job completed", logging.String("output", job.PrimaryOutput()))
	case errors.Is(runErr, errCanceled):
		job.Status = jobs.StatusCanceled
		logger.Info("job canceled", logging.Int("outputs", len(job.Outputs)))
	default:
		job.SetFailed(runErr.Error())
		logger.Error("job failed", logging.Error(runErr))
	}

	if err := e.store.Update(storeCtx, job); err != nil {
		logger.Error("persist job state", logging.Error(err))
		return
	}

	switch job.Status {
	case jobs.StatusCompleted:
		if err := e.resume.Discard(job.ID); err != nil {
			logger.Warn("discard resume state", logging.Error(err))
		}
		if err := e.notifier.NotifyJobCompleted(storeCtx, jobTitle(job), job.PrimaryOutput()); err != nil {
			logger.Warn("job completed notification", logging.Error(err))
		}
	case jobs.StatusCanceled:
		// Committed segments stay on disk; Delete cleans them up.
	case jobs.StatusFailed:
		if err := e.notifier.NotifyJobFailed(storeCtx, jobTitle(job), runErr); err != nil {
			logger.Warn("job failed notification", logging.Error(err))
		}
	}
}

// shouldCancel reports whether cancellation was requested for the job.
// Workers check between windows so the in-flight window always commits.
// A fresh context is used because the job context is already canceled
// when the check runs during engine shutdown.
func (e *Engine) shouldCancel(jobID string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	current, err := e.store.GetByID(ctx, jobID)
	if err != nil || current == nil {
		return false
	}
	return current.Status == jobs.StatusCancelling || current.Status == jobs.StatusCanceled
}

func jobTitle(job *jobs.Job) string {
	if job.SourcePath != "" {
		return job.SourcePath
	}
	return job.ID
}
