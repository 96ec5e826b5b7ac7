package jobs_test

import (
	"context"
	"errors"
	"testing"

	"subgen/internal/jobs"
	"subgen/internal/services"
	"subgen/internal/testsupport"
)

func TestNewJobAndGetByID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job, err := store.NewJob(ctx, jobs.TypeTranscribe, "/media/film.mkv", "en", "")
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if job.ID == "" {
		t.Fatal("expected generated job ID")
	}
	if job.Status != jobs.StatusQueued {
		t.Fatalf("expected queued status, got %s", job.Status)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched == nil || fetched.SourcePath != "/media/film.mkv" || fetched.Language != "en" {
		t.Fatalf("unexpected job: %+v", fetched)
	}

	missing, err := store.GetByID(ctx, "no-such-job")
	if err != nil {
		t.Fatalf("GetByID missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for unknown job")
	}
}

func TestClaimQueuedOrdersByCreation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.NewJob(t, store, jobs.TypeTranscribe, "/media/a.mkv")
	testsupport.NewJob(t, store, jobs.TypeTranscribe, "/media/b.mkv")

	claimed, err := store.ClaimQueued(ctx)
	if err != nil {
		t.Fatalf("ClaimQueued: %v", err)
	}
	if claimed == nil || claimed.ID != first.ID {
		t.Fatalf("expected oldest job %s, got %+v", first.ID, claimed)
	}
	if claimed.Status != jobs.StatusRunning {
		t.Fatalf("expected running status, got %s", claimed.Status)
	}
	if claimed.StartedAt == nil {
		t.Fatal("expected started_at to be set")
	}
}

func TestClaimQueuedEmptyQueue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	claimed, err := store.ClaimQueued(context.Background())
	if err != nil {
		t.Fatalf("ClaimQueued: %v", err)
	}
	if claimed != nil {
		t.Fatalf("expected nil for empty queue, got %+v", claimed)
	}
}

func TestRequestCancelQueuedJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job := testsupport.NewJob(t, store, jobs.TypeTranscribe, "/media/a.mkv")

	updated, err := store.RequestCancel(ctx, job.ID)
	if err != nil {
		t.Fatalf("RequestCancel: %v", err)
	}
	if updated.Status != jobs.StatusCanceled {
		t.Fatalf("queued job should cancel directly, got %s", updated.Status)
	}
	if updated.FinishedAt == nil {
		t.Fatal("expected finished_at on canceled job")
	}
}

func TestRequestCancelRunningJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewJob(t, store, jobs.TypeTranscribe, "/media/a.mkv")
	claimed, err := store.ClaimQueued(ctx)
	if err != nil {
		t.Fatalf("ClaimQueued: %v", err)
	}

	updated, err := store.RequestCancel(ctx, claimed.ID)
	if err != nil {
		t.Fatalf("RequestCancel: %v", err)
	}
	if updated.Status != jobs.StatusCancelling {
		t.Fatalf("running job should move to cancelling, got %s", updated.Status)
	}
}

func TestRemoveActiveJobRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job := testsupport.NewJob(t, store, jobs.TypeTranscribe, "/media/a.mkv")

	_, err := store.Remove(ctx, job.ID)
	if !errors.Is(err, services.ErrJobActive) {
		t.Fatalf("expected ErrJobActive, got %v", err)
	}

	job.Status = jobs.StatusCompleted
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update: %v", err)
	}
	removed, err := store.Remove(ctx, job.ID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !removed {
		t.Fatal("expected job to be removed")
	}
}

func TestRequeueRunningJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewJob(t, store, jobs.TypeTranscribe, "/media/a.mkv")
	claimed, err := store.ClaimQueued(ctx)
	if err != nil {
		t.Fatalf("ClaimQueued: %v", err)
	}

	if err := store.Requeue(ctx, claimed.ID); err != nil {
		t.Fatalf("Requeue: %v", err)
	}
	fetched, err := store.GetByID(ctx, claimed.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != jobs.StatusQueued {
		t.Fatalf("expected queued after requeue, got %s", fetched.Status)
	}
	if fetched.StartedAt != nil {
		t.Fatal("expected started_at cleared after requeue")
	}
}

func TestUpdatePersistsOutputs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job := testsupport.NewJob(t, store, jobs.TypeTranscribe, "/media/a.mkv")
	job.AddOutput("/media/a.gen_en.srt")
	job.AddOutput("/media/a.gen_es.srt")
	job.AddOutput("/media/a.gen_en.srt")
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(fetched.Outputs) != 2 ||
		fetched.Outputs[0] != "/media/a.gen_en.srt" ||
		fetched.Outputs[1] != "/media/a.gen_es.srt" {
		t.Fatalf("outputs = %+v", fetched.Outputs)
	}
	if fetched.PrimaryOutput() != "/media/a.gen_en.srt" {
		t.Fatalf("primary output = %q", fetched.PrimaryOutput())
	}
}

func TestStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewJob(t, store, jobs.TypeTranscribe, "/media/a.mkv")
	job := testsupport.NewJob(t, store, jobs.TypeTranscribe, "/media/b.mkv")
	job.Status = jobs.StatusFailed
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update: %v", err)
	}

	summary, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if summary.Total != 2 || summary.Queued != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestParseStatusAndType(t *testing.T) {
	if status, ok := jobs.ParseStatus(" Running "); !ok || status != jobs.StatusRunning {
		t.Fatalf("ParseStatus failed: %v %v", status, ok)
	}
	if _, ok := jobs.ParseStatus("bogus"); ok {
		t.Fatal("expected bogus status to be rejected")
	}
	if jobType, ok := jobs.ParseType("TRANSCRIBE"); !ok || jobType != jobs.TypeTranscribe {
		t.Fatalf("ParseType failed: %v %v", jobType, ok)
	}
}
