// Command subgend runs the subtitle generation daemon: it owns the job
// queue, the worker pool, and the HTTP API used by the subgen CLI.
package main

import (
	"context"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"

	"subgen/internal/config"
	"subgen/internal/daemon"
	"subgen/internal/engine"
	"subgen/internal/jobs"
	"subgen/internal/logging"
	"subgen/internal/notifications"
	"subgen/internal/resume"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", filepath.Join(cfg.Paths.LogDir, "subgend.log")},
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := jobs.Open(cfg)
	if err != nil {
		logger.Error("open job store", logging.Error(err))
		return
	}

	resumeStore := resume.NewStore(cfg.JobsDir())
	notifier := notifications.NewService(cfg)
	eng := engine.New(cfg, store, resumeStore, notifier, logger)

	d, err := daemon.New(cfg, store, eng, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = store.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("subgend shutting down")
}
