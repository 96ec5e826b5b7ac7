package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"subgen/internal/services"
)

func TestPrettyHandlerFormatsComponent(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Info("job accepted", String(FieldComponent, "engine"), String(FieldJobID, "abc"))

	out := buf.String()
	if !strings.Contains(out, "INFO engine: job accepted") {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "job_id=abc") {
		t.Fatalf("expected job_id attr in output: %q", out)
	}
}

func TestPrettyHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Warn("stage failed", String("message", "two words"))

	if !strings.Contains(buf.String(), `message="two words"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsJobFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	ctx := services.WithJobID(context.Background(), "job-1")
	ctx = services.WithStage(ctx, "transcribe")

	WithContext(ctx, logger).Info("window committed")

	out := buf.String()
	if !strings.Contains(out, "job_id=job-1") || !strings.Contains(out, "stage=transcribe") {
		t.Fatalf("context fields missing: %q", out)
	}
}
