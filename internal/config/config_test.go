package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"subgen/internal/config"
	"subgen/internal/services"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsAndNormalizes(t *testing.T) {
	path := writeConfig(t, `
[stt]
endpoint = "http://stt.local:9000/"

[translate]
enabled = true
endpoint = "http://translate.local"
target_languages = ["EN", "ja", "en", " "]
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported as existing")
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}

	if cfg.STT.Endpoint != "http://stt.local:9000" {
		t.Fatalf("endpoint not trimmed: %q", cfg.STT.Endpoint)
	}
	if cfg.STT.SampleRate != 16000 {
		t.Fatalf("expected default sample rate, got %d", cfg.STT.SampleRate)
	}
	if cfg.Transcribe.ChunkSeconds != 30 || cfg.Transcribe.OverlapSeconds != 5 {
		t.Fatalf("unexpected window defaults: chunk=%d overlap=%d", cfg.Transcribe.ChunkSeconds, cfg.Transcribe.OverlapSeconds)
	}
	if got := cfg.Translate.TargetLanguages; len(got) != 2 || got[0] != "en" || got[1] != "ja" {
		t.Fatalf("languages not normalized: %v", got)
	}
	if cfg.Workflow.Workers != 2 {
		t.Fatalf("expected default worker count, got %d", cfg.Workflow.Workers)
	}
}

func TestLoadRequiresEndpoint(t *testing.T) {
	path := writeConfig(t, "[logging]\nlevel = \"debug\"\n")

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for missing stt.endpoint")
	}
	if !errors.Is(err, services.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidateRejectsOverlapNotLessThanChunk(t *testing.T) {
	path := writeConfig(t, `
[stt]
endpoint = "http://stt.local:9000"

[transcribe]
chunk_seconds = 10
overlap_seconds = 10
`)

	_, _, _, err := config.Load(path)
	if !errors.Is(err, services.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidateRejectsVADThresholdOutOfRange(t *testing.T) {
	path := writeConfig(t, `
[stt]
endpoint = "http://stt.local:9000"

[transcribe]
vad_threshold = 1.5
`)

	_, _, _, err := config.Load(path)
	if !errors.Is(err, services.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestJobsDirAndDatabasePath(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = "/var/lib/subgen"
	if got := cfg.JobsDir(); got != filepath.Join("/var/lib/subgen", "jobs") {
		t.Fatalf("unexpected jobs dir: %q", got)
	}
	if got := cfg.DatabasePath(); got != filepath.Join("/var/lib/subgen", "subgen.db") {
		t.Fatalf("unexpected database path: %q", got)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample config should exist")
	}
	if cfg.STT.Endpoint == "" {
		t.Fatal("sample config should set stt.endpoint")
	}
}
