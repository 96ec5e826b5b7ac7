// Package testsupport provides shared helpers for package tests: temp-dir
// backed configs, job store setup, and fixture files.
package testsupport

import (
	"path/filepath"
	"testing"

	"subgen/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.STT.Endpoint = "http://127.0.0.1:0"
	cfgVal.Paths.MediaDir = filepath.Join(base, "media")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSTTEndpoint points the test config at a speech-to-text service,
// typically an httptest server URL.
func WithSTTEndpoint(endpoint string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.STT.Endpoint = endpoint
	}
}

// WithWindow overrides the chunk and overlap lengths on the test config.
func WithWindow(chunkSeconds, overlapSeconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcribe.ChunkSeconds = chunkSeconds
		b.cfg.Transcribe.OverlapSeconds = overlapSeconds
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
