package config

import (
	"fmt"
	"strings"

	"subgen/internal/services"
)

// Validate ensures the configuration is usable. All failures carry the
// services.ErrInvalidConfig marker so callers can classify them.
func (c *Config) Validate() error {
	if err := c.validateSTT(); err != nil {
		return err
	}
	if err := c.validateTranscribe(); err != nil {
		return err
	}
	if err := c.validateTranslate(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSTT() error {
	if strings.TrimSpace(c.STT.Endpoint) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/subgen/config.toml"
		}
		return invalid("stt.endpoint is required. Edit %s (create with 'subgen config init')", defaultPath)
	}
	if c.STT.SampleRate <= 0 {
		return invalid("stt.sample_rate must be positive")
	}
	if c.STT.MaxAttempts < 1 {
		return invalid("stt.max_attempts must be >= 1")
	}
	if c.STT.BackoffMillis < 1 {
		return invalid("stt.backoff_millis must be >= 1")
	}
	return nil
}

func (c *Config) validateTranscribe() error {
	if c.Transcribe.ChunkSeconds <= 0 {
		return invalid("transcribe.chunk_seconds must be positive")
	}
	if c.Transcribe.OverlapSeconds < 0 {
		return invalid("transcribe.overlap_seconds must be >= 0")
	}
	if c.Transcribe.OverlapSeconds >= c.Transcribe.ChunkSeconds {
		return invalid("transcribe.overlap_seconds must be less than transcribe.chunk_seconds")
	}
	if c.Transcribe.VADThreshold < 0 || c.Transcribe.VADThreshold > 1 {
		return invalid("transcribe.vad_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateTranslate() error {
	if !c.Translate.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Translate.Endpoint) == "" {
		return invalid("translate.endpoint must be set when translate.enabled is true")
	}
	if len(c.Translate.TargetLanguages) == 0 {
		return invalid("translate.target_languages must include at least one language when translate.enabled is true")
	}
	if c.Translate.BatchSize < 1 {
		return invalid("translate.batch_size must be >= 1")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.Workers < 1 {
		return invalid("workflow.workers must be >= 1")
	}
	if c.Workflow.QueuePollInterval <= 0 {
		return invalid("workflow.queue_poll_interval must be positive")
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		return invalid("workflow.error_retry_interval must be positive")
	}
	if c.Notifications.RequestTimeout <= 0 {
		return invalid("notifications.request_timeout must be positive")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", services.ErrInvalidConfig, fmt.Sprintf(format, args...))
}
