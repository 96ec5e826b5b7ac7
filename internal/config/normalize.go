package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSTT()
	c.normalizeTranscribe()
	c.normalizeTranslate()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.MediaDir, err = expandPath(c.Paths.MediaDir); err != nil {
		return fmt.Errorf("paths.media_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeSTT() {
	c.STT.Endpoint = strings.TrimRight(strings.TrimSpace(c.STT.Endpoint), "/")
	c.STT.APIKey = strings.TrimSpace(c.STT.APIKey)
	if c.STT.APIKey == "" {
		if value, ok := os.LookupEnv("SUBGEN_STT_API_KEY"); ok {
			c.STT.APIKey = strings.TrimSpace(value)
		}
	}
	if c.STT.SampleRate <= 0 {
		c.STT.SampleRate = defaultSampleRate
	}
	if c.STT.TimeoutSeconds <= 0 {
		c.STT.TimeoutSeconds = defaultSTTTimeoutSeconds
	}
	if c.STT.MaxAttempts <= 0 {
		c.STT.MaxAttempts = defaultSTTMaxAttempts
	}
	if c.STT.BackoffMillis <= 0 {
		c.STT.BackoffMillis = defaultSTTBackoffMillis
	}
}

func (c *Config) normalizeTranscribe() {
	c.Transcribe.Language = strings.ToLower(strings.TrimSpace(c.Transcribe.Language))
}

func (c *Config) normalizeTranslate() {
	c.Translate.Endpoint = strings.TrimRight(strings.TrimSpace(c.Translate.Endpoint), "/")
	c.Translate.APIKey = strings.TrimSpace(c.Translate.APIKey)
	if c.Translate.APIKey == "" {
		if value, ok := os.LookupEnv("SUBGEN_TRANSLATE_API_KEY"); ok {
			c.Translate.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Translate.BatchSize <= 0 {
		c.Translate.BatchSize = defaultTranslateBatchSize
	}
	if c.Translate.TimeoutSeconds <= 0 {
		c.Translate.TimeoutSeconds = defaultTranslateTimeout
	}
	if len(c.Translate.TargetLanguages) > 0 {
		langs := make([]string, 0, len(c.Translate.TargetLanguages))
		seen := make(map[string]struct{}, len(c.Translate.TargetLanguages))
		for _, lang := range c.Translate.TargetLanguages {
			normalized := strings.ToLower(strings.TrimSpace(lang))
			if normalized == "" {
				continue
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			langs = append(langs, normalized)
		}
		c.Translate.TargetLanguages = langs
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
