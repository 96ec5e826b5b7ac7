// Package stt is the HTTP client for the remote speech-to-text service.
// It ships one PCM window per request and classifies failures into
// transient (retried with backoff) and permanent protocol errors.
package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"subgen/internal/config"
	"subgen/internal/logging"
	"subgen/internal/services"
)

const userAgent = "subgen/0.1.0"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 16 << 20

// Segment is one utterance in the service response, timed relative to the
// start of the submitted window.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is a successful transcription of one window.
type Result struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Client calls the transcription service.
type Client struct {
	endpoint    string
	apiKey      string
	sampleRate  int
	maxAttempts int
	backoff     time.Duration
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient builds a client from the [stt] config section.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	timeout := time.Duration(cfg.STT.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &Client{
		endpoint:    strings.TrimRight(cfg.STT.Endpoint, "/"),
		apiKey:      cfg.STT.APIKey,
		sampleRate:  cfg.STT.SampleRate,
		maxAttempts: cfg.STT.MaxAttempts,
		backoff:     time.Duration(cfg.STT.BackoffMillis) * time.Millisecond,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logging.NewComponentLogger(logger, "stt"),
	}
}

// Transcribe sends one window of s16le mono PCM and returns its segments.
// Transient failures (connection errors, timeouts, 5xx) are retried with
// doubling backoff up to the configured attempt budget, then surface as
// ErrUnavailable. Protocol violations surface as ErrBadResponse without
// retrying. Language may be empty to let the service detect it.
func (c *Client) Transcribe(ctx context.Context, pcm []byte, lang string) (Result, error) {
	var lastErr error
	backoff := c.backoff
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			c.logger.Debug("retrying transcription request",
				logging.Int("attempt", attempt),
				logging.Duration("backoff", backoff),
				logging.Error(lastErr))
			if err := sleepContext(ctx, backoff); err != nil {
				return Result{}, err
			}
			backoff *= 2
		}

		result, err := c.transcribeOnce(ctx, pcm, lang)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, services.ErrTransient) {
			return Result{}, err
		}
		lastErr = err
	}
	return Result{}, services.Wrap(services.ErrUnavailable, "stt", "transcribe",
		fmt.Sprintf("service unavailable after %d attempts", c.maxAttempts), lastErr)
}

func (c *Client) transcribeOnce(ctx context.Context, pcm []byte, lang string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/transcribe", bytes.NewReader(pcm))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Sample-Rate", strconv.Itoa(c.sampleRate))
	if lang != "" {
		req.Header.Set("X-Lang", lang)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, services.Wrap(services.ErrTransient, "stt", "transcribe", "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "stt", "transcribe", "read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return parseResult(body)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return Result{}, services.Wrap(services.ErrTransient, "stt", "transcribe",
			fmt.Sprintf("status %d: %s", resp.StatusCode, snippet(body)), nil)
	default:
		return Result{}, services.Wrap(services.ErrBadResponse, "stt", "transcribe",
			fmt.Sprintf("status %d: %s", resp.StatusCode, snippet(body)), nil)
	}
}

func parseResult(body []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return Result{}, services.Wrap(services.ErrBadResponse, "stt", "transcribe", "malformed response body", err)
	}
	for i, seg := range result.Segments {
		if seg.Start < 0 || seg.End < seg.Start {
			return Result{}, services.Wrap(services.ErrBadResponse, "stt", "transcribe",
				fmt.Sprintf("segment %d has invalid bounds [%f, %f]", i, seg.Start, seg.End), nil)
		}
	}
	return result, nil
}

func snippet(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
