// Package translate converts generated subtitle text into additional
// languages through a Google Translate v2 compatible endpoint.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"subgen/internal/config"
	"subgen/internal/logging"
	"subgen/internal/services"
	"subgen/internal/subtitles"
)

const maxResponseBytes = 16 << 20

// Client calls the translation service.
type Client struct {
	endpoint   string
	apiKey     string
	batchSize  int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a client from the [translate] config section.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	timeout := time.Duration(cfg.Translate.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint:   strings.TrimRight(cfg.Translate.Endpoint, "/"),
		apiKey:     cfg.Translate.APIKey,
		batchSize:  cfg.Translate.BatchSize,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "translate"),
	}
}

type requestBody struct {
	Q      []string `json:"q"`
	Target string   `json:"target"`
	Format string   `json:"format"`
}

type responseBody struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

// Lines translates a slice of lines into the target language. The result
// always has the same length and order as the input. When a batch response
// comes back with a mismatched count, the batch is retried line by line.
func (c *Client) Lines(ctx context.Context, lines []string, target string) ([]string, error) {
	out := make([]string, 0, len(lines))
	for start := 0; start < len(lines); start += c.batchSize {
		end := start + c.batchSize
		if end > len(lines) {
			end = len(lines)
		}
		batch := lines[start:end]

		translated, err := c.request(ctx, batch, target)
		if err != nil {
			return nil, err
		}
		if len(translated) != len(batch) {
			c.logger.Warn("batch translation count mismatch, retrying line by line",
				logging.Int("sent", len(batch)),
				logging.Int("received", len(translated)))
			translated, err = c.linesIndividually(ctx, batch, target)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, translated...)
	}
	return out, nil
}

// Segments translates segment text while preserving timing and ordering.
func (c *Client) Segments(ctx context.Context, segments []subtitles.Segment, target string) ([]subtitles.Segment, error) {
	lines := make([]string, len(segments))
	for i, seg := range segments {
		lines[i] = seg.Text
	}
	translated, err := c.Lines(ctx, lines, target)
	if err != nil {
		return nil, err
	}
	out := make([]subtitles.Segment, len(segments))
	for i, seg := range segments {
		seg.Text = translated[i]
		out[i] = seg
	}
	return out, nil
}

func (c *Client) linesIndividually(ctx context.Context, lines []string, target string) ([]string, error) {
	out := make([]string, len(lines))
	for i, line := range lines {
		translated, err := c.request(ctx, []string{line}, target)
		if err != nil {
			return nil, err
		}
		if len(translated) != 1 {
			return nil, services.Wrap(services.ErrBadResponse, "translate", "lines",
				fmt.Sprintf("single-line request returned %d translations", len(translated)), nil)
		}
		out[i] = translated[0]
	}
	return out, nil
}

func (c *Client) request(ctx context.Context, lines []string, target string) ([]string, error) {
	payload, err := json.Marshal(requestBody{Q: lines, Target: target, Format: "text"})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := c.endpoint
	if c.apiKey != "" {
		url += "?key=" + c.apiKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, services.Wrap(services.ErrUnavailable, "translate", "request", "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "translate", "request", "read response", err)
	}

	if resp.StatusCode >= 500 {
		return nil, services.Wrap(services.ErrUnavailable, "translate", "request",
			fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrBadResponse, "translate", "request",
			fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var decoded responseBody
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, services.Wrap(services.ErrBadResponse, "translate", "request", "malformed response body", err)
	}
	out := make([]string, len(decoded.Data.Translations))
	for i, tr := range decoded.Data.Translations {
		out[i] = tr.TranslatedText
	}
	return out, nil
}
