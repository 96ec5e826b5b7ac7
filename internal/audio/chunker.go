// Package audio splits a raw PCM stream into overlapping transcription
// windows and scores them for speech content.
package audio

import (
	"errors"
	"fmt"
	"io"

	"subgen/internal/services"
)

// bytesPerSample is the width of one s16le mono sample.
const bytesPerSample = 2

// Config describes the PCM stream and windowing parameters.
type Config struct {
	SampleRate     int
	ChunkSeconds   int
	OverlapSeconds int
}

// Window is one chunk of the stream. Consecutive windows share
// OverlapSeconds of audio: window i starts at i*(chunk-overlap) seconds.
type Window struct {
	Index    int
	StartSec float64
	EndSec   float64
	PCM      []byte
}

// Chunker reads overlapping fixed-length windows from a PCM stream.
type Chunker struct {
	reader  io.Reader
	cfg     Config
	index   int
	carry   []byte
	strideB int
	chunkB  int
	done    bool
}

// NewChunker validates the windowing parameters and wraps the PCM stream.
func NewChunker(r io.Reader, cfg Config) (*Chunker, error) {
	if cfg.SampleRate <= 0 {
		return nil, services.Wrap(services.ErrInvalidConfig, "audio", "chunker", fmt.Sprintf("sample rate %d must be positive", cfg.SampleRate), nil)
	}
	if cfg.ChunkSeconds <= 0 {
		return nil, services.Wrap(services.ErrInvalidConfig, "audio", "chunker", fmt.Sprintf("chunk length %ds must be positive", cfg.ChunkSeconds), nil)
	}
	if cfg.OverlapSeconds < 0 {
		return nil, services.Wrap(services.ErrInvalidConfig, "audio", "chunker", fmt.Sprintf("overlap %ds must not be negative", cfg.OverlapSeconds), nil)
	}
	if cfg.OverlapSeconds >= cfg.ChunkSeconds {
		return nil, services.Wrap(services.ErrInvalidConfig, "audio", "chunker", fmt.Sprintf("overlap %ds must be shorter than chunk %ds", cfg.OverlapSeconds, cfg.ChunkSeconds), nil)
	}

	bytesPerSecond := cfg.SampleRate * bytesPerSample
	return &Chunker{
		reader:  r,
		cfg:     cfg,
		strideB: (cfg.ChunkSeconds - cfg.OverlapSeconds) * bytesPerSecond,
		chunkB:  cfg.ChunkSeconds * bytesPerSecond,
	}, nil
}

// Next returns the next window or io.EOF when the stream is exhausted.
// The final window may be shorter than the configured chunk length.
func (c *Chunker) Next() (Window, error) {
	if c.done {
		return Window{}, io.EOF
	}

	fresh := c.chunkB
	if c.index > 0 {
		fresh = c.strideB
	}

	buf := make([]byte, fresh)
	n, err := io.ReadFull(c.reader, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return Window{}, fmt.Errorf("read pcm: %w", err)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		c.done = true
	}
	if n == 0 {
		return Window{}, io.EOF
	}
	// A trailing odd byte cannot form a sample; drop it.
	n -= n % bytesPerSample

	pcm := make([]byte, 0, len(c.carry)+n)
	pcm = append(pcm, c.carry...)
	pcm = append(pcm, buf[:n]...)

	bytesPerSecond := float64(c.cfg.SampleRate * bytesPerSample)
	window := Window{
		Index:    c.index,
		StartSec: float64(c.index * (c.cfg.ChunkSeconds - c.cfg.OverlapSeconds)),
		PCM:      pcm,
	}
	window.EndSec = window.StartSec + float64(len(pcm))/bytesPerSecond

	if !c.done {
		overlapB := c.cfg.OverlapSeconds * c.cfg.SampleRate * bytesPerSample
		if overlapB > len(pcm) {
			overlapB = len(pcm)
		}
		c.carry = append(c.carry[:0], pcm[len(pcm)-overlapB:]...)
	}
	c.index++
	return window, nil
}
