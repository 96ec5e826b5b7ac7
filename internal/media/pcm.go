// Package media wraps ffmpeg and ffprobe for audio decoding and library
// inspection, and scans the media directory for files that need subtitles.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// PCMStream is a running ffmpeg decode of a media file's default audio
// track into s16le mono PCM.
type PCMStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
}

// StartPCM launches ffmpeg decoding the source into a raw PCM stream at
// the given sample rate. The caller must drain the reader and then call
// Close to reap the process.
func StartPCM(ctx context.Context, ffmpegBinary, source string, sampleRate int) (*PCMStream, error) {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary,
		"-v", "error",
		"-i", source,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-f", "s16le",
		"-",
	)

	stream := &PCMStream{cmd: cmd}
	cmd.Stderr = &stream.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	stream.stdout = stdout

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	return stream, nil
}

// Read implements io.Reader over the decoded PCM stream.
func (s *PCMStream) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

// Close reaps the ffmpeg process. When the stream was fully drained a
// nonzero exit carries the decoder's stderr; when the caller abandons the
// stream early the exit error is ignored.
func (s *PCMStream) Close() error {
	_ = s.stdout.Close()
	if err := s.cmd.Wait(); err != nil {
		detail := strings.TrimSpace(s.stderr.String())
		if detail != "" {
			return fmt.Errorf("ffmpeg: %w: %s", err, detail)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

// Abandon stops the decode without surfacing the resulting exit error.
// Used when cancellation interrupts a partially consumed stream.
func (s *PCMStream) Abandon() {
	_ = s.stdout.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
}
