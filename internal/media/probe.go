package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"subgen/internal/language"
)

// Info describes a probed media file.
type Info struct {
	Path              string
	Title             string
	DurationSeconds   float64
	AudioStreams      int
	SubtitleLanguages []string
}

// HasEmbeddedSubtitles reports whether the container carries subtitle streams.
func (i Info) HasEmbeddedSubtitles() bool {
	return len(i.SubtitleLanguages) > 0
}

type ffprobeOutput struct {
	Format struct {
		Duration string            `json:"duration"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
	Streams []struct {
		CodecType string            `json:"codec_type"`
		Tags      map[string]string `json:"tags"`
	} `json:"streams"`
}

// Probe inspects a media file with ffprobe.
func Probe(ctx context.Context, ffprobeBinary, path string) (Info, error) {
	if ffprobeBinary == "" {
		ffprobeBinary = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, ffprobeBinary,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbeOutput(path, output)
}

func parseProbeOutput(path string, output []byte) (Info, error) {
	var probed ffprobeOutput
	if err := json.Unmarshal(output, &probed); err != nil {
		return Info{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := Info{Path: path}
	if probed.Format.Duration != "" {
		if seconds, err := strconv.ParseFloat(probed.Format.Duration, 64); err == nil {
			info.DurationSeconds = seconds
		}
	}
	if title, ok := probed.Format.Tags["title"]; ok {
		info.Title = strings.TrimSpace(title)
	}

	for _, stream := range probed.Streams {
		switch stream.CodecType {
		case "audio":
			info.AudioStreams++
		case "subtitle":
			lang := language.ExtractFromTags(stream.Tags)
			if lang == "" {
				lang = "und"
			}
			info.SubtitleLanguages = append(info.SubtitleLanguages, language.ToISO3(lang))
		}
	}
	return info, nil
}

// ExtractEmbeddedSubtitle writes the container's first subtitle stream to
// an SRT file.
func ExtractEmbeddedSubtitle(ctx context.Context, ffmpegBinary, source, dest string) error {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary,
		"-v", "error",
		"-y",
		"-i", source,
		"-map", "0:s:0",
		dest,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("extract subtitle: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
