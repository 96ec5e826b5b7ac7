package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestParseProbeOutput(t *testing.T) {
	output := []byte(`{
		"format": {"duration": "130.5", "tags": {"title": "Example Film"}},
		"streams": [
			{"codec_type": "video"},
			{"codec_type": "audio"},
			{"codec_type": "audio"},
			{"codec_type": "subtitle", "tags": {"language": "eng"}},
			{"codec_type": "subtitle"}
		]
	}`)

	info, err := parseProbeOutput("/media/film.mkv", output)
	if err != nil {
		t.Fatalf("parseProbeOutput: %v", err)
	}
	if info.DurationSeconds != 130.5 {
		t.Fatalf("duration = %f", info.DurationSeconds)
	}
	if info.Title != "Example Film" {
		t.Fatalf("title = %q", info.Title)
	}
	if info.AudioStreams != 2 {
		t.Fatalf("audio streams = %d", info.AudioStreams)
	}
	if len(info.SubtitleLanguages) != 2 || info.SubtitleLanguages[0] != "eng" || info.SubtitleLanguages[1] != "und" {
		t.Fatalf("subtitle languages = %v", info.SubtitleLanguages)
	}
	if !info.HasEmbeddedSubtitles() {
		t.Fatal("expected embedded subtitles")
	}
}

func TestParseProbeOutputMalformed(t *testing.T) {
	if _, err := parseProbeOutput("/x", []byte("nope")); err == nil {
		t.Fatal("expected error for malformed output")
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestScanFindsVideosAndSidecars(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "movies", "film.mkv"))
	touch(t, filepath.Join(root, "movies", "film.en.srt"))
	touch(t, filepath.Join(root, "movies", "other.mp4"))
	touch(t, filepath.Join(root, "movies", "notes.txt"))
	touch(t, filepath.Join(root, ".hidden", "skipme.mkv"))

	files, err := NewScanner(root).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 videos, got %d: %+v", len(files), files)
	}

	byName := map[string]File{}
	for _, f := range files {
		byName[filepath.Base(f.Path)] = f
	}

	film := byName["film.mkv"]
	if !film.HasSidecar() || len(film.SidecarLanguages) != 1 || film.SidecarLanguages[0] != "en" {
		t.Fatalf("unexpected film sidecars: %+v", film)
	}
	if other := byName["other.mp4"]; other.HasSidecar() {
		t.Fatalf("other.mp4 should have no sidecars: %+v", other)
	}
}

func TestScanRecognizesGeneratedSidecars(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "film.mkv"))
	touch(t, filepath.Join(root, "film.gen_en.srt"))

	files, err := NewScanner(root).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 video, got %d", len(files))
	}
	if !files[0].Generated {
		t.Fatal("expected generated sidecar to be recognized")
	}
	if len(files[0].SidecarLanguages) != 1 || files[0].SidecarLanguages[0] != "en" {
		t.Fatalf("unexpected languages: %v", files[0].SidecarLanguages)
	}
}

func TestSidecarBareStem(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "film.mkv"))
	touch(t, filepath.Join(root, "film.srt"))

	langs, generated := sidecarSubtitles(filepath.Join(root, "film.mkv"))
	if generated {
		t.Fatal("bare sidecar is not generated output")
	}
	if len(langs) != 1 || langs[0] != "und" {
		t.Fatalf("unexpected languages: %v", langs)
	}
}

func TestOutputPath(t *testing.T) {
	got := OutputPath("/media/movies/film.mkv", "en")
	want := filepath.Join("/media/movies", "film.gen_en.srt")
	if got != want {
		t.Fatalf("OutputPath = %q, want %q", got, want)
	}
	if got := OutputPath("/m/x.mkv", ""); filepath.Base(got) != "x.gen_und.srt" {
		t.Fatalf("empty language output = %q", got)
	}
}
