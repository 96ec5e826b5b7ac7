package media

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"subgen/internal/language"
)

// videoExtensions lists the container types considered for subtitling.
var videoExtensions = map[string]struct{}{
	".mkv":  {},
	".mp4":  {},
	".m4v":  {},
	".avi":  {},
	".mov":  {},
	".webm": {},
	".ts":   {},
}

// File is one library entry found during a scan.
type File struct {
	Path             string
	SidecarLanguages []string
	Generated        bool
}

// HasSidecar reports whether any sidecar subtitle sits next to the file.
func (f File) HasSidecar() bool {
	return len(f.SidecarLanguages) > 0
}

// Scanner walks the media library for video files and their sidecar
// subtitles. Embedded subtitle detection happens separately via Probe
// because it requires running ffprobe per file.
type Scanner struct {
	root string
}

// NewScanner creates a scanner rooted at the media directory.
func NewScanner(root string) *Scanner {
	return &Scanner{root: root}
}

// Scan walks the library and returns every video file with its sidecar
// subtitle languages. Hidden directories are skipped.
func (s *Scanner) Scan(ctx context.Context) ([]File, error) {
	var files []File
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		name := d.Name()
		if d.IsDir() {
			if strings.HasPrefix(name, ".") && path != s.root {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := videoExtensions[ext]; !ok {
			return nil
		}
		file := File{Path: path}
		file.SidecarLanguages, file.Generated = sidecarSubtitles(path)
		files = append(files, file)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// sidecarSubtitles finds .srt files next to a video that share its stem.
// Recognized forms: <stem>.srt, <stem>.<lang>.srt, and the generated
// <stem>.gen_<lang>.srt. The second return reports whether any sidecar
// was produced by a previous subgen run.
func sidecarSubtitles(videoPath string) ([]string, bool) {
	dir := filepath.Dir(videoPath)
	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, false
	}

	var langs []string
	generated := false
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ".srt") {
			continue
		}
		base := strings.TrimSuffix(name, filepath.Ext(name))
		if base == stem {
			langs = append(langs, "und")
			continue
		}
		if !strings.HasPrefix(base, stem+".") {
			continue
		}
		tag := base[len(stem)+1:]
		if rest, ok := strings.CutPrefix(tag, "gen_"); ok {
			generated = true
			tag = rest
		}
		if lang := language.ToISO2(tag); lang != "" {
			langs = append(langs, lang)
		} else {
			langs = append(langs, "und")
		}
	}
	return language.NormalizeList(langs), generated
}

// OutputPath names the generated subtitle file for a source and language:
// <stem>.gen_<lang>.srt next to the source.
func OutputPath(sourcePath, lang string) string {
	dir := filepath.Dir(sourcePath)
	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	if lang == "" {
		lang = "und"
	}
	return filepath.Join(dir, stem+".gen_"+lang+".srt")
}
