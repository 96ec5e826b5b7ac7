// Package resume persists per-job transcription progress so interrupted
// jobs restart from the last committed window instead of the beginning.
//
// Each job owns a directory containing a manifest (input identity, window
// parameters, highest committed window) and an append-only journal with one
// committed segment per line. The journal is written and synced before the
// manifest advances, so after a crash the journal is ground truth and the
// manifest may lag by at most one window.
package resume

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"subgen/internal/services"
	"subgen/internal/subtitles"
)

const (
	manifestName = "manifest.json"
	journalName  = "journal.jsonl"
)

// Manifest records what a job was started with and how far it has committed.
type Manifest struct {
	JobID          string    `json:"job_id"`
	SourcePath     string    `json:"source_path"`
	SourceSize     int64     `json:"source_size"`
	SourceModTime  time.Time `json:"source_mod_time"`
	SampleRate     int       `json:"sample_rate"`
	ChunkSeconds   int       `json:"chunk_seconds"`
	OverlapSeconds int       `json:"overlap_seconds"`
	VADThreshold   float64   `json:"vad_threshold"`
	Language       string    `json:"language"`
	LastWindow     int       `json:"last_window"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Compatible reports whether a stored manifest still matches the input file
// and window parameters of a new run. A mismatch invalidates resume state.
func (m Manifest) Compatible(other Manifest) bool {
	return m.SourcePath == other.SourcePath &&
		m.SourceSize == other.SourceSize &&
		m.SourceModTime.Equal(other.SourceModTime) &&
		m.SampleRate == other.SampleRate &&
		m.ChunkSeconds == other.ChunkSeconds &&
		m.OverlapSeconds == other.OverlapSeconds &&
		m.Language == other.Language
}

// Store manages per-job resume directories under a common root.
type Store struct {
	root string
}

// NewStore creates a store rooted at the given directory, typically the
// daemon's <data_dir>/jobs.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// JobState is the open resume state for one job.
type JobState struct {
	manifest Manifest
	dir      string
	journal  *os.File
	segments []subtitles.Segment
}

func (s *Store) jobDir(jobID string) string {
	return filepath.Join(s.root, jobID)
}

// Exists reports whether resume state is present for a job.
func (s *Store) Exists(jobID string) bool {
	_, err := os.Stat(filepath.Join(s.jobDir(jobID), manifestName))
	return err == nil
}

// Create initializes fresh resume state for a job, discarding any previous
// state. The manifest starts with no committed windows.
func (s *Store) Create(manifest Manifest) (*JobState, error) {
	dir := s.jobDir(manifest.JobID)
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("clear resume dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create resume dir: %w", err)
	}

	now := time.Now().UTC()
	manifest.LastWindow = -1
	manifest.CreatedAt = now
	manifest.UpdatedAt = now

	if err := writeManifest(dir, manifest); err != nil {
		return nil, err
	}

	journal, err := openJournal(dir)
	if err != nil {
		return nil, err
	}
	return &JobState{manifest: manifest, dir: dir, journal: journal}, nil
}

// Load opens existing resume state. Returns (nil, nil) when no state exists.
// Unreadable or internally inconsistent state returns ErrResumeCorrupt.
func (s *Store) Load(jobID string) (*JobState, error) {
	dir := s.jobDir(jobID)
	manifestPath := filepath.Join(dir, manifestName)

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if journalHasEntries(dir) {
				return nil, services.Wrap(services.ErrResumeCorrupt, "resume", "load", "journal present without manifest", nil)
			}
			return nil, nil
		}
		return nil, services.Wrap(services.ErrResumeCorrupt, "resume", "load", "read manifest", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, services.Wrap(services.ErrResumeCorrupt, "resume", "load", "parse manifest", err)
	}

	segments, err := readJournal(dir)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 && manifest.LastWindow >= 0 {
		return nil, services.Wrap(services.ErrResumeCorrupt, "resume", "load", "manifest claims committed windows but journal is empty", nil)
	}

	journal, err := openJournal(dir)
	if err != nil {
		return nil, err
	}
	return &JobState{manifest: manifest, dir: dir, journal: journal, segments: segments}, nil
}

// Discard removes all resume state for a job.
func (s *Store) Discard(jobID string) error {
	if err := os.RemoveAll(s.jobDir(jobID)); err != nil {
		return fmt.Errorf("discard resume state: %w", err)
	}
	return nil
}

// Manifest returns a copy of the current manifest.
func (j *JobState) Manifest() Manifest {
	return j.manifest
}

// Segments returns the committed segments replayed from the journal.
func (j *JobState) Segments() []subtitles.Segment {
	out := make([]subtitles.Segment, len(j.segments))
	copy(out, j.segments)
	return out
}

// LastWindow returns the highest committed window index, or -1 when nothing
// has committed. The journal wins over the manifest when they disagree,
// which happens when a crash lands between the journal sync and the
// manifest update.
func (j *JobState) LastWindow() int {
	last := j.manifest.LastWindow
	for _, seg := range j.segments {
		if seg.SourceWindow > last {
			last = seg.SourceWindow
		}
	}
	return last
}

// CommitWindow durably records one window's accepted segments and then
// advances the manifest. Windows with no accepted segments still advance
// the manifest so resume skips them.
func (j *JobState) CommitWindow(windowIndex int, segments []subtitles.Segment) error {
	for _, seg := range segments {
		line, err := json.Marshal(seg)
		if err != nil {
			return fmt.Errorf("encode journal entry: %w", err)
		}
		line = append(line, '\n')
		if _, err := j.journal.Write(line); err != nil {
			return fmt.Errorf("append journal: %w", err)
		}
	}
	if len(segments) > 0 {
		if err := j.journal.Sync(); err != nil {
			return fmt.Errorf("sync journal: %w", err)
		}
	}

	j.manifest.LastWindow = windowIndex
	j.manifest.UpdatedAt = time.Now().UTC()
	if err := writeManifest(j.dir, j.manifest); err != nil {
		return err
	}
	j.segments = append(j.segments, segments...)
	return nil
}

// Close releases the journal handle.
func (j *JobState) Close() error {
	if j == nil || j.journal == nil {
		return nil
	}
	err := j.journal.Close()
	j.journal = nil
	return err
}

func writeManifest(dir string, manifest Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	tmp := filepath.Join(dir, manifestName+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, manifestName)); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

func openJournal(dir string) (*os.File, error) {
	journal, err := os.OpenFile(filepath.Join(dir, journalName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return journal, nil
}

func journalHasEntries(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, journalName))
	return err == nil && info.Size() > 0
}

func readJournal(dir string) ([]subtitles.Segment, error) {
	file, err := os.Open(filepath.Join(dir, journalName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrResumeCorrupt, "resume", "load", "open journal", err)
	}
	defer file.Close()

	var segments []subtitles.Segment
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var seg subtitles.Segment
		if err := json.Unmarshal(line, &seg); err != nil {
			return nil, services.Wrap(services.ErrResumeCorrupt, "resume", "load", "parse journal entry", err)
		}
		segments = append(segments, seg)
	}
	if err := scanner.Err(); err != nil {
		return nil, services.Wrap(services.ErrResumeCorrupt, "resume", "load", "read journal", err)
	}
	return segments, nil
}
