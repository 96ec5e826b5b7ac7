package subtitles

import (
	"sort"
	"strings"

	"subgen/internal/textutil"
)

// orderEpsilon is the minimum gap inserted when a segment would otherwise
// start before the previous one.
const orderEpsilon = 0.001

// defaultSimilarity is the Jaro-Winkler score above which two normalized
// phrases in the overlap zone are treated as the same utterance.
const defaultSimilarity = 0.90

// Reconciler merges window-relative segments into a single ordered track.
// Segments from the overlapping head of each window are deduplicated against
// the committed tail by normalized text rather than by position, because the
// previous window may have been skipped entirely by speech gating.
type Reconciler struct {
	overlapSeconds float64
	similarity     float64

	committed []Segment
	lastStart float64
}

// NewReconciler creates a reconciler for the given window overlap.
func NewReconciler(overlapSeconds float64) *Reconciler {
	return &Reconciler{
		overlapSeconds: overlapSeconds,
		similarity:     defaultSimilarity,
	}
}

// SetSimilarityThreshold overrides the near-duplicate score cutoff.
func (r *Reconciler) SetSimilarityThreshold(threshold float64) {
	if threshold > 0 && threshold <= 1 {
		r.similarity = threshold
	}
}

// Seed primes the reconciler with segments already committed in a previous
// run so resumed windows deduplicate against them.
func (r *Reconciler) Seed(segments []Segment) {
	if len(segments) == 0 {
		return
	}
	sorted := make([]Segment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	r.committed = append(r.committed, sorted...)
	r.lastStart = sorted[len(sorted)-1].Start
}

// Merge converts one window's service-relative segments into media time,
// drops duplicates from the overlap zone, and enforces monotonic ordering.
// The accepted segments are returned in commit order.
func (r *Reconciler) Merge(windowIndex int, windowStart float64, segments []Segment) []Segment {
	accepted := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		candidate := Segment{
			Start:        windowStart + seg.Start,
			End:          windowStart + seg.End,
			Text:         text,
			SourceWindow: windowIndex,
		}
		if candidate.End < candidate.Start {
			candidate.End = candidate.Start
		}
		if r.isDuplicate(candidate) {
			continue
		}
		if len(r.committed) > 0 && candidate.Start < r.lastStart {
			candidate.Start = r.lastStart + orderEpsilon
			if candidate.End < candidate.Start {
				candidate.End = candidate.Start
			}
		}
		r.committed = append(r.committed, candidate)
		r.lastStart = candidate.Start
		accepted = append(accepted, candidate)
	}
	return accepted
}

// Segments returns the full committed track in order.
func (r *Reconciler) Segments() []Segment {
	out := make([]Segment, len(r.committed))
	copy(out, r.committed)
	return out
}

// isDuplicate reports whether a candidate repeats a committed segment from
// the overlap zone. Only committed segments whose end reaches back into the
// candidate's overlap window are compared.
func (r *Reconciler) isDuplicate(candidate Segment) bool {
	cutoff := candidate.Start - r.overlapSeconds
	norm := textutil.NormalizeText(candidate.Text)
	for i := len(r.committed) - 1; i >= 0; i-- {
		prev := r.committed[i]
		if prev.End < cutoff {
			break
		}
		if textutil.NormalizeText(prev.Text) == norm {
			return true
		}
		if textutil.Similarity(prev.Text, candidate.Text) >= r.similarity {
			return true
		}
	}
	return false
}
