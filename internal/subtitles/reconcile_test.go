package subtitles_test

import (
	"testing"

	"subgen/internal/subtitles"
)

func TestMergeOffsetsByWindowStart(t *testing.T) {
	r := subtitles.NewReconciler(5)

	accepted := r.Merge(1, 25, []subtitles.Segment{
		{Start: 1, End: 3, Text: "Hello there."},
	})
	if len(accepted) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(accepted))
	}
	if accepted[0].Start != 26 || accepted[0].End != 28 {
		t.Fatalf("segment not offset to media time: %+v", accepted[0])
	}
	if accepted[0].SourceWindow != 1 {
		t.Fatalf("source window not recorded: %+v", accepted[0])
	}
}

func TestMergeDropsOverlapDuplicates(t *testing.T) {
	r := subtitles.NewReconciler(5)

	first := r.Merge(0, 0, []subtitles.Segment{
		{Start: 27, End: 29.5, Text: "Hello there."},
	})
	if len(first) != 1 {
		t.Fatalf("expected first window segment accepted, got %d", len(first))
	}

	// Window 1 starts at 25s; the same utterance reappears in its overlap head.
	second := r.Merge(1, 25, []subtitles.Segment{
		{Start: 2.1, End: 4.4, Text: "hello  THERE"},
		{Start: 6, End: 8, Text: "Fresh material."},
	})
	if len(second) != 1 {
		t.Fatalf("expected duplicate dropped, got %d segments", len(second))
	}
	if second[0].Text != "Fresh material." {
		t.Fatalf("wrong segment survived: %+v", second[0])
	}
}

func TestMergeDropsNearDuplicates(t *testing.T) {
	r := subtitles.NewReconciler(5)

	r.Merge(0, 0, []subtitles.Segment{
		{Start: 27, End: 29.5, Text: "I think we should go now"},
	})
	second := r.Merge(1, 25, []subtitles.Segment{
		{Start: 2.2, End: 4.5, Text: "I think we should go now."},
	})
	if len(second) != 0 {
		t.Fatalf("expected punctuation variant dropped, got %+v", second)
	}
}

func TestMergeKeepsRepeatedPhraseOutsideOverlap(t *testing.T) {
	r := subtitles.NewReconciler(5)

	r.Merge(0, 0, []subtitles.Segment{
		{Start: 1, End: 2, Text: "Okay."},
	})
	// Same phrase much later in the media: a legitimate repeat, not overlap bleed.
	accepted := r.Merge(2, 50, []subtitles.Segment{
		{Start: 10, End: 11, Text: "Okay."},
	})
	if len(accepted) != 1 {
		t.Fatal("expected repeated phrase outside overlap zone to be kept")
	}
}

func TestMergeClampsOutOfOrderStarts(t *testing.T) {
	r := subtitles.NewReconciler(5)

	r.Merge(0, 0, []subtitles.Segment{
		{Start: 28, End: 29, Text: "Later line."},
	})
	accepted := r.Merge(1, 25, []subtitles.Segment{
		{Start: 1, End: 2, Text: "Drifted earlier."},
	})
	if len(accepted) != 1 {
		t.Fatalf("expected segment accepted, got %d", len(accepted))
	}
	if accepted[0].Start <= 28 {
		t.Fatalf("start not clamped past previous segment: %+v", accepted[0])
	}
	if accepted[0].End < accepted[0].Start {
		t.Fatalf("end precedes start after clamp: %+v", accepted[0])
	}
}

func TestMergeSkipsEmptyText(t *testing.T) {
	r := subtitles.NewReconciler(5)
	accepted := r.Merge(0, 0, []subtitles.Segment{
		{Start: 0, End: 1, Text: "   "},
		{Start: 1, End: 2, Text: "Real."},
	})
	if len(accepted) != 1 || accepted[0].Text != "Real." {
		t.Fatalf("unexpected accepted segments: %+v", accepted)
	}
}

func TestSeedPrimesDeduplication(t *testing.T) {
	r := subtitles.NewReconciler(5)
	r.Seed([]subtitles.Segment{
		{Start: 27, End: 29.5, Text: "Hello there.", SourceWindow: 0},
	})

	accepted := r.Merge(1, 25, []subtitles.Segment{
		{Start: 2.1, End: 4.4, Text: "Hello there."},
	})
	if len(accepted) != 0 {
		t.Fatalf("expected seeded duplicate dropped, got %+v", accepted)
	}
	if total := len(r.Segments()); total != 1 {
		t.Fatalf("expected 1 committed segment, got %d", total)
	}
}

func TestMergeIsIdempotentPerWindow(t *testing.T) {
	window := []subtitles.Segment{
		{Start: 1, End: 3, Text: "Only once."},
	}

	r := subtitles.NewReconciler(5)
	first := r.Merge(0, 0, window)
	again := r.Merge(0, 0, window)
	if len(first) != 1 || len(again) != 0 {
		t.Fatalf("replayed window should commit nothing: first=%d again=%d", len(first), len(again))
	}
}
