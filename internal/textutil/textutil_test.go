package textutil_test

import (
	"testing"

	"subgen/internal/textutil"
)

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"A/B: C*D":      "A-B- C-D",
		"  movie?.mkv ": "movie.mkv",
		"":              "",
	}
	for input, want := range cases {
		if got := textutil.SanitizeFileName(input); got != want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	cases := map[string]string{
		"  Hello   THERE ": "hello there",
		"one\ttwo\nthree":  "one two three",
		"":                 "",
	}
	for input, want := range cases {
		if got := textutil.NormalizeText(input); got != want {
			t.Errorf("NormalizeText(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if got := textutil.Similarity("Hello there", "hello   there"); got != 1 {
		t.Fatalf("expected identical phrases to score 1, got %f", got)
	}
	if got := textutil.Similarity("hello there", "goodbye now"); got >= 0.9 {
		t.Fatalf("unrelated phrases scored too high: %f", got)
	}
	if got := textutil.Similarity("hello there friend", "hello there friends"); got < 0.9 {
		t.Fatalf("near-identical phrases scored too low: %f", got)
	}
}
