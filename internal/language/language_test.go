package language_test

import (
	"testing"

	"subgen/internal/language"
)

func TestToISO2(t *testing.T) {
	cases := map[string]string{
		"eng":      "en",
		"fre":      "fr",
		"fra":      "fr",
		"japanese": "ja",
		"EN":       "en",
		"xx":       "xx",
		"zzz":      "",
		"":         "",
	}
	for input, want := range cases {
		if got := language.ToISO2(input); got != want {
			t.Errorf("ToISO2(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestToISO3(t *testing.T) {
	cases := map[string]string{
		"en":  "eng",
		"fr":  "fra",
		"ger": "deu",
		"qqq": "qqq",
		"xx":  "und",
		"":    "und",
	}
	for input, want := range cases {
		if got := language.ToISO3(input); got != want {
			t.Errorf("ToISO3(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := language.DisplayName("ja"); got != "Japanese" {
		t.Fatalf("DisplayName(ja) = %q", got)
	}
	if got := language.DisplayName("eng"); got != "English" {
		t.Fatalf("DisplayName(eng) = %q", got)
	}
	if got := language.DisplayName(""); got != "Unknown" {
		t.Fatalf("DisplayName(empty) = %q", got)
	}
}

func TestExtractFromTags(t *testing.T) {
	tags := map[string]string{"LANGUAGE": " ENG  "}
	if got := language.ExtractFromTags(tags); got != "eng" {
		t.Fatalf("ExtractFromTags = %q", got)
	}
	if got := language.ExtractFromTags(nil); got != "" {
		t.Fatalf("expected empty for nil tags, got %q", got)
	}
}

func TestNormalizeList(t *testing.T) {
	got := language.NormalizeList([]string{"ENG", "en", "fre", "", "ja"})
	want := []string{"en", "fr", "ja"}
	if len(got) != len(want) {
		t.Fatalf("NormalizeList = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("NormalizeList = %v, want %v", got, want)
		}
	}
}
