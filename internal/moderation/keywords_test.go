package moderation

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtract_NormalizesAndFilters(t *testing.T) {
	t.Parallel()

	e := NewKeywordExtractor(DefaultMaxKeywords, nil)
	got := e.Extract("Broken Elevator!", "The elevator is broken, broken AGAIN on floor-3.")

	if len(got) == 0 {
		t.Fatalf("expected keywords, got none")
	}
	if got[0] != "broken" {
		t.Fatalf("expected most frequent token first, got %q", got[0])
	}
	for _, token := range got {
		if token != strings.ToLower(token) {
			t.Fatalf("expected lower-cased tokens, got %q", token)
		}
		if strings.ContainsAny(token, "!,.-") {
			t.Fatalf("expected punctuation stripped, got %q", token)
		}
		if len(token) < 3 {
			t.Fatalf("expected short tokens discarded, got %q", token)
		}
	}
}

func TestExtract_RankingFrequencyThenLengthThenLexical(t *testing.T) {
	t.Parallel()

	e := NewKeywordExtractor(DefaultMaxKeywords, nil)
	// "printer" twice; "cartridge" and "hallway" once each with different
	// lengths; "desk" and "door" tie on everything except spelling.
	got := e.Extract("printer", "printer cartridge hallway desk door")

	want := []string{"printer", "cartridge", "hallway", "desk", "door"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected ranking: got %v want %v", got, want)
	}
}

func TestExtract_TruncatesToMax(t *testing.T) {
	t.Parallel()

	e := NewKeywordExtractor(3, nil)
	got := e.Extract("", "alpha bravo charlie delta echo foxtrot")
	if len(got) != 3 {
		t.Fatalf("expected 3 keywords, got %d: %v", len(got), got)
	}
}

func TestExtract_AllStopwordsYieldsEmpty(t *testing.T) {
	t.Parallel()

	e := NewKeywordExtractor(DefaultMaxKeywords, nil)
	if got := e.Extract("the and", "for are but not you all"); len(got) != 0 {
		t.Fatalf("expected empty extraction, got %v", got)
	}
}

func TestExtract_ExtraStopwordsInjected(t *testing.T) {
	t.Parallel()

	e := NewKeywordExtractor(DefaultMaxKeywords, []string{" Cafeteria "})
	got := e.Extract("cafeteria", "cafeteria noise")
	if !reflect.DeepEqual(got, []string{"noise"}) {
		t.Fatalf("expected configured stopword filtered, got %v", got)
	}
}

func TestExtract_ContractedPronounsFiltered(t *testing.T) {
	t.Parallel()

	// Punctuation stripping turns "it's" into "its" before the stopword
	// check, so the contraction never survives into the keyword list.
	e := NewKeywordExtractor(DefaultMaxKeywords, nil)
	got := e.Extract("it's broken", "it's broken again")
	if !reflect.DeepEqual(got, []string{"broken", "again"}) {
		t.Fatalf("expected contraction filtered, got %v", got)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	t.Parallel()

	e := NewKeywordExtractor(DefaultMaxKeywords, nil)
	first := e.Extract("Parking lot lighting", "the parking lot is dark and unsafe at night")
	for i := 0; i < 10; i++ {
		again := e.Extract("Parking lot lighting", "the parking lot is dark and unsafe at night")
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("extraction not deterministic: %v vs %v", first, again)
		}
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	t.Parallel()

	if got := normalizeWhitespace("  Shut\n\tUP  please "); got != "shut up please" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}
