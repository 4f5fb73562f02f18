package moderation

import (
	"strings"
	"testing"
)

func TestScreen_FlagsBannedKeyword(t *testing.T) {
	t.Parallel()

	s := NewScreener(nil)
	got := s.Screen("Unsafe lighting", "I hate this hallway, it is always dark")

	if !got.Toxic {
		t.Fatalf("expected toxic verdict")
	}
	if !strings.Contains(got.Reason, "hate") {
		t.Fatalf("expected reason to name the matched keyword, got %q", got.Reason)
	}
	if !strings.HasPrefix(got.Reason, "Matched keywords: ") {
		t.Fatalf("unexpected reason format: %q", got.Reason)
	}
}

func TestScreen_MultiWordPhraseAcrossWhitespace(t *testing.T) {
	t.Parallel()

	s := NewScreener(nil)
	got := s.Screen("Management", "just shut\n   up about the budget")
	if !got.Toxic {
		t.Fatalf("expected multi-word phrase to match across collapsed whitespace")
	}
	if !strings.Contains(got.Reason, "shut up") {
		t.Fatalf("expected reason to contain the phrase, got %q", got.Reason)
	}
}

func TestScreen_CleanTextApproved(t *testing.T) {
	t.Parallel()

	s := NewScreener(nil)
	got := s.Screen("Coffee machine", "The third floor coffee machine needs descaling")
	if got.Toxic {
		t.Fatalf("did not expect toxic verdict, reason=%q", got.Reason)
	}
	if got.Reason != "" {
		t.Fatalf("expected empty reason for clean text, got %q", got.Reason)
	}
}

func TestScreen_ReasonCappedAtSixInDeclarationOrder(t *testing.T) {
	t.Parallel()

	s := NewScreener(nil)
	got := s.Screen("", "scam attack threat die hurt kill moron hate trash dumb stupid idiot")
	if !got.Toxic {
		t.Fatalf("expected toxic verdict")
	}

	listed := strings.Split(strings.TrimPrefix(got.Reason, "Matched keywords: "), ", ")
	if len(listed) != 6 {
		t.Fatalf("expected reason capped at 6 phrases, got %d: %v", len(listed), listed)
	}
	// Declaration order of the default list, not order of appearance in text.
	want := []string{"idiot", "stupid", "dumb", "trash", "hate", "moron"}
	for i, phrase := range want {
		if listed[i] != phrase {
			t.Fatalf("expected phrase %q at position %d, got %v", phrase, i, listed)
		}
	}
}

func TestScreen_Deterministic(t *testing.T) {
	t.Parallel()

	s := NewScreener(nil)
	first := s.Screen("Vending machine", "this stupid machine ate my money, what a scam")
	for i := 0; i < 10; i++ {
		again := s.Screen("Vending machine", "this stupid machine ate my money, what a scam")
		if again.Toxic != first.Toxic || again.Reason != first.Reason {
			t.Fatalf("screening not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestScreen_CustomPhraseList(t *testing.T) {
	t.Parallel()

	s := NewScreener([]string{"Layoffs ", ""})
	got := s.Screen("Rumors", "are the layoffs happening or not")
	if !got.Toxic {
		t.Fatalf("expected configured phrase to match")
	}

	if s.Screen("Rumors", "I hate the new badge readers").Toxic {
		t.Fatalf("default phrases should not apply when a custom list is set")
	}
}
