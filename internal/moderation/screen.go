package moderation

import "strings"

const maxReportedMatches = 6

var defaultBannedPhrases = []string{
	"idiot", "stupid", "dumb", "trash", "hate", "shut up", "moron",
	"kill", "hurt", "die", "threat", "attack",
	"steal", "corrupt", "scam",
}

// DefaultBannedPhrases returns a copy of the compiled-in phrase list.
func DefaultBannedPhrases() []string {
	phrases := make([]string, len(defaultBannedPhrases))
	copy(phrases, defaultBannedPhrases)
	return phrases
}

// ScreenResult is the outcome of toxicity screening.
type ScreenResult struct {
	Toxic   bool     `json:"toxic"`
	Reason  string   `json:"reason,omitempty"`
	Matches []string `json:"matches,omitempty"`
}

// Screener tests normalized text against an immutable banned-phrase list.
// Matching is plain substring containment, so punctuation adjacent to a
// phrase never hides it; that keyword-only precision tradeoff is accepted.
type Screener struct {
	phrases []string
}

// NewScreener builds a screener over the given phrases, falling back to the
// default list when none are configured. The list is copied and normalized
// once; the screener never mutates it afterwards.
func NewScreener(phrases []string) *Screener {
	if len(phrases) == 0 {
		phrases = defaultBannedPhrases
	}

	normalized := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		phrase = normalizeWhitespace(phrase)
		if phrase != "" {
			normalized = append(normalized, phrase)
		}
	}

	return &Screener{phrases: normalized}
}

// Screen reports whether the submission text matches any banned phrase.
// Matches are reported in list-declaration order, capped at six in the
// human-readable reason.
func (s *Screener) Screen(subject, body string) ScreenResult {
	text := normalizeWhitespace(subject) + " " + normalizeWhitespace(body)

	var matches []string
	for _, phrase := range s.phrases {
		if strings.Contains(text, phrase) {
			matches = append(matches, phrase)
		}
	}
	if len(matches) == 0 {
		return ScreenResult{}
	}

	reported := matches
	if len(reported) > maxReportedMatches {
		reported = reported[:maxReportedMatches]
	}

	return ScreenResult{
		Toxic:   true,
		Reason:  "Matched keywords: " + strings.Join(reported, ", "),
		Matches: matches,
	}
}

// Phrases returns a copy of the active banned-phrase list for display.
func (s *Screener) Phrases() []string {
	phrases := make([]string, len(s.phrases))
	copy(phrases, s.phrases)
	return phrases
}
