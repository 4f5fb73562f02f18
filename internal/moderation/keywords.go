package moderation

import (
	"sort"
	"strings"
)

const (
	// DefaultMaxKeywords bounds the ranked keyword set per submission.
	DefaultMaxKeywords = 12

	minKeywordLength = 3
)

var defaultStopwords = []string{
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can",
	"had", "her", "was", "one", "our", "out", "has", "have", "this", "that",
	"with", "from", "they", "them", "been", "were", "will", "would", "there",
	"their", "what", "when", "where", "which", "your", "about", "into",
	"than", "then", "some", "more", "very", "just", "also", "because",
	"should", "could", "always", "again", "here", "please", "really",
	"still", "only", "its", "since",
}

// KeywordExtractor reduces free text to a ranked set of salient tokens.
// It is pure: no I/O, deterministic output for the same input.
type KeywordExtractor struct {
	stopwords   map[string]struct{}
	maxKeywords int
}

// NewKeywordExtractor builds an extractor with the compiled-in stopword list
// plus any extra stopwords from configuration.
func NewKeywordExtractor(maxKeywords int, extraStopwords []string) *KeywordExtractor {
	if maxKeywords <= 0 {
		maxKeywords = DefaultMaxKeywords
	}

	stopwords := make(map[string]struct{}, len(defaultStopwords)+len(extraStopwords))
	for _, word := range defaultStopwords {
		stopwords[word] = struct{}{}
	}
	for _, word := range extraStopwords {
		word = strings.ToLower(strings.TrimSpace(word))
		if word != "" {
			stopwords[word] = struct{}{}
		}
	}

	return &KeywordExtractor{
		stopwords:   stopwords,
		maxKeywords: maxKeywords,
	}
}

// Extract returns salient tokens ordered by frequency descending, then token
// length descending, then lexicographically, truncated to the configured
// maximum. An empty result is valid (all-stopword text).
func (e *KeywordExtractor) Extract(subject, body string) []string {
	text := stripToAlphanumeric(strings.TrimSpace(subject) + " " + strings.TrimSpace(body))

	counts := make(map[string]int)
	for _, token := range strings.Fields(text) {
		if len(token) < minKeywordLength {
			continue
		}
		if _, stop := e.stopwords[token]; stop {
			continue
		}
		counts[token]++
	}
	if len(counts) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(counts))
	for token := range counts {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool {
		a, b := tokens[i], tokens[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})

	if len(tokens) > e.maxKeywords {
		tokens = tokens[:e.maxKeywords]
	}
	return tokens
}

// stripToAlphanumeric lower-cases and removes every rune outside [a-z0-9\s].
func stripToAlphanumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// normalizeWhitespace lower-cases and collapses runs of whitespace without
// stripping punctuation. Used by the screener so multi-word banned phrases
// still match across line breaks.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
