package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// UndeterminedLanguage is stored when detection is inconclusive.
const UndeterminedLanguage = "und"

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// DetectSubmissionLanguage returns the ISO 639-1 code for the dominant
// language of a feedback submission, or "und" when the text is too short
// or ambiguous to classify.
func DetectSubmissionLanguage(subject, body string) string {
	sample := strings.TrimSpace(strings.TrimSpace(subject) + " " + strings.TrimSpace(body))
	if sample == "" {
		return UndeterminedLanguage
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < 6 {
		return UndeterminedLanguage
	}

	language, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return UndeterminedLanguage
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return UndeterminedLanguage
	}
	return code
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			WithPreloadedLanguageModels().
			Build()
	})
	return detector
}
