package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"workpulse.dev/pulse/internal/cli"
	"workpulse.dev/pulse/internal/moderation"
)

// runScreen is an offline command: it never touches the database, so it reads
// the phrase list from the flag or environment instead of the full config.
func runScreen(args []string) int {
	fs := flag.NewFlagSet("screen", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	subject := fs.String("subject", "", "Submission subject")
	body := fs.String("body", "", "Submission body")
	phrases := fs.String("phrases", "", "Comma-separated banned phrases (defaults to the built-in list)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if strings.TrimSpace(*subject) == "" && strings.TrimSpace(*body) == "" {
		fmt.Fprintln(os.Stderr, "--subject or --body is required")
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	phraseList := splitPhraseList(*phrases)
	if len(phraseList) == 0 {
		phraseList = splitPhraseList(os.Getenv("PULSE_BANNED_PHRASES"))
	}

	screener := moderation.NewScreener(phraseList)
	result := screener.Screen(*subject, *body)

	if err := printJSON(result); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}
	if result.Toxic {
		return 3
	}
	return 0
}

func splitPhraseList(raw string) []string {
	parts := strings.Split(raw, ",")
	phrases := make([]string, 0, len(parts))
	for _, part := range parts {
		if phrase := strings.TrimSpace(part); phrase != "" {
			phrases = append(phrases, phrase)
		}
	}
	return phrases
}
