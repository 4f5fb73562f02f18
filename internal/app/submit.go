package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"workpulse.dev/pulse/internal/cli"
	"workpulse.dev/pulse/internal/intake"
	"workpulse.dev/pulse/internal/logging"
	"workpulse.dev/pulse/internal/moderation"
	payloadschema "workpulse.dev/pulse/schema"
)

func runSubmit(args []string) int {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 20*time.Second, "Command timeout")
	payload := fs.String("payload", "", "Feedback payload JSON (v1 schema)")
	payloadFile := fs.String("payload-file", "", "Path to payload JSON file (overrides --payload)")
	skipScan := fs.Bool("skip-scan", false, "Skip the duplicate scan after intake")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "submit does not accept positional arguments")
		return 2
	}

	payloadJSON, err := loadJSONInput(*payload, *payloadFile, "payload")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid payload: %v\n", err)
		return 2
	}

	item, err := payloadschema.ValidateFeedbackItemPayload(payloadJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid payload: %v\n", err)
		return 2
	}

	ctx, cancel, cfg, pool, err := connectPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	mod := moderation.NewService(pool, logger, moderationOptions(cfg))
	ingest := intake.NewService(pool, logger, mod)

	result, err := ingest.SubmitOne(ctx, intake.Request{
		Department: item.Department,
		Category:   item.Category,
		Subject:    item.Subject,
		Body:       item.Body,
	})
	if err != nil {
		if errors.Is(err, moderation.ErrInvalidInput) {
			fmt.Fprintf(os.Stderr, "Invalid payload: %v\n", err)
			return 2
		}
		fmt.Fprintf(os.Stderr, "Failed to store submission: %v\n", err)
		return 1
	}

	pairsAdded := 0
	if !*skipScan {
		pairsAdded, err = mod.ScanSubmission(ctx, result.Submission)
		if err != nil {
			// Intake already committed; a scan failure is reported but does
			// not undo the stored submission.
			fmt.Fprintf(os.Stderr, "Warning: duplicate scan failed: %v\n", err)
		}
	}

	output := struct {
		intake.Result
		PairsAdded int `json:"pairs_added"`
	}{Result: result, PairsAdded: pairsAdded}

	if err := printJSON(output); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}
	return 0
}
