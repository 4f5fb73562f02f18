package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"workpulse.dev/pulse/internal/cli"
	"workpulse.dev/pulse/internal/logging"
	"workpulse.dev/pulse/internal/moderation"
)

func runRescan(args []string) int {
	fs := flag.NewFlagSet("rescan", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 60*time.Second, "Command timeout")
	limit := fs.Int("limit", 50, "How many recent submissions to re-scan (1-200)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "rescan does not accept positional arguments")
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

	result, err := mod.Rescan(ctx, *limit)
	if err != nil {
		if errors.Is(err, moderation.ErrInvalidInput) {
			fmt.Fprintf(os.Stderr, "Invalid limit: %v\n", err)
			return 2
		}
		fmt.Fprintf(os.Stderr, "Rescan failed: %v\n", err)
		return 1
	}

	if err := printJSON(result); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}
	return 0
}
