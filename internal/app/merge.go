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

func runMerge(args []string) int {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 20*time.Second, "Command timeout")
	masterID := fs.Int64("master", 0, "Master submission id")
	duplicateID := fs.Int64("duplicate", 0, "Duplicate submission id")
	pairID := fs.Int64("pair", 0, "Duplicate pair id to resolve (optional)")
	actor := fs.String("actor", "cli", "Actor recorded in the merge audit trail")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "merge does not accept positional arguments")
		return 2
	}

	req := moderation.MergeRequest{
		MasterID:    *masterID,
		DuplicateID: *duplicateID,
		Actor:       *actor,
	}
	if *pairID > 0 {
		req.PairID = pairID
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

	result, err := mod.Merge(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, moderation.ErrInvalidInput):
			fmt.Fprintf(os.Stderr, "Invalid merge request: %v\n", err)
			return 2
		case errors.Is(err, moderation.ErrNotFound):
			fmt.Fprintf(os.Stderr, "Merge failed: %v\n", err)
			return 1
		default:
			fmt.Fprintf(os.Stderr, "Merge failed: %v\n", err)
			return 1
		}
	}

	if err := printJSON(result); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}
	return 0
}
