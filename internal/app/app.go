package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "health":
		return runHealth(args[1:])
	case "screen":
		return runScreen(args[1:])
	case "submit":
		return runSubmit(args[1:])
	case "rescan":
		return runRescan(args[1:])
	case "merge":
		return runMerge(args[1:])
	case "seed-admin":
		return runSeedAdmin(args[1:])
	case "create-user":
		return runCreateUser(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "pulse CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  pulse <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health      Verify database connectivity")
	fmt.Fprintln(os.Stderr, "  screen      Run the toxicity screener over a subject and body")
	fmt.Fprintln(os.Stderr, "  submit      Ingest one feedback payload, screen it and scan for duplicates")
	fmt.Fprintln(os.Stderr, "  rescan      Re-scan recent submissions for missed duplicate pairs")
	fmt.Fprintln(os.Stderr, "  merge       Consolidate a duplicate submission into its master")
	fmt.Fprintln(os.Stderr, "  seed-admin  Create the default manager account when no accounts exist")
	fmt.Fprintln(os.Stderr, "  create-user Create an employee or manager account")
	fmt.Fprintln(os.Stderr, "  serve       Start the Echo API server")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"pulse <command> -h\" for command-specific flags.")
}
