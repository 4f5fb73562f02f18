package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"workpulse.dev/pulse/internal/auth"
	"workpulse.dev/pulse/internal/cli"
)

func runCreateUser(args []string) int {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Second, "Command timeout")
	username := fs.String("username", "", "Account username")
	password := fs.String("password", "", "Account password")
	role := fs.String("role", auth.RoleEmployee, "Account role: employee or manager")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "create-user does not accept positional arguments")
		return 2
	}

	name := auth.NormalizeUsername(*username)
	pass := strings.TrimSpace(*password)
	if name == "" || pass == "" {
		fmt.Fprintln(os.Stderr, "--username and --password are required")
		return 2
	}
	accountRole := strings.ToLower(strings.TrimSpace(*role))
	if !auth.ValidRole(accountRole) {
		fmt.Fprintln(os.Stderr, "--role must be employee or manager")
		return 2
	}

	passwordHash, err := auth.HashPassword(pass)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
		return 1
	}

	ctx, cancel, _, pool, err := connectPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	employee, err := pool.CreateEmployee(ctx, name, passwordHash, accountRole)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create account: %v\n", err)
		return 1
	}

	if err := printJSON(employee); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		return 1
	}
	return 0
}
