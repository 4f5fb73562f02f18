package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"workpulse.dev/pulse/internal/auth"
	"workpulse.dev/pulse/internal/cli"
	"workpulse.dev/pulse/internal/config"
	"workpulse.dev/pulse/internal/db"
	"workpulse.dev/pulse/internal/logging"
)

func runSeedAdmin(args []string) int {
	fs := flag.NewFlagSet("seed-admin", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Second, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "seed-admin does not accept positional arguments")
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

	if err := ensureDefaultManager(ctx, pool, cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed default manager: %v\n", err)
		return 1
	}

	fmt.Println("ok")
	return 0
}

// ensureDefaultManager creates the configured manager account when the
// employees table is empty. It is safe to call on every startup.
func ensureDefaultManager(ctx context.Context, pool *db.Pool, cfg *config.Config, logger zerolog.Logger) error {
	if pool == nil || cfg == nil {
		return fmt.Errorf("ensure default manager: missing dependencies")
	}

	employeeCount, err := pool.CountEmployees(ctx)
	if err != nil {
		return err
	}
	if employeeCount > 0 {
		return nil
	}

	username := auth.NormalizeUsername(cfg.DefaultAdminUser)
	password := strings.TrimSpace(cfg.DefaultAdminPassword)
	if username == "" || password == "" {
		return fmt.Errorf("default manager credentials are empty")
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash default manager password: %w", err)
	}

	employee, err := pool.CreateEmployee(ctx, username, passwordHash, auth.RoleManager)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
			return nil
		}
		return err
	}

	logger.Warn().
		Int64("employee_id", employee.EmployeeID).
		Str("username", username).
		Msg("created default manager account")

	return nil
}
