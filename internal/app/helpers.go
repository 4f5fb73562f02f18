package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"workpulse.dev/pulse/internal/cli"
	"workpulse.dev/pulse/internal/config"
	"workpulse.dev/pulse/internal/db"
	"workpulse.dev/pulse/internal/moderation"
)

func connectPool(timeout time.Duration, envLoader *cli.EnvLoader) (context.Context, context.CancelFunc, *config.Config, *db.Pool, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		cancel()
		return nil, nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return ctx, cancel, cfg, pool, nil
}

func moderationOptions(cfg *config.Config) moderation.Options {
	return moderation.Options{
		WindowDays:     cfg.ScanWindowDays,
		CandidateLimit: cfg.ScanCandidateLimit,
		MaxKeywords:    cfg.MaxKeywords,
		BannedPhrases:  cfg.BannedPhrasesList(),
		ExtraStopwords: cfg.ExtraStopwordsList(),
	}
}

func loadJSONInput(inline, filePath, label string) (json.RawMessage, error) {
	raw := strings.TrimSpace(inline)
	if path := strings.TrimSpace(filePath); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s file: %w", label, err)
		}
		raw = strings.TrimSpace(string(data))
	}
	if raw == "" {
		return nil, fmt.Errorf("%s is required", label)
	}
	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("%s is not valid JSON", label)
	}
	return json.RawMessage(raw), nil
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
