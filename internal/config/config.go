package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns  int32  `envconfig:"PULSE_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"PULSE_DB_MAX_CONNS" default:"8"`

	DefaultAdminUser     string `envconfig:"DEFAULT_ADMIN_USER" default:"admin"`
	DefaultAdminPassword string `envconfig:"DEFAULT_ADMIN_PASSWORD" default:""`
	SessionTTLHours      int    `envconfig:"SESSION_TTL_HOURS" default:"168"`
	SessionCookieName    string `envconfig:"SESSION_COOKIE_NAME" default:"pulse_session"`
	SessionCookieSecure  bool   `envconfig:"SESSION_COOKIE_SECURE" default:"false"`
	CORSAllowedOrigins   string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`

	// Moderation word lists are resolved once at startup and injected as
	// immutable values. Empty keeps the compiled-in defaults.
	BannedPhrases  string `envconfig:"PULSE_BANNED_PHRASES" default:""`
	ExtraStopwords string `envconfig:"PULSE_EXTRA_STOPWORDS" default:""`

	ScanWindowDays     int `envconfig:"PULSE_SCAN_WINDOW_DAYS" default:"180"`
	ScanCandidateLimit int `envconfig:"PULSE_SCAN_CANDIDATE_LIMIT" default:"200"`
	MaxKeywords        int `envconfig:"PULSE_MAX_KEYWORDS" default:"12"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("PULSE_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("PULSE_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("PULSE_DB_MIN_CONNS (%d) cannot exceed PULSE_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if strings.TrimSpace(c.DefaultAdminUser) == "" {
		return fmt.Errorf("DEFAULT_ADMIN_USER is required")
	}
	if c.SessionTTLHours < 1 {
		return fmt.Errorf("SESSION_TTL_HOURS must be >= 1")
	}
	if strings.TrimSpace(c.SessionCookieName) == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME is required")
	}
	if c.ScanWindowDays < 1 {
		return fmt.Errorf("PULSE_SCAN_WINDOW_DAYS must be >= 1")
	}
	if c.ScanCandidateLimit < 1 || c.ScanCandidateLimit > 200 {
		return fmt.Errorf("PULSE_SCAN_CANDIDATE_LIMIT must be between 1 and 200")
	}
	if c.MaxKeywords < 1 {
		return fmt.Errorf("PULSE_MAX_KEYWORDS must be >= 1")
	}
	return nil
}

func (c *Config) BannedPhrasesList() []string {
	if c == nil {
		return nil
	}
	return splitCSVList(c.BannedPhrases)
}

func (c *Config) ExtraStopwordsList() []string {
	if c == nil {
		return nil
	}
	return splitCSVList(c.ExtraStopwords)
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}
	return splitCSVList(c.CORSAllowedOrigins)
}

func splitCSVList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	return values
}
