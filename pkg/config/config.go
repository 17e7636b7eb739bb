// Package config loads process settings from the environment and the
// monitored-source list from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/daniel-butler/whoisthat/pkg/ner"
)

// Reddit holds the default client settings.
type Reddit struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string // empty means derive from AppVersion
	AppVersion   string
}

// Config is the process-wide configuration.
type Config struct {
	Reddit Reddit

	// ParserModel names the NER model loaded at startup.
	ParserModel string

	DatabaseDriver string
	DatabaseURL    string

	SourcesPath string
	LogLevel    slog.Level
}

// Load reads .env files if present, then the environment.
func Load(appVersion string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// Missing .env files are fine; the environment may be set directly.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := &Config{
		Reddit: Reddit{
			ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
			ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
			Username:     os.Getenv("REDDIT_USERNAME"),
			Password:     os.Getenv("REDDIT_PASSWORD"),
			UserAgent:    os.Getenv("REDDIT_USER_AGENT"),
			AppVersion:   appVersion,
		},
		ParserModel:    getEnv("WHOISTHAT_PARSER_MODEL", ner.DefaultModel),
		DatabaseDriver: getEnv("WHOISTHAT_DB_DRIVER", "sqlite"),
		DatabaseURL:    getEnv("WHOISTHAT_DB", defaultDBPath()),
		SourcesPath:    getEnv("WHOISTHAT_SOURCES", "sources.yaml"),
	}

	level, err := parseLevel(getEnv("WHOISTHAT_LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	switch cfg.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("WHOISTHAT_DB_DRIVER must be sqlite or postgres, got %q", cfg.DatabaseDriver)
	}
	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("WHOISTHAT_LOG_LEVEL: %w", err)
	}
	return level, nil
}

func defaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".whoisthat", "whoisthat.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
