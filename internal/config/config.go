// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	Port           int
	DBPath         string
	Storage        string
	LogLevel       string
	LogFormat      string
	MetricsEnabled bool
	CORSOrigin     string
}

// Load reads configuration from environment variables. Values from a .env
// file in the working directory (or the given files) are applied first and
// never override variables already set.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid METRICS_ENABLED: %w", err)
	}

	cfg := &Config{
		Port:           port,
		DBPath:         getEnv("DB_PATH", "./data/bills.db"),
		Storage:        strings.ToLower(getEnv("STORAGE", StorageSQLite)),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "text")),
		MetricsEnabled: metricsEnabled,
		CORSOrigin:     getEnv("CORS_ORIGIN", "*"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that have a fixed set of choices.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q (want sqlite or memory)", c.Storage)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q (want text or json)", c.LogFormat)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	return nil
}

// LogValue implements slog.LogValuer.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("port", c.Port),
		slog.String("storage", c.Storage),
		slog.String("db_path", c.DBPath),
		slog.String("log_level", c.LogLevel),
		slog.Bool("metrics", c.MetricsEnabled),
		slog.String("cors_origin", c.CORSOrigin),
	)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
