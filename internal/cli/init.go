// Package cli provides the bootstrap shared by the commands.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"tsink/internal/config"
	"tsink/internal/settings"
)

// SetupLogger initializes structured logging and installs it as the default.
func SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development; missing files are fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads the configuration or exits on validation
// failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenSettings opens the settings store or exits on failure.
func OpenSettings(logger *slog.Logger, dbPath string) *settings.Store {
	store, err := settings.Open(dbPath)
	if err != nil {
		logger.Error("failed to open settings store", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return store
}
