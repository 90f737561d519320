package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	// Settings database
	SettingsDBPath string

	// Backend selection
	DataBackend string

	// Google OAuth material (either file or inline JSON per item)
	GoogleOAuthClientFile string
	GoogleOAuthTokenFile  string
	GoogleOAuthClientJSON string
	GoogleOAuthTokenJSON  string

	// Overrides for the persisted settings, mainly for scripting
	SpreadsheetID string
	CalendarID    string

	// Coordinator tuning
	SnapshotTTL time.Duration
}

func Load() *Config {
	return &Config{
		SettingsDBPath: getEnv("TSINK_DB_PATH", "./data/tsink.db"),
		DataBackend:    getEnv("DATA_BACKEND", "sheets"),

		GoogleOAuthClientFile: getEnv("GOOGLE_OAUTH_CLIENT_FILE", ""),
		GoogleOAuthTokenFile:  getEnv("GOOGLE_OAUTH_TOKEN_FILE", ""),
		GoogleOAuthClientJSON: getEnv("GOOGLE_OAUTH_CLIENT_JSON", ""),
		GoogleOAuthTokenJSON:  getEnv("GOOGLE_OAUTH_TOKEN_JSON", ""),

		SpreadsheetID: getEnv("SPREADSHEET_ID", ""),
		CalendarID:    getEnv("CALENDAR_ID", ""),

		SnapshotTTL: getEnvDuration("SNAPSHOT_TTL", 5*time.Minute),
	}
}

// Validate returns an error describing every invalid field at once.
func (c *Config) Validate() error {
	var problems []string

	switch c.DataBackend {
	case "sheets", "memory":
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of [sheets memory]", c.DataBackend))
	}

	if c.SettingsDBPath == "" {
		problems = append(problems, "settings database path cannot be empty")
	}

	if c.DataBackend == "sheets" {
		if c.GoogleOAuthClientFile == "" && c.GoogleOAuthClientJSON == "" {
			problems = append(problems, "either GOOGLE_OAUTH_CLIENT_FILE or GOOGLE_OAUTH_CLIENT_JSON must be provided for the sheets backend")
		}
		if c.GoogleOAuthTokenFile == "" && c.GoogleOAuthTokenJSON == "" {
			problems = append(problems, "either GOOGLE_OAUTH_TOKEN_FILE or GOOGLE_OAUTH_TOKEN_JSON must be provided for the sheets backend")
		}
		if c.GoogleOAuthClientFile != "" {
			if _, err := os.Stat(c.GoogleOAuthClientFile); os.IsNotExist(err) {
				problems = append(problems, fmt.Sprintf("Google OAuth client file does not exist: %s", c.GoogleOAuthClientFile))
			}
		}
		if c.GoogleOAuthTokenFile != "" {
			if _, err := os.Stat(c.GoogleOAuthTokenFile); os.IsNotExist(err) {
				problems = append(problems, fmt.Sprintf("Google OAuth token file does not exist: %s", c.GoogleOAuthTokenFile))
			}
		}
	}

	if c.SnapshotTTL < time.Second {
		problems = append(problems, fmt.Sprintf("invalid snapshot TTL %v: must be at least 1 second", c.SnapshotTTL))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
