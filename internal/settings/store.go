// Package settings persists local configuration: the selected document and
// calendar, currency, theme and language. It is read at startup and written
// through on every change; business logic receives it as an explicit value,
// never via ambient global access.
package settings

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Settings is the typed view of the persisted key/value rows.
type Settings struct {
	SpreadsheetID string
	CalendarID    string
	Currency      string
	Theme         string // light, dark or system
	Language      string
}

// Defaults match a fresh installation.
func Defaults() Settings {
	return Settings{
		CalendarID: "primary",
		Currency:   "HUF",
		Theme:      "system",
		Language:   "en",
	}
}

const (
	keySpreadsheetID = "spreadsheet_id"
	keyCalendarID    = "calendar_id"
	keyCurrency      = "currency"
	keyTheme         = "theme"
	keyLanguage      = "language"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the settings database and applies pending
// migrations.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the persisted settings, overlaying stored rows on the defaults.
func (s *Store) Load(ctx context.Context) (Settings, error) {
	out := Defaults()
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return out, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return out, fmt.Errorf("scan setting: %w", err)
		}
		applyField(&out, key, value)
	}
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("load settings: %w", err)
	}
	return out, nil
}

func applyField(s *Settings, key, value string) {
	switch key {
	case keySpreadsheetID:
		s.SpreadsheetID = value
	case keyCalendarID:
		s.CalendarID = value
	case keyCurrency:
		s.Currency = value
	case keyTheme:
		s.Theme = value
	case keyLanguage:
		s.Language = value
	}
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	slog.DebugContext(ctx, "setting saved", "key", key)
	return nil
}

func (s *Store) SetSpreadsheetID(ctx context.Context, v string) error {
	return s.set(ctx, keySpreadsheetID, v)
}

func (s *Store) SetCalendarID(ctx context.Context, v string) error {
	return s.set(ctx, keyCalendarID, v)
}

func (s *Store) SetCurrency(ctx context.Context, v string) error {
	return s.set(ctx, keyCurrency, v)
}

func (s *Store) SetTheme(ctx context.Context, v string) error {
	return s.set(ctx, keyTheme, v)
}

func (s *Store) SetLanguage(ctx context.Context, v string) error {
	return s.set(ctx, keyLanguage, v)
}

// Apply writes every recognized field of changes through the store.
func (s *Store) Apply(ctx context.Context, changes map[string]string) error {
	for key, value := range changes {
		if err := s.set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}
