package settings

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// exportDocument is the portable snapshot of local configuration.
type exportDocument struct {
	Settings   exportSettings `json:"settings"`
	ExportedAt string         `json:"exportedAt"`
}

type exportSettings struct {
	SpreadsheetID string `json:"spreadsheetId,omitempty"`
	CalendarID    string `json:"calendarId,omitempty"`
	Currency      string `json:"currency,omitempty"`
	Theme         string `json:"theme,omitempty"`
	Language      string `json:"language,omitempty"`
}

// Export serializes the settings to the portable JSON document.
func Export(s Settings, now time.Time) ([]byte, error) {
	doc := exportDocument{
		Settings: exportSettings{
			SpreadsheetID: s.SpreadsheetID,
			CalendarID:    s.CalendarID,
			Currency:      s.Currency,
			Theme:         s.Theme,
			Language:      s.Language,
		},
		ExportedAt: now.Format(time.RFC3339),
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ParseImport reads an exported document and returns the recognized,
// individually validated fields as store keys. Invalid fields are skipped,
// unknown keys ignored; only a document that carries no settings at all is an
// error.
func ParseImport(data []byte) (map[string]string, error) {
	var doc exportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse import: %w", err)
	}
	changes := map[string]string{}
	in := doc.Settings
	if v := strings.TrimSpace(in.SpreadsheetID); v != "" {
		changes[keySpreadsheetID] = v
	}
	if v := strings.TrimSpace(in.CalendarID); v != "" {
		changes[keyCalendarID] = v
	}
	if v := strings.ToUpper(strings.TrimSpace(in.Currency)); validCurrency(v) {
		changes[keyCurrency] = v
	}
	if v := strings.TrimSpace(in.Theme); v == "light" || v == "dark" || v == "system" {
		changes[keyTheme] = v
	}
	if v := strings.TrimSpace(in.Language); v != "" {
		changes[keyLanguage] = v
	}
	if len(changes) == 0 {
		return nil, fmt.Errorf("import holds no recognized settings")
	}
	return changes, nil
}

func validCurrency(v string) bool {
	if len(v) != 3 {
		return false
	}
	for _, r := range v {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
