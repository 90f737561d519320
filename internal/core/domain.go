package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// DayFormat is the calendar-day encoding used in sheet cells and month keys.
	DayFormat = "2006-01-02"

	// MonthKeyFormat is the zero-padded year-month key ("2024-03"). Lexicographic
	// order on these keys matches chronological order.
	MonthKeyFormat = "2006-01"

	// DefaultCategory seeds a fresh config sheet and backs the fallback when the
	// stored category list is absent or malformed.
	DefaultCategory = "General"
)

type (
	// RowPosition addresses a record's row within its sheet: 1-based, with the
	// header occupying row 1, so the first record sits at position 2. A position
	// is only valid against the snapshot it was derived from; any delete at or
	// before it shifts every later position.
	RowPosition int

	// IncomeRecord is the income logged against one calendar event. At most one
	// record exists per UID per document.
	IncomeRecord struct {
		UID        string
		Date       string // calendar day, DayFormat
		Amount     float64
		Categories []string
		Skipped    bool
	}

	// ExpenseRecord is a discretionary expense. Recurring expenses count against
	// every month; one-time expenses only against their own.
	ExpenseRecord struct {
		ID        string
		Name      string
		Date      string // calendar day, DayFormat
		Amount    float64
		Recurring bool
	}

	// CalendarEvent is a read-only event from the remote calendar.
	CalendarEvent struct {
		ID      string
		UID     string
		Summary string
		Start   time.Time
		End     time.Time
		AllDay  bool
	}
)

var (
	ErrNoDocument    = errors.New("no document selected")
	ErrEmptyUID      = errors.New("empty event uid")
	ErrEmptyName     = errors.New("empty name")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category name")
)

// ParseDay parses a calendar day in DayFormat.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDay renders t as a calendar day in DayFormat.
func FormatDay(t time.Time) string {
	return t.Format(DayFormat)
}

// MonthKey returns the zero-padded year-month key for t.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyFormat)
}

// MonthKeyOfDay extracts the month key from a DayFormat day string.
// Returns "" for strings too short to carry one.
func MonthKeyOfDay(day string) string {
	if len(day) < len(MonthKeyFormat) {
		return ""
	}
	return day[:len(MonthKeyFormat)]
}

// DurationMinutes returns the event length in whole minutes, rounded.
func (e CalendarEvent) DurationMinutes() int {
	return int(e.End.Sub(e.Start).Round(time.Minute) / time.Minute)
}

// Day returns the event's start day in DayFormat.
func (e CalendarEvent) Day() string {
	return FormatDay(e.Start)
}

func validDay(s string) bool {
	_, err := ParseDay(s)
	return err == nil
}

func (r IncomeRecord) Validate() error {
	if strings.TrimSpace(r.UID) == "" {
		return ErrEmptyUID
	}
	if !validDay(r.Date) {
		return ErrInvalidDate
	}
	if r.Amount < 0 {
		return ErrInvalidAmount
	}
	seen := map[string]struct{}{}
	for _, c := range r.Categories {
		if strings.TrimSpace(c) == "" {
			return ErrEmptyCategory
		}
		if _, dup := seen[c]; dup {
			return errors.New("duplicate category: " + c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

func (r ExpenseRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if !validDay(r.Date) {
		return ErrInvalidDate
	}
	if r.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// NormalizeCategories trims names and drops empties and duplicates while
// preserving first-seen order.
func NormalizeCategories(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
