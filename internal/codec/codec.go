// Package codec maps typed records to and from raw sheet rows.
//
// Both directions are total: encoding never fails, and decoding substitutes
// documented defaults for malformed cells instead of raising, because the
// sheet is user-editable outside the app.
package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"tsink/internal/core"
)

// Sheet names with fixed logical schemas.
const (
	SheetIncome   = "income"   // [ical_uid, date, amount, categories, is_skipped]
	SheetExpenses = "expenses" // [id, name, date, amount, is_recurring]
	SheetConfig   = "config"   // [key, value]
)

// ConfigKeyCategories is the reserved config-sheet key whose value holds the
// JSON-encoded category list.
const ConfigKeyCategories = "categories"

// lastCol maps a sheet to the letter of its last schema column.
var lastCol = map[string]string{
	SheetIncome:   "E",
	SheetExpenses: "E",
	SheetConfig:   "B",
}

// RowRange builds the A1 range addressing exactly one record row, e.g.
// RowRange("income", 7) -> "income!A7:E7".
func RowRange(sheet string, pos core.RowPosition) string {
	col, ok := lastCol[sheet]
	if !ok {
		col = "Z"
	}
	return fmt.Sprintf("%s!A%d:%s%d", sheet, pos, col, pos)
}

// DecodeIncomeRows converts raw sheet rows to income records. Row 1 is the
// header and is always skipped.
func DecodeIncomeRows(rows [][]string) []core.IncomeRecord {
	if len(rows) <= 1 {
		return nil
	}
	out := make([]core.IncomeRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, core.IncomeRecord{
			UID:        cell(row, 0),
			Date:       cell(row, 1),
			Amount:     parseAmount(cell(row, 2)),
			Categories: ParseCategories(cell(row, 3)),
			Skipped:    cell(row, 4) == "true",
		})
	}
	return out
}

// EncodeIncome renders an income record as a raw row, header excluded.
func EncodeIncome(r core.IncomeRecord) []string {
	return []string{
		r.UID,
		r.Date,
		formatAmount(r.Amount),
		encodeCategories(r.Categories),
		strconv.FormatBool(r.Skipped),
	}
}

// DecodeExpenseRows converts raw sheet rows to expense records, skipping the
// header row.
func DecodeExpenseRows(rows [][]string) []core.ExpenseRecord {
	if len(rows) <= 1 {
		return nil
	}
	out := make([]core.ExpenseRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, core.ExpenseRecord{
			ID:        cell(row, 0),
			Name:      cell(row, 1),
			Date:      cell(row, 2),
			Amount:    parseAmount(cell(row, 3)),
			Recurring: cell(row, 4) == "true",
		})
	}
	return out
}

// EncodeExpense renders an expense record as a raw row.
func EncodeExpense(r core.ExpenseRecord) []string {
	return []string{
		r.ID,
		r.Name,
		r.Date,
		formatAmount(r.Amount),
		strconv.FormatBool(r.Recurring),
	}
}

// ParseCategories reads a category cell. The current format is a JSON string
// array; a bare non-JSON string is tolerated as a single legacy category.
// Empty input yields an empty list.
func ParseCategories(raw string) []string {
	if raw == "" {
		return nil
	}
	var parsed []string
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		if len(parsed) == 0 {
			return nil
		}
		return parsed
	}
	return []string{raw}
}

func encodeCategories(cats []string) string {
	if cats == nil {
		cats = []string{}
	}
	b, err := json.Marshal(cats)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// DecodeConfigCategories finds the reserved categories row in the config
// sheet. Absent or malformed values fall back to the single default category.
func DecodeConfigCategories(rows [][]string) []string {
	pos := FindConfigRow(rows, ConfigKeyCategories)
	if pos == 0 {
		return []string{core.DefaultCategory}
	}
	raw := cell(rows[pos-1], 1)
	if raw == "" {
		return []string{core.DefaultCategory}
	}
	var parsed []string
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return []string{core.DefaultCategory}
	}
	return parsed
}

// EncodeConfigRow renders one config key/value row.
func EncodeConfigRow(key string, categories []string) []string {
	return []string{key, encodeCategories(categories)}
}

// FindConfigRow returns the RowPosition of the config row holding key, or 0
// when no such row exists. The header row is never matched.
func FindConfigRow(rows [][]string, key string) core.RowPosition {
	for i := 1; i < len(rows); i++ {
		if cell(rows[i], 0) == key {
			return core.RowPosition(i + 1)
		}
	}
	return 0
}

// SheetSchema describes one sheet of a freshly created document: its title
// and initial rows (header first).
type SheetSchema struct {
	Title string
	Rows  [][]string
}

// DefaultSchema is the initial layout of a new document: the three schema
// sheets with headers, and the config sheet seeded with the default category.
func DefaultSchema() []SheetSchema {
	return []SheetSchema{
		{Title: SheetIncome, Rows: [][]string{{"ical_uid", "date", "amount", "categories", "is_skipped"}}},
		{Title: SheetExpenses, Rows: [][]string{{"id", "name", "date", "amount", "is_recurring"}}},
		{Title: SheetConfig, Rows: [][]string{
			{"key", "value"},
			{ConfigKeyCategories, encodeCategories([]string{core.DefaultCategory})},
		}},
	}
}

// parseAmount reads a decimal cell. Non-parseable or missing input maps to
// zero, never an error. A decimal comma is normalized to a dot.
func parseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f, err = strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err != nil {
			return 0
		}
	}
	return f
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
