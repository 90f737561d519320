package core

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestIncomeRecordValidate(t *testing.T) {
	good := IncomeRecord{UID: "ev1", Date: "2025-03-10", Amount: 120, Categories: []string{"General"}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		rec  IncomeRecord
		want error
	}{
		{IncomeRecord{UID: "", Date: "2025-03-10"}, ErrEmptyUID},
		{IncomeRecord{UID: "  ", Date: "2025-03-10"}, ErrEmptyUID},
		{IncomeRecord{UID: "ev1", Date: "10/03/2025"}, ErrInvalidDate},
		{IncomeRecord{UID: "ev1", Date: ""}, ErrInvalidDate},
		{IncomeRecord{UID: "ev1", Date: "2025-03-10", Amount: -5}, ErrInvalidAmount},
		{IncomeRecord{UID: "ev1", Date: "2025-03-10", Categories: []string{""}}, ErrEmptyCategory},
	}
	for i, tc := range cases {
		if err := tc.rec.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}

	dup := IncomeRecord{UID: "ev1", Date: "2025-03-10", Categories: []string{"A", "A"}}
	if err := dup.Validate(); err == nil {
		t.Fatalf("expected error for duplicate category")
	}
}

func TestExpenseRecordValidate(t *testing.T) {
	good := ExpenseRecord{ID: "x", Name: "rent", Date: "2025-03-01", Amount: 500}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		rec  ExpenseRecord
		want error
	}{
		{ExpenseRecord{Name: "", Date: "2025-03-01"}, ErrEmptyName},
		{ExpenseRecord{Name: "rent", Date: "not-a-date"}, ErrInvalidDate},
		{ExpenseRecord{Name: "rent", Date: "2025-03-01", Amount: -1}, ErrInvalidAmount},
	}
	for i, tc := range cases {
		if err := tc.rec.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestMonthKeyOfDay(t *testing.T) {
	cases := []struct {
		day, want string
	}{
		{"2025-03-10", "2025-03"},
		{"2025-12-01", "2025-12"},
		{"2025-03", "2025-03"},
		{"short", ""},
		{"", ""},
	}
	for i, tc := range cases {
		if got := MonthKeyOfDay(tc.day); got != tc.want {
			t.Fatalf("case %d got %q, want %q", i, got, tc.want)
		}
	}
}

func TestDurationMinutes(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		end  time.Time
		want int
	}{
		{start.Add(90 * time.Minute), 90},
		{start.Add(90*time.Minute + 29*time.Second), 90},
		{start.Add(90*time.Minute + 31*time.Second), 91},
		{start, 0},
	}
	for i, tc := range cases {
		ev := CalendarEvent{Start: start, End: tc.end}
		if got := ev.DurationMinutes(); got != tc.want {
			t.Fatalf("case %d got %d, want %d", i, got, tc.want)
		}
	}
}

func TestNormalizeCategories(t *testing.T) {
	got := NormalizeCategories([]string{" Food ", "", "Travel", "Food", "  "})
	want := []string{"Food", "Travel"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseDay(t *testing.T) {
	if _, err := ParseDay(" 2025-03-10 "); err != nil {
		t.Fatalf("expected ok for padded day, got %v", err)
	}
	if _, err := ParseDay("2025-13-01"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}
