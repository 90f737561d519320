package core

import (
	"testing"
	"time"
)

func ev(uid, day string, startHour int, minutes int) CalendarEvent {
	d, _ := ParseDay(day)
	start := d.Add(time.Duration(startHour) * time.Hour)
	return CalendarEvent{
		ID:      uid,
		UID:     uid,
		Summary: "session " + uid,
		Start:   start,
		End:     start.Add(time.Duration(minutes) * time.Minute),
	}
}

func findMonth(t *testing.T, summaries []MonthSummary, key string) MonthSummary {
	t.Helper()
	for _, m := range summaries {
		if m.Key == key {
			return m
		}
	}
	t.Fatalf("month %s missing from summaries", key)
	return MonthSummary{}
}

func TestBuildMonthSummariesJoin(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	incomes := []IncomeRecord{
		{UID: "a", Date: "2025-03-03", Amount: 100},
		{UID: "b", Date: "2025-03-04", Amount: 150},
	}
	events := map[string][]CalendarEvent{
		"2025-03": {
			ev("a", "2025-03-03", 9, 90),
			ev("b", "2025-03-04", 9, 60),
		},
	}

	got := BuildMonthSummaries(incomes, nil, events, now)
	m := findMonth(t, got, "2025-03")

	if m.HoursWorked != 2.5 {
		t.Fatalf("hours = %v, want 2.5", m.HoursWorked)
	}
	if m.DaysWorked != 2 {
		t.Fatalf("days = %d, want 2", m.DaysWorked)
	}
	if m.TotalIncome != 250 {
		t.Fatalf("income = %v, want 250", m.TotalIncome)
	}
	if m.Profit != 250 {
		t.Fatalf("profit = %v, want 250", m.Profit)
	}
	if !m.IsCurrentMonth {
		t.Fatalf("expected current month flag")
	}
	if len(m.IncompleteDays) != 0 {
		t.Fatalf("expected no incomplete days, got %v", m.IncompleteDays)
	}
	if m.Year != 2025 || m.Month != 3 {
		t.Fatalf("year/month = %d/%d, want 2025/3", m.Year, m.Month)
	}
}

func TestBuildMonthSummariesIncompleteDays(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	incomes := []IncomeRecord{
		{UID: "paid", Date: "2025-03-03", Amount: 100},
		{UID: "zero", Date: "2025-03-05", Amount: 0},
	}
	events := map[string][]CalendarEvent{
		"2025-03": {
			ev("paid", "2025-03-03", 9, 60),
			ev("norec", "2025-03-04", 9, 60),
			ev("zero", "2025-03-05", 9, 60),
		},
	}

	m := findMonth(t, BuildMonthSummaries(incomes, nil, events, now), "2025-03")
	if len(m.IncompleteDays) != 2 {
		t.Fatalf("incomplete days = %d, want 2", len(m.IncompleteDays))
	}
	if m.IncompleteDays[0].Date != "2025-03-04" || m.IncompleteDays[1].Date != "2025-03-05" {
		t.Fatalf("incomplete days out of order: %v", m.IncompleteDays)
	}
}

func TestBuildMonthSummariesSkipped(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	incomes := []IncomeRecord{
		{UID: "work", Date: "2025-03-03", Amount: 100},
		{UID: "holiday", Date: "2025-03-04", Amount: 0, Skipped: true},
	}
	events := map[string][]CalendarEvent{
		"2025-03": {
			ev("work", "2025-03-03", 9, 60),
			ev("holiday", "2025-03-04", 9, 480),
		},
	}

	m := findMonth(t, BuildMonthSummaries(incomes, nil, events, now), "2025-03")
	if m.HoursWorked != 1 {
		t.Fatalf("hours = %v, want 1 (skipped event excluded)", m.HoursWorked)
	}
	if m.DaysWorked != 1 {
		t.Fatalf("days = %d, want 1", m.DaysWorked)
	}
	if m.TotalIncome != 100 {
		t.Fatalf("income = %v, want 100", m.TotalIncome)
	}
	if len(m.IncompleteDays) != 0 {
		t.Fatalf("skipped day must not be incomplete: %v", m.IncompleteDays)
	}
}

func TestBuildMonthSummariesAllDayExcluded(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	allDay := ev("vac", "2025-03-10", 0, 1440)
	allDay.AllDay = true
	events := map[string][]CalendarEvent{
		"2025-03": {allDay, ev("w", "2025-03-11", 9, 120)},
	}

	m := findMonth(t, BuildMonthSummaries(nil, nil, events, now), "2025-03")
	if m.HoursWorked != 2 {
		t.Fatalf("hours = %v, want 2 (all-day excluded)", m.HoursWorked)
	}
	if m.DaysWorked != 1 {
		t.Fatalf("days = %d, want 1", m.DaysWorked)
	}
}

func TestBuildMonthSummariesExpenses(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	incomes := []IncomeRecord{
		{UID: "a", Date: "2025-03-03", Amount: 1000},
		{UID: "b", Date: "2025-02-10", Amount: 800},
	}
	expenses := []ExpenseRecord{
		{ID: "1", Name: "hosting", Date: "2024-01-01", Amount: 20, Recurring: true},
		{ID: "2", Name: "laptop", Date: "2025-03-02", Amount: 300},
		{ID: "3", Name: "conference", Date: "2025-02-20", Amount: 150},
	}

	got := BuildMonthSummaries(incomes, expenses, nil, now)

	mar := findMonth(t, got, "2025-03")
	if mar.TotalExpenses != 320 {
		t.Fatalf("march expenses = %v, want 320", mar.TotalExpenses)
	}
	if mar.Profit != 680 {
		t.Fatalf("march profit = %v, want 680", mar.Profit)
	}

	feb := findMonth(t, got, "2025-02")
	if feb.TotalExpenses != 170 {
		t.Fatalf("february expenses = %v, want 170", feb.TotalExpenses)
	}
	if feb.Profit != 630 {
		t.Fatalf("february profit = %v, want 630", feb.Profit)
	}
}

func TestBuildMonthSummariesMonthSetAndOrder(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	incomes := []IncomeRecord{{UID: "old", Date: "2024-11-20", Amount: 50}}
	events := map[string][]CalendarEvent{
		"2025-01": {ev("j", "2025-01-08", 9, 60)},
	}

	got := BuildMonthSummaries(incomes, nil, events, now)
	if len(got) != 3 {
		t.Fatalf("months = %d, want 3", len(got))
	}
	wantOrder := []string{"2025-03", "2025-01", "2024-11"}
	for i, key := range wantOrder {
		if got[i].Key != key {
			t.Fatalf("position %d = %s, want %s", i, got[i].Key, key)
		}
	}
	if !got[0].IsCurrentMonth || got[1].IsCurrentMonth || got[2].IsCurrentMonth {
		t.Fatalf("current-month flags wrong: %+v", got)
	}
}

func TestBuildMonthSummariesHoursRounding(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	events := map[string][]CalendarEvent{
		"2025-03": {ev("a", "2025-03-03", 9, 100)}, // 1.666... hours
	}
	m := findMonth(t, BuildMonthSummaries(nil, nil, events, now), "2025-03")
	if m.HoursWorked != 1.7 {
		t.Fatalf("hours = %v, want 1.7", m.HoursWorked)
	}
}

func TestBuildMonthSummariesRecordWithoutEvent(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	incomes := []IncomeRecord{{UID: "manual", Date: "2025-03-20", Amount: 75}}

	m := findMonth(t, BuildMonthSummaries(incomes, nil, nil, now), "2025-03")
	if m.TotalIncome != 75 {
		t.Fatalf("income = %v, want 75 (record without event still counts)", m.TotalIncome)
	}
	if m.HoursWorked != 0 || m.DaysWorked != 0 {
		t.Fatalf("no events must mean zero hours/days, got %v/%d", m.HoursWorked, m.DaysWorked)
	}
}
