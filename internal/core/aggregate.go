package core

import (
	"math"
	"sort"
	"strconv"
	"time"
)

// BuildMonthSummaries joins calendar events to income records by event UID and
// rolls the result up per month, newest month first.
//
// The summarized months are the current month, every month holding at least
// one income record, and every month an event list was supplied for. Months
// with no events but existing records still appear. An event with no matching
// record counts as zero income; skipped records contribute neither income nor
// duration.
func BuildMonthSummaries(incomes []IncomeRecord, expenses []ExpenseRecord, monthEvents map[string][]CalendarEvent, now time.Time) []MonthSummary {
	currentKey := MonthKey(now)

	months := map[string]struct{}{currentKey: {}}
	for _, rec := range incomes {
		if key := MonthKeyOfDay(rec.Date); key != "" {
			months[key] = struct{}{}
		}
	}
	for key := range monthEvents {
		months[key] = struct{}{}
	}

	byUID := make(map[string]IncomeRecord, len(incomes))
	for _, rec := range incomes {
		byUID[rec.UID] = rec
	}

	// Recurring expenses apply to every month uniformly.
	var recurringTotal float64
	for _, e := range expenses {
		if e.Recurring {
			recurringTotal += e.Amount
		}
	}

	summaries := make([]MonthSummary, 0, len(months))
	for key := range months {
		summaries = append(summaries, summarizeMonth(key, key == currentKey, byUID, incomes, expenses, recurringTotal, monthEvents[key]))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Key > summaries[j].Key
	})
	return summaries
}

func summarizeMonth(key string, isCurrent bool, byUID map[string]IncomeRecord, incomes []IncomeRecord, expenses []ExpenseRecord, recurringTotal float64, events []CalendarEvent) MonthSummary {
	year, month := splitMonthKey(key)

	var totalMinutes int
	workedDays := map[string]struct{}{}
	byDay := map[string][]CalendarEvent{}
	var dayOrder []string

	for _, ev := range events {
		if ev.AllDay {
			continue
		}
		if rec, ok := byUID[ev.UID]; ok && rec.Skipped {
			continue
		}
		totalMinutes += ev.DurationMinutes()
		day := ev.Day()
		workedDays[day] = struct{}{}
		if _, seen := byDay[day]; !seen {
			dayOrder = append(dayOrder, day)
		}
		byDay[day] = append(byDay[day], ev)
	}

	// Income matches by date prefix, not by event join: a record with no
	// corresponding event still counts.
	var totalIncome float64
	for _, rec := range incomes {
		if rec.Skipped || MonthKeyOfDay(rec.Date) != key {
			continue
		}
		totalIncome += rec.Amount
	}

	totalExpenses := recurringTotal
	for _, e := range expenses {
		if !e.Recurring && MonthKeyOfDay(e.Date) == key {
			totalExpenses += e.Amount
		}
	}

	var incomplete []IncompleteDay
	for _, day := range dayOrder {
		dayEvents := byDay[day]
		for _, ev := range dayEvents {
			rec, ok := byUID[ev.UID]
			if !ok || (rec.Amount == 0 && !rec.Skipped) {
				incomplete = append(incomplete, IncompleteDay{Date: day, Events: dayEvents})
				break
			}
		}
	}
	sort.Slice(incomplete, func(i, j int) bool {
		return incomplete[i].Date < incomplete[j].Date
	})

	return MonthSummary{
		Key:            key,
		Year:           year,
		Month:          month,
		HoursWorked:    math.Round(float64(totalMinutes)/60*10) / 10,
		DaysWorked:     len(workedDays),
		TotalIncome:    totalIncome,
		TotalExpenses:  totalExpenses,
		Profit:         totalIncome - totalExpenses,
		IsCurrentMonth: isCurrent,
		IncompleteDays: incomplete,
	}
}

func splitMonthKey(key string) (year, month int) {
	if len(key) >= 7 {
		year, _ = strconv.Atoi(key[:4])
		month, _ = strconv.Atoi(key[5:7])
	}
	return year, month
}
