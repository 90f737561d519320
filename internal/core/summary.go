package core

// IncompleteDay is a day with at least one counted event the user has not
// priced yet (no record, or a zero amount that was not skipped).
type IncompleteDay struct {
	Date   string
	Events []CalendarEvent
}

// MonthSummary is the derived rollup for one month. It is recomputed from the
// full record and event sets on every read and never mutated in place.
type MonthSummary struct {
	Key            string // zero-padded year-month, e.g. "2024-03"
	Year           int
	Month          int // 1-12
	HoursWorked    float64
	DaysWorked     int
	TotalIncome    float64
	TotalExpenses  float64
	Profit         float64
	IsCurrentMonth bool
	IncompleteDays []IncompleteDay
}
