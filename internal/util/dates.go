package util

import "time"

// PeriodUnit is the calendar interval at which a periodic loan accrues interest.
type PeriodUnit string

const (
	UnitDays   PeriodUnit = "Days"
	UnitWeeks  PeriodUnit = "Weeks"
	UnitMonths PeriodUnit = "Months"
)

// Valid returns true if the unit is one of Days, Weeks, or Months.
func (u PeriodUnit) Valid() bool {
	return u == UnitDays || u == UnitWeeks || u == UnitMonths
}

// Midnight truncates a time to its calendar date in UTC.
// All due-date comparisons are by calendar date only.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ActualDate returns the date for a target day in a given month,
// clamping days past the end of the month (e.g., day 31 in February
// returns Feb 28/29). Month overflow never rolls into the next month.
func ActualDate(year int, month time.Month, targetDay int) time.Time {
	// Get last day of month by going to day 0 of next month
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	actualDay := targetDay
	if actualDay > lastDay {
		actualDay = lastDay
	}

	return time.Date(year, month, actualDay, 0, 0, 0, 0, time.UTC)
}

// AddPeriod steps n periods forward from start. Month steps are anchored
// at the start date's day-of-month, so Jan 31 + 1 month is Feb 28/29 while
// Jan 31 + 2 months is Mar 31 (no cumulative clamp drift).
func AddPeriod(start time.Time, unit PeriodUnit, n int) time.Time {
	start = Midnight(start)
	switch unit {
	case UnitDays:
		return start.AddDate(0, 0, n)
	case UnitWeeks:
		return start.AddDate(0, 0, 7*n)
	default:
		year := start.Year()
		month := int(start.Month()) + n
		// normalize month into [1,12] so ActualDate sees a real month
		year += (month - 1) / 12
		month = (month-1)%12 + 1
		return ActualDate(year, time.Month(month), start.Day())
	}
}

// MonthSpan returns the raw calendar-month difference between a and b
// (b.month - a.month across years), ignoring the day-of-month.
func MonthSpan(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// CompletedMonths returns how many whole months have elapsed from start to
// asOf. A month only counts once the same day-of-month has recurred.
// Never negative.
func CompletedMonths(start, asOf time.Time) int {
	months := MonthSpan(start, asOf)
	if asOf.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
