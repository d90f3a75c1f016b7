package domain

import "time"

// DateOnly truncates t to day granularity at UTC midnight.
// All dates in the system are carried at this granularity.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date builds a day-granularity date at UTC midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddMonths shifts d by n calendar months, clamping to the last day of
// the target month. March 31 minus one month is February 28 (or 29),
// never March 3 as time.AddDate normalization would produce.
func AddMonths(d time.Time, n int) time.Time {
	y, m, day := d.Date()
	total := int(m) - 1 + n
	year := y + total/12
	month := total % 12
	if month < 0 {
		month += 12
		year--
	}
	mm := time.Month(month + 1)
	if last := DaysIn(year, mm); day > last {
		day = last
	}
	return Date(year, mm, day)
}

// AddYears shifts d by n calendar years, clamping Feb 29 to Feb 28 on
// non-leap targets.
func AddYears(d time.Time, n int) time.Time {
	return AddMonths(d, 12*n)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
