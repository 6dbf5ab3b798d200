package engine

import "time"

// =============================================================================
// CIVIL DATES - All window arithmetic happens on UTC midnights
// =============================================================================

// Date returns midnight UTC for the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates an instant to its UTC calendar day.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return Date(t.Year(), t.Month(), t.Day())
}

func StartOfYear(year int) time.Time { return Date(year, time.January, 1) }
func StartOfMonth(year int, month time.Month) time.Time { return Date(year, month, 1) }

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AnniversaryIn returns the anniversary of (month, day) in the given year.
// Feb 29 anchors land on Feb 28 in non-leap years instead of rolling into March.
func AnniversaryIn(year int, month time.Month, day int) time.Time {
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return Date(year, month, day)
}

// DaysBetween counts whole days from one instant to another (negative if to is earlier).
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}

func quarterOf(month time.Month) int { return (int(month)-1)/3 + 1 }

func halfOf(month time.Month) int {
	if month <= time.June {
		return 1
	}
	return 2
}

// floorDiv rounds toward negative infinity so block alignment works for
// instants that precede the grid origin.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
