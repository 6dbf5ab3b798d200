package engine

import "time"

// DaysRemaining is the number of whole days from now until the current
// window closes. It is only negative under clock skew; callers clamp to zero.
func DaysRemaining(f Frequency, anchor Anchor, now time.Time) int {
	return Current(f, anchor, now).DaysRemaining(now)
}

// DaysRemaining counts whole days from now until w.End.
func (w Window) DaysRemaining(now time.Time) int {
	return DaysBetween(now.UTC(), w.End)
}
