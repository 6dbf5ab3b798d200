package engine

import "time"

// =============================================================================
// SERIES - Every window of a calendar year, for display
// =============================================================================

// Series lists the windows that overlap calendar year `year`, ordered by
// start. Each window is resolved exactly as Current would resolve it, so the
// entry flagged Current always equals Current(f, anchor, now).
//
// Sub-annual policies yield all 12/4/2 windows. Anchor-relative policies
// yield the one or two anniversary windows (or blocks) that straddle the year.
func Series(f Frequency, anchor Anchor, year int, now time.Time) []Window {
	now = now.UTC()
	current := slotAt(f, anchor, now)
	yearStart, yearEnd := StartOfYear(year), StartOfYear(year+1)

	var windows []Window
	for _, s := range yearSlots(f, anchor, year, now) {
		w := s.resolve(anchor, now)
		if !w.Start.Before(yearEnd) || !w.End.After(yearStart) {
			continue
		}
		w.Current = s == current
		windows = append(windows, w)
	}
	return windows
}

// Cycle lists the windows of the cycle containing now: the whole calendar
// year for sub-annual policies, otherwise just the current window.
func Cycle(f Frequency, anchor Anchor, now time.Time) []Window {
	now = now.UTC()
	if !f.SubAnnual() {
		return []Window{Current(f, anchor, now)}
	}
	return Series(f, anchor, now.Year(), now)
}

// yearSlots returns candidate slots for a calendar year, in start order.
func yearSlots(f Frequency, anchor Anchor, year int, now time.Time) []slot {
	f = f.policy()
	switch f {
	case Monthly, Quarterly, SemiAnnual:
		n := f.WindowCount()
		slots := make([]slot, 0, n)
		for i := 1; i <= n; i++ {
			slots = append(slots, slot{f, year, i})
		}
		return slots
	case AnnualAnniversary:
		return []slot{{f, year - 1, 1}, {f, year, 1}}
	case Quadrennial:
		first := blockStart(anchor, year-1)
		second := blockStart(anchor, year)
		if first == second {
			return []slot{{f, first, 1}}
		}
		return []slot{{f, first, 1}, {f, second, 1}}
	default:
		return []slot{{AnnualCalendar, year, 1}}
	}
}
