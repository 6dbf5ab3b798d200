package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// WINDOW - One resolved instance of a reset period
// =============================================================================

// Window is a fully resolved, displayable reset period.
//
// Start is inclusive and End is exclusive; both are UTC midnights.
// Available is false for windows the account could not have used because
// they precede the anchor date. Current marks the window active at the
// instant the window was resolved.
type Window struct {
	Key       Key
	Label     string
	Start     time.Time
	End       time.Time
	Available bool
	Current   bool
	Ceiling   decimal.Decimal
}

// Contains reports whether t falls in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// LastDay is the final calendar day of the window.
func (w Window) LastDay() time.Time { return w.End.AddDate(0, 0, -1) }

func (w Window) String() string {
	return fmt.Sprintf("%s [%s, %s)", w.Key, w.Start.Format(AnchorLayout), w.End.Format(AnchorLayout))
}

// =============================================================================
// SLOT - A window's position within its policy, before boundaries are resolved
// =============================================================================

// slot is comparable: two slots are the same window iff they are equal.
type slot struct {
	freq  Frequency
	year  int // calendar year; start year for anniversary/quadrennial
	index int // month, quarter or half; 1 for single-window policies
}

// slotAt finds the slot active at now.
func slotAt(f Frequency, anchor Anchor, now time.Time) slot {
	f = f.policy()
	year, month := now.Year(), now.Month()

	switch f {
	case Monthly:
		return slot{f, year, int(month)}
	case Quarterly:
		return slot{f, year, quarterOf(month)}
	case SemiAnnual:
		return slot{f, year, halfOf(month)}
	case AnnualAnniversary:
		return slot{f, annualStartYear(anchor.Effective(now), now), 1}
	case Quadrennial:
		return slot{f, blockStart(anchor, annualStartYear(anchor.Effective(now), now)), 1}
	default:
		return slot{AnnualCalendar, year, 1}
	}
}

// annualStartYear is the year of the most recent anniversary at or before now.
func annualStartYear(anchor, now time.Time) int {
	year := now.Year()
	if now.Before(AnniversaryIn(year, anchor.Month(), anchor.Day())) {
		return year - 1
	}
	return year
}

// blockStart aligns an annual start year onto the 4-year grid.
func blockStart(anchor Anchor, annualStart int) int {
	base := anchor.blockOrigin()
	return base + 4*floorDiv(annualStart-base, 4)
}

// slotFor maps a key back onto its slot.
func slotFor(f Frequency, anchor Anchor, k Key) (slot, error) {
	f = f.policy()
	year, index, err := ParseKey(f, k)
	if err != nil {
		return slot{}, err
	}
	if f == Quadrennial && blockStart(anchor, year) != year {
		return slot{}, fmt.Errorf("%w: %q is off the block grid for anchor %s", ErrInvalidKey, k, anchor)
	}
	return slot{f, year, index}, nil
}

func (s slot) key() Key {
	switch s.freq {
	case Monthly:
		return monthlyKey(s.year, s.index)
	case Quarterly:
		return quarterlyKey(s.year, s.index)
	case SemiAnnual:
		return semiAnnualKey(s.year, s.index)
	case Quadrennial:
		return quadrennialKey(s.year, s.year+4)
	default:
		return annualKey(s.year)
	}
}

// bounds returns [start, end) for the slot. anchor is the effective anchor.
func (s slot) bounds(anchor time.Time) (time.Time, time.Time) {
	switch s.freq {
	case Monthly:
		start := StartOfMonth(s.year, time.Month(s.index))
		return start, start.AddDate(0, 1, 0)
	case Quarterly:
		start := StartOfMonth(s.year, time.Month(3*(s.index-1)+1))
		return start, start.AddDate(0, 3, 0)
	case SemiAnnual:
		start := StartOfMonth(s.year, time.Month(6*(s.index-1)+1))
		return start, start.AddDate(0, 6, 0)
	case AnnualAnniversary:
		return AnniversaryIn(s.year, anchor.Month(), anchor.Day()),
			AnniversaryIn(s.year+1, anchor.Month(), anchor.Day())
	case Quadrennial:
		return AnniversaryIn(s.year, anchor.Month(), anchor.Day()),
			AnniversaryIn(s.year+4, anchor.Month(), anchor.Day())
	default:
		return StartOfYear(s.year), StartOfYear(s.year + 1)
	}
}

func (s slot) label(start, end time.Time) string {
	switch s.freq {
	case Monthly:
		return start.Format("Jan 2006")
	case Quarterly:
		return fmt.Sprintf("Q%d %d", s.index, s.year)
	case SemiAnnual:
		if s.index == 1 {
			return fmt.Sprintf("Jan-Jun %d", s.year)
		}
		return fmt.Sprintf("Jul-Dec %d", s.year)
	case AnnualAnniversary, Quadrennial:
		return start.Format("Jan 2, 2006") + " - " + end.AddDate(0, 0, -1).Format("Jan 2, 2006")
	default:
		return fmt.Sprintf("%d", s.year)
	}
}

// available applies the per-policy "could the account have used this window"
// rule. ref is the instant the window is judged at: now when the window is
// active, otherwise the window's last day.
func (s slot) available(anchor, start, end, ref time.Time) bool {
	ay, am := anchor.Year(), anchor.Month()
	earlierYear := ay < s.year
	sameYear := ay == s.year

	switch s.freq {
	case Monthly:
		return earlierYear || (sameYear && s.index >= int(am))
	case Quarterly:
		return earlierYear || (sameYear && s.index >= quarterOf(am))
	case SemiAnnual:
		if s.index == 1 {
			return earlierYear || (sameYear && am <= time.June)
		}
		return earlierYear || (sameYear && (am <= time.June || ref.Month() >= am))
	case AnnualAnniversary:
		return s.year >= ay
	case Quadrennial:
		return end.After(anchor)
	default:
		return true
	}
}

// resolve turns a slot into a Window as seen at now.
func (s slot) resolve(anchor Anchor, now time.Time) Window {
	eff := anchor.Effective(now)
	start, end := s.bounds(eff)
	w := Window{Key: s.key(), Label: s.label(start, end), Start: start, End: end}

	ref := now
	if !w.Contains(now) {
		ref = w.LastDay()
	}
	w.Available = s.available(eff, start, end, ref)
	return w
}

// =============================================================================
// RESOLVER
// =============================================================================

// Current returns the window active at now. For fixed inputs the result is
// always identical; exactly one window is current per (frequency, anchor).
func Current(f Frequency, anchor Anchor, now time.Time) Window {
	now = now.UTC()
	w := slotAt(f, anchor, now).resolve(anchor, now)
	w.Current = true
	return w
}

// WindowFor resolves the window identified by k, judged at now.
func WindowFor(f Frequency, anchor Anchor, k Key, now time.Time) (Window, error) {
	now = now.UTC()
	s, err := slotFor(f, anchor, k)
	if err != nil {
		return Window{}, err
	}
	w := s.resolve(anchor, now)
	w.Current = s == slotAt(f, anchor, now)
	return w, nil
}
