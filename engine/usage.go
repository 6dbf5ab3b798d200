package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// USAGE STATE - How much of a window has been consumed
// =============================================================================

// Status is the consumption state of a window. The values are ordered:
// Empty < Partial < Full.
type Status int

const (
	StatusEmpty Status = iota
	StatusPartial
	StatusFull
)

func (s Status) String() string {
	switch s {
	case StatusPartial:
		return "partial"
	case StatusFull:
		return "full"
	default:
		return "empty"
	}
}

// UsageRecord is the stored usage for one (card, benefit, window). The zero
// value means "nothing recorded" and is what a missing record evaluates as.
type UsageRecord struct {
	Used        decimal.Decimal
	IsFull      bool // user override: "I used all of it"
	LastUpdated time.Time
}

// Evaluate classifies usage against a ceiling. IsFull wins over the numbers.
func Evaluate(r UsageRecord, ceiling decimal.Decimal) Status {
	switch {
	case r.IsFull || r.Used.GreaterThanOrEqual(ceiling):
		return StatusFull
	case r.Used.IsPositive():
		return StatusPartial
	default:
		return StatusEmpty
	}
}

// UsageState is a window's evaluated usage.
type UsageState struct {
	Status    Status
	Used      decimal.Decimal
	Ceiling   decimal.Decimal
	Remaining decimal.Decimal
}

// State evaluates r against ceiling. Remaining is never negative and is zero
// once the window is Full.
func State(r UsageRecord, ceiling decimal.Decimal) UsageState {
	st := UsageState{
		Status:    Evaluate(r, ceiling),
		Used:      r.Used,
		Ceiling:   ceiling,
		Remaining: decimal.Zero,
	}
	if st.Status != StatusFull {
		st.Remaining = decimal.Max(ceiling.Sub(r.Used), decimal.Zero)
	}
	return st
}

// YearToDate sums Used over the current cycle's windows up to and including
// the current one. Records for other keys are ignored.
func (c Config) YearToDate(anchor Anchor, now time.Time, records map[Key]UsageRecord) decimal.Decimal {
	total := decimal.Zero
	for _, w := range c.Cycle(anchor, now) {
		if w.Start.After(now.UTC()) {
			break
		}
		total = total.Add(records[w.Key].Used)
	}
	return total
}
