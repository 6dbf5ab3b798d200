package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONFIG - Static benefit configuration and the ceiling resolver
// =============================================================================

// CeilingPlaces is the precision of default per-window ceilings (cents).
const CeilingPlaces int32 = 2

// Config is the catalog's static description of a benefit's allowance.
type Config struct {
	AnnualCeiling decimal.Decimal
	Frequency     Frequency

	// Overrides replace the default ceiling for specific windows. Keys that
	// can never occur for Frequency are simply never matched.
	Overrides map[Key]decimal.Decimal
}

// Ceiling returns the dollar ceiling for window k.
func (c Config) Ceiling(k Key) decimal.Decimal {
	if v, ok := c.Overrides[k]; ok {
		return v
	}
	return c.DefaultCeiling(k)
}

// DefaultCeiling splits the annual ceiling evenly across the policy's
// windows, rounded to cents. The final window of the year absorbs the
// rounding residue so a full cycle always sums to AnnualCeiling.
// Single-window policies (annual, anniversary, quadrennial) get the whole
// ceiling.
func (c Config) DefaultCeiling(k Key) decimal.Decimal {
	n := c.Frequency.WindowCount()
	if n == 1 {
		return c.AnnualCeiling
	}

	share := c.AnnualCeiling.DivRound(decimal.NewFromInt(int64(n)), CeilingPlaces)
	if _, index, err := ParseKey(c.Frequency, k); err == nil && index == n {
		return c.AnnualCeiling.Sub(share.Mul(decimal.NewFromInt(int64(n - 1))))
	}
	return share
}

// Current is engine.Current with the ceiling filled in.
func (c Config) Current(anchor Anchor, now time.Time) Window {
	return c.withCeiling(Current(c.Frequency, anchor, now))
}

// Series is engine.Series with ceilings filled in.
func (c Config) Series(anchor Anchor, year int, now time.Time) []Window {
	return c.withCeilings(Series(c.Frequency, anchor, year, now))
}

// Cycle is engine.Cycle with ceilings filled in.
func (c Config) Cycle(anchor Anchor, now time.Time) []Window {
	return c.withCeilings(Cycle(c.Frequency, anchor, now))
}

// WindowFor is engine.WindowFor with the ceiling filled in.
func (c Config) WindowFor(anchor Anchor, k Key, now time.Time) (Window, error) {
	w, err := WindowFor(c.Frequency, anchor, k, now)
	if err != nil {
		return Window{}, err
	}
	return c.withCeiling(w), nil
}

// CycleCeiling sums the ceilings of every window in the current cycle.
func (c Config) CycleCeiling(anchor Anchor, now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, w := range c.Cycle(anchor, now) {
		total = total.Add(w.Ceiling)
	}
	return total
}

func (c Config) withCeiling(w Window) Window {
	w.Ceiling = c.Ceiling(w.Key)
	return w
}

func (c Config) withCeilings(ws []Window) []Window {
	for i := range ws {
		ws[i].Ceiling = c.Ceiling(ws[i].Key)
	}
	return ws
}
