/*
aggregate.go - Dashboard fold over (card, benefit) pairs

PER-PAIR PIPELINE:
  1. Resolve the current window and its ceiling (engine.Config.Current)
  2. Skip the pair if the ceiling is not positive
  3. Usage state of the current window (engine.State)
  4. Days remaining in the window
  5. Effective ignore flag after staleness (engine.EffectiveIgnored)
  6. Bucket: ignored > full > needs_action

TOTALS (non-ignored pairs only):
  TotalPotentialValue: sum of every window's ceiling in the current cycle
  TotalExtractedValue: year-to-date used, monetary benefit types only

Aggregate performs no I/O. Everything it needs is in the Entry slice.
*/
package benefits

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/colinjianingxie/walletfreak-sub000/engine"
)

// Bucket is the single dashboard group a benefit falls into.
type Bucket string

const (
	BucketIgnored     Bucket = "ignored"
	BucketFull        Bucket = "full"
	BucketNeedsAction Bucket = "needs_action"
)

// Entry is one (card, benefit) pair with its persisted state.
type Entry struct {
	Card    Card
	Benefit Benefit
	Usage   map[engine.Key]engine.UsageRecord
	Ignore  engine.IgnoreOverride
}

// BenefitView is the evaluated state of one entry at an instant.
type BenefitView struct {
	CardID        CardID
	CardName      string
	BenefitID     BenefitID
	BenefitName   string
	Type          BenefitType
	Frequency     engine.Frequency
	Window        engine.Window
	Usage         engine.UsageState
	YearToDate    decimal.Decimal
	CycleCeiling  decimal.Decimal
	DaysRemaining int
	Ignored       bool
	// IgnoreStale is set when a stored ignore flag has lapsed because a
	// newer window started after it was written.
	IgnoreStale bool
	Bucket      Bucket
}

// Summary is the dashboard result.
type Summary struct {
	AsOf                time.Time
	Ignored             []BenefitView
	Full                []BenefitView
	NeedsAction         []BenefitView
	TotalPotentialValue decimal.Decimal
	TotalExtractedValue decimal.Decimal
}

// Views returns every bucketed view in display order.
func (s Summary) Views() []BenefitView {
	out := make([]BenefitView, 0, len(s.Ignored)+len(s.Full)+len(s.NeedsAction))
	out = append(out, s.NeedsAction...)
	out = append(out, s.Full...)
	return append(out, s.Ignored...)
}

// Stale returns views whose stored ignore flag has lapsed.
func (s Summary) Stale() []BenefitView {
	var out []BenefitView
	for _, v := range s.Views() {
		if v.IgnoreStale {
			out = append(out, v)
		}
	}
	return out
}

// Evaluate runs the engine for one entry. ok is false when the current
// window carries no value, in which case the pair is left off the dashboard.
func Evaluate(e Entry, now time.Time) (view BenefitView, ok bool) {
	cfg := e.Benefit.Config
	anchor := e.Card.Anchor

	w := cfg.Current(anchor, now)
	if !w.Ceiling.IsPositive() {
		return BenefitView{}, false
	}

	rec := e.Usage[w.Key]
	ignored := engine.EffectiveIgnored(e.Ignore, cfg.Frequency, anchor, now)

	view = BenefitView{
		CardID:        e.Card.ID,
		CardName:      e.Card.Name,
		BenefitID:     e.Benefit.ID,
		BenefitName:   e.Benefit.Name,
		Type:          e.Benefit.Type,
		Frequency:     cfg.Frequency,
		Window:        w,
		Usage:         engine.State(rec, w.Ceiling),
		YearToDate:    cfg.YearToDate(anchor, now, e.Usage),
		CycleCeiling:  cfg.CycleCeiling(anchor, now),
		DaysRemaining: w.DaysRemaining(now),
		Ignored:       ignored,
		IgnoreStale:   e.Ignore.IsIgnored && !ignored,
	}

	switch {
	case ignored:
		view.Bucket = BucketIgnored
	case view.Usage.Status == engine.StatusFull:
		view.Bucket = BucketFull
	default:
		view.Bucket = BucketNeedsAction
	}
	return view, true
}

// Aggregate folds entries into a Summary.
func Aggregate(entries []Entry, now time.Time) Summary {
	sum := Summary{
		AsOf:                now,
		TotalPotentialValue: decimal.Zero,
		TotalExtractedValue: decimal.Zero,
	}

	for _, e := range entries {
		v, ok := Evaluate(e, now)
		if !ok {
			continue
		}

		switch v.Bucket {
		case BucketIgnored:
			sum.Ignored = append(sum.Ignored, v)
			continue
		case BucketFull:
			sum.Full = append(sum.Full, v)
		default:
			sum.NeedsAction = append(sum.NeedsAction, v)
		}

		sum.TotalPotentialValue = sum.TotalPotentialValue.Add(v.CycleCeiling)
		if v.Type.Monetary() {
			sum.TotalExtractedValue = sum.TotalExtractedValue.Add(v.YearToDate)
		}
	}
	return sum
}
