package engine

import "time"

// =============================================================================
// IGNORE OVERRIDE - "Hide this benefit for this window"
// =============================================================================

// IgnoreOverride is a user's request to hide a benefit. It only holds for the
// window it was set in.
type IgnoreOverride struct {
	IsIgnored   bool
	LastUpdated time.Time
}

// EffectiveIgnored returns the override after staleness is applied: an
// ignore set before the current window started (or with no timestamp) no
// longer counts. Evaluated lazily at read time; no job clears it.
func EffectiveIgnored(o IgnoreOverride, f Frequency, anchor Anchor, now time.Time) bool {
	if !o.IsIgnored || o.LastUpdated.IsZero() {
		return false
	}
	return !o.LastUpdated.Before(Current(f, anchor, now).Start)
}

// Stale reports whether a stored ignore has lapsed and should be cleared.
func (o IgnoreOverride) Stale(f Frequency, anchor Anchor, now time.Time) bool {
	return o.IsIgnored && !EffectiveIgnored(o, f, anchor, now)
}
