/*
Package engine resolves recurring entitlement windows.

PURPOSE:
  A benefit such as "$200 credit, resets every quarter" is only meaningful
  relative to a window: which quarter is active, how much of it has been
  used, when it resets. This package answers those questions from explicit
  inputs (frequency, account anchor date, now, usage records) and nothing
  else. It performs no I/O and holds no state, so the dashboard path and the
  notification batch path compute identical answers.

KEY CONCEPTS:
  - Frequency: the reset policy (monthly ... quadrennial)
  - Anchor:    the account-open date, or Unknown
  - Window:    one instance of a reset period, identified by a stable Key
  - Config:    annual ceiling + frequency + per-window ceiling overrides

INSTANTS:
  All arithmetic is done in UTC. Windows are half-open: [Start, End).

SEE ALSO:
  - window.go:     current window resolution
  - series.go:     per-year window series for display
  - usage.go:      usage status and year-to-date totals
  - staleness.go:  auto-expiring "ignore" overrides
*/
package engine

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// FREQUENCY - How often a benefit resets
// =============================================================================

// Frequency is the reset policy of a benefit.
type Frequency string

const (
	Monthly           Frequency = "monthly"
	Quarterly         Frequency = "quarterly"
	SemiAnnual        Frequency = "semi_annual"
	AnnualCalendar    Frequency = "annual"      // Jan 1 - Dec 31
	AnnualAnniversary Frequency = "anniversary" // Card-open anniversary to anniversary
	Quadrennial       Frequency = "quadrennial" // Four anniversary years, aligned to a grid
)

// Frequencies lists every supported policy in display order.
var Frequencies = []Frequency{Monthly, Quarterly, SemiAnnual, AnnualCalendar, AnnualAnniversary, Quadrennial}

// ErrUnknownFrequency is returned by ParseFrequency for unrecognized values.
var ErrUnknownFrequency = errors.New("unknown frequency")

// UnknownFrequencyError carries the offending catalog value.
type UnknownFrequencyError struct {
	Value string
}

func (e *UnknownFrequencyError) Error() string {
	return fmt.Sprintf("unknown frequency %q", e.Value)
}

func (e *UnknownFrequencyError) Unwrap() error { return ErrUnknownFrequency }

var frequencyAliases = map[string]Frequency{
	"monthly":            Monthly,
	"month":              Monthly,
	"quarterly":          Quarterly,
	"quarter":            Quarterly,
	"semi_annual":        SemiAnnual,
	"semi_annually":      SemiAnnual,
	"semiannual":         SemiAnnual,
	"semiannually":       SemiAnnual,
	"biannual":           SemiAnnual,
	"annual":             AnnualCalendar,
	"annually":           AnnualCalendar,
	"yearly":             AnnualCalendar,
	"calendar_year":      AnnualCalendar,
	"annual_calendar":    AnnualCalendar,
	"anniversary":        AnnualAnniversary,
	"annual_anniversary": AnnualAnniversary,
	"cardmember_year":    AnnualAnniversary,
	"card_year":          AnnualAnniversary,
	"quadrennial":        Quadrennial,
	"every_4_years":      Quadrennial,
	"every_four_years":   Quadrennial,
}

// ParseFrequency maps a catalog string to a Frequency, accepting common
// spellings ("Semi-Annually", "every 4 years", ...).
func ParseFrequency(s string) (Frequency, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	if f, ok := frequencyAliases[norm]; ok {
		return f, nil
	}
	return "", &UnknownFrequencyError{Value: s}
}

// NormalizeFrequency is the fail-open variant of ParseFrequency: anything
// unrecognized is treated as AnnualCalendar.
func NormalizeFrequency(s string) Frequency {
	f, err := ParseFrequency(s)
	if err != nil {
		return AnnualCalendar
	}
	return f
}

// Valid reports whether f is one of the known policies.
func (f Frequency) Valid() bool {
	switch f {
	case Monthly, Quarterly, SemiAnnual, AnnualCalendar, AnnualAnniversary, Quadrennial:
		return true
	}
	return false
}

// policy returns f, or AnnualCalendar when f is not a known value.
func (f Frequency) policy() Frequency {
	if f.Valid() {
		return f
	}
	return AnnualCalendar
}

// WindowCount is the number of windows the annual ceiling is split across.
func (f Frequency) WindowCount() int {
	switch f.policy() {
	case Monthly:
		return 12
	case Quarterly:
		return 4
	case SemiAnnual:
		return 2
	default:
		return 1
	}
}

// AnchorRelative reports whether window boundaries depend on the anchor date.
func (f Frequency) AnchorRelative() bool {
	p := f.policy()
	return p == AnnualAnniversary || p == Quadrennial
}

// SubAnnual reports whether several windows share one calendar year.
func (f Frequency) SubAnnual() bool { return f.WindowCount() > 1 }

func (f Frequency) String() string { return string(f) }
