package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// ANCHOR - The account-open date windows are computed from
// =============================================================================

// ErrInvalidAnchor is returned when an anchor string cannot be parsed.
var ErrInvalidAnchor = errors.New("invalid anchor date")

// AnchorLayout is the wire format of a known anchor.
const AnchorLayout = "2006-01-02"

// UnknownAnchorText is the wire value for a user who declined to give a date.
const UnknownAnchorText = "unknown"

// QuadrennialOrigin is the block grid origin used when the anchor is unknown.
const QuadrennialOrigin = 2020

// Anchor is either a known calendar date or Unknown. The zero value is Unknown.
type Anchor struct {
	date  time.Time
	known bool
}

// KnownAnchor returns an anchor on the UTC calendar day of t.
func KnownAnchor(t time.Time) Anchor {
	return Anchor{date: DateOf(t), known: true}
}

// UnknownAnchor returns the "user declined to specify" anchor.
func UnknownAnchor() Anchor { return Anchor{} }

// ParseAnchor accepts "YYYY-MM-DD", or "" / "unknown" for Unknown.
func ParseAnchor(s string) (Anchor, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, UnknownAnchorText) {
		return UnknownAnchor(), nil
	}
	t, err := time.Parse(AnchorLayout, s)
	if err != nil {
		return Anchor{}, fmt.Errorf("%w: %q", ErrInvalidAnchor, s)
	}
	return KnownAnchor(t), nil
}

func (a Anchor) IsKnown() bool { return a.known }

// Date returns the anchor date and whether it is known.
func (a Anchor) Date() (time.Time, bool) { return a.date, a.known }

// Effective is the only place the Unknown default is applied: an unknown
// anchor behaves as January 1 of the year before now.
func (a Anchor) Effective(now time.Time) time.Time {
	if a.known {
		return a.date
	}
	return StartOfYear(now.UTC().Year() - 1)
}

// blockOrigin is the base year of the quadrennial grid.
func (a Anchor) blockOrigin() int {
	if a.known {
		return a.date.Year()
	}
	return QuadrennialOrigin
}

func (a Anchor) Equal(b Anchor) bool {
	return a.known == b.known && a.date.Equal(b.date)
}

func (a Anchor) String() string {
	if !a.known {
		return UnknownAnchorText
	}
	return a.date.Format(AnchorLayout)
}
