/*
Package benefits applies the window engine to cards and their benefits.

PURPOSE:
  The engine package knows about windows; this package knows about the
  things users own. A Card (a financial account) has an anchor date and a
  set of Benefits from the catalog. For each (card, benefit) pair the
  Aggregator combines the engine's answers into what the dashboard shows,
  and the reminder pass decides which benefits still have unused value.

KEY CONCEPTS:
  - Benefit:    catalog entry (name, type, engine.Config)
  - Card:       an account with an anchor date and attached benefit IDs
  - Entry:      one (card, benefit) pair with its usage and ignore state
  - Summary:    dashboard totals and per-status buckets
  - Service:    orchestrates stores + engine for the API and the scheduler

MUTATION:
  Nothing in aggregate.go or reminders.go writes anything. The Service
  applies writes through the stores, which must use an atomic add for
  usage amounts (see UsageStore).

SEE ALSO:
  - engine/: window resolution
  - store.go: persistence interfaces
  - factory/: catalog loading
*/
package benefits

import (
	"time"

	"github.com/colinjianingxie/walletfreak-sub000/engine"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type BenefitID string
type CardID string
type UserID string

// =============================================================================
// BENEFIT - Catalog entry
// =============================================================================

// BenefitType classifies what a benefit delivers.
type BenefitType string

const (
	TypeCredit    BenefitType = "credit"    // Statement credit: dollars back
	TypePerk      BenefitType = "perk"      // Lounge access, status, free nights
	TypeInsurance BenefitType = "insurance" // Coverage valued at its ceiling
)

// Monetary reports whether usage of this type counts as extracted dollars.
func (t BenefitType) Monetary() bool { return t == TypeCredit }

// Benefit is a read-only catalog entry.
type Benefit struct {
	ID          BenefitID
	Name        string
	Description string
	Type        BenefitType
	Config      engine.Config
}

// =============================================================================
// CARD - An account with an anchor date
// =============================================================================

// Card is a user's account. Anchor is the account-open date; changing it
// invalidates all recorded usage for the card's benefits.
type Card struct {
	ID         CardID
	UserID     UserID
	Name       string
	Anchor     engine.Anchor
	BenefitIDs []BenefitID
	CreatedAt  time.Time
}

// HasBenefit reports whether the benefit is attached to the card.
func (c Card) HasBenefit(id BenefitID) bool {
	for _, b := range c.BenefitIDs {
		if b == id {
			return true
		}
	}
	return false
}
