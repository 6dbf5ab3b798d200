/*
store.go - Persistence interfaces

KEY INTERFACES:
  Catalog:    read-only benefit definitions
  CardStore:  cards and their anchor dates
  UsageStore: per-window usage records and ignore overrides

ATOMIC ADD CONTRACT:
  Two requests recording usage for the same window at the same time must
  both be counted. AddUsage therefore has to be an atomic increment in the
  backing store (SQL "used = used + ?", Redis HINCRBY, a mutex-guarded map),
  never a read-modify-write in application code. SetFull and SetIgnored are
  plain last-writer-wins flag writes.

IMPLEMENTATIONS:
  - store/memory: in-memory (tests, dev)
  - store/sqlite: cards + usage in SQLite
  - store/redis:  usage in Redis hashes
*/
package benefits

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/colinjianingxie/walletfreak-sub000/engine"
)

// Catalog supplies benefit definitions.
type Catalog interface {
	// Benefit returns ErrBenefitNotFound for unknown IDs.
	Benefit(ctx context.Context, id BenefitID) (Benefit, error)
	Benefits(ctx context.Context) ([]Benefit, error)
}

// CardStore persists cards.
type CardStore interface {
	// SaveCard creates a card. Returns ErrDuplicateCard if the ID exists.
	SaveCard(ctx context.Context, card Card) error

	// Card returns ErrCardNotFound for unknown IDs.
	Card(ctx context.Context, id CardID) (Card, error)

	CardsByUser(ctx context.Context, userID UserID) ([]Card, error)
	AllCards(ctx context.Context) ([]Card, error)

	// UpdateAnchor changes the anchor date only. Clearing usage is the
	// caller's job (see Service.UpdateAnchor).
	UpdateAnchor(ctx context.Context, id CardID, anchor engine.Anchor) error
}

// UsageStore persists usage records and ignore overrides.
type UsageStore interface {
	// Usage returns every window record for the pair; empty map if none.
	Usage(ctx context.Context, card CardID, benefit BenefitID) (map[engine.Key]engine.UsageRecord, error)

	// AddUsage atomically adds delta to the window's Used, creating the
	// record if needed.
	AddUsage(ctx context.Context, card CardID, benefit BenefitID, key engine.Key, delta decimal.Decimal, at time.Time) error

	// SetFull sets the window's explicit "fully used" flag.
	SetFull(ctx context.Context, card CardID, benefit BenefitID, key engine.Key, full bool, at time.Time) error

	// Ignore returns the pair's override; the zero value if none.
	Ignore(ctx context.Context, card CardID, benefit BenefitID) (engine.IgnoreOverride, error)

	SetIgnored(ctx context.Context, card CardID, benefit BenefitID, ignored bool, at time.Time) error

	// ClearIgnoredBefore atomically clears the ignore flag only if it is set
	// and was last updated before the given instant. Reports whether it
	// cleared anything; a newer ignore is left alone.
	ClearIgnoredBefore(ctx context.Context, card CardID, benefit BenefitID, before, at time.Time) (bool, error)

	// ResetUsage deletes every window record for the pair.
	ResetUsage(ctx context.Context, card CardID, benefit BenefitID) error
}
