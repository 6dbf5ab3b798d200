// Package memory provides in-memory CardStore and UsageStore
// implementations for tests and local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/colinjianingxie/walletfreak-sub000/benefits"
	"github.com/colinjianingxie/walletfreak-sub000/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Store implements benefits.CardStore and benefits.UsageStore. A single
// mutex serializes writes, which makes AddUsage atomic.
type Store struct {
	mu      sync.RWMutex
	cards   map[benefits.CardID]benefits.Card
	usage   map[pair]map[engine.Key]engine.UsageRecord
	ignores map[pair]engine.IgnoreOverride
}

type pair struct {
	Card    benefits.CardID
	Benefit benefits.BenefitID
}

func New() *Store {
	return &Store{
		cards:   make(map[benefits.CardID]benefits.Card),
		usage:   make(map[pair]map[engine.Key]engine.UsageRecord),
		ignores: make(map[pair]engine.IgnoreOverride),
	}
}

// =============================================================================
// CARDS
// =============================================================================

func (s *Store) SaveCard(_ context.Context, card benefits.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[card.ID]; ok {
		return fmt.Errorf("%w: %s", benefits.ErrDuplicateCard, card.ID)
	}
	s.cards[card.ID] = cloneCard(card)
	return nil
}

func (s *Store) Card(_ context.Context, id benefits.CardID) (benefits.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, ok := s.cards[id]
	if !ok {
		return benefits.Card{}, fmt.Errorf("%w: %s", benefits.ErrCardNotFound, id)
	}
	return cloneCard(card), nil
}

func (s *Store) CardsByUser(_ context.Context, userID benefits.UserID) ([]benefits.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []benefits.Card
	for _, c := range s.cards {
		if c.UserID == userID {
			out = append(out, cloneCard(c))
		}
	}
	sortCards(out)
	return out, nil
}

func (s *Store) AllCards(_ context.Context) ([]benefits.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]benefits.Card, 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, cloneCard(c))
	}
	sortCards(out)
	return out, nil
}

func (s *Store) UpdateAnchor(_ context.Context, id benefits.CardID, anchor engine.Anchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cards[id]
	if !ok {
		return fmt.Errorf("%w: %s", benefits.ErrCardNotFound, id)
	}
	card.Anchor = anchor
	s.cards[id] = card
	return nil
}

// cloneCard copies the BenefitIDs slice so callers never share it with the map.
func cloneCard(c benefits.Card) benefits.Card {
	c.BenefitIDs = append([]benefits.BenefitID(nil), c.BenefitIDs...)
	return c
}

func sortCards(cards []benefits.Card) {
	sort.Slice(cards, func(i, j int) bool {
		if !cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].CreatedAt.Before(cards[j].CreatedAt)
		}
		return cards[i].ID < cards[j].ID
	})
}

// =============================================================================
// USAGE
// =============================================================================

func (s *Store) Usage(_ context.Context, card benefits.CardID, benefit benefits.BenefitID) (map[engine.Key]engine.UsageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.usage[pair{card, benefit}]
	out := make(map[engine.Key]engine.UsageRecord, len(src))
	for k, r := range src {
		out[k] = r
	}
	return out, nil
}

func (s *Store) AddUsage(_ context.Context, card benefits.CardID, benefit benefits.BenefitID, key engine.Key, delta decimal.Decimal, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.records(pair{card, benefit})
	r := records[key]
	r.Used = r.Used.Add(delta)
	r.LastUpdated = at
	records[key] = r
	return nil
}

func (s *Store) SetFull(_ context.Context, card benefits.CardID, benefit benefits.BenefitID, key engine.Key, full bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.records(pair{card, benefit})
	r := records[key]
	r.IsFull = full
	r.LastUpdated = at
	records[key] = r
	return nil
}

func (s *Store) ResetUsage(_ context.Context, card benefits.CardID, benefit benefits.BenefitID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.usage, pair{card, benefit})
	return nil
}

// records returns the pair's record map, creating it. Caller holds mu.
func (s *Store) records(p pair) map[engine.Key]engine.UsageRecord {
	m, ok := s.usage[p]
	if !ok {
		m = make(map[engine.Key]engine.UsageRecord)
		s.usage[p] = m
	}
	return m
}

// =============================================================================
// IGNORE OVERRIDES
// =============================================================================

func (s *Store) Ignore(_ context.Context, card benefits.CardID, benefit benefits.BenefitID) (engine.IgnoreOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ignores[pair{card, benefit}], nil
}

func (s *Store) SetIgnored(_ context.Context, card benefits.CardID, benefit benefits.BenefitID, ignored bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ignores[pair{card, benefit}] = engine.IgnoreOverride{IsIgnored: ignored, LastUpdated: at}
	return nil
}

func (s *Store) ClearIgnoredBefore(_ context.Context, card benefits.CardID, benefit benefits.BenefitID, before, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := pair{card, benefit}
	o := s.ignores[p]
	if !o.IsIgnored || !o.LastUpdated.Before(before) {
		return false, nil
	}
	s.ignores[p] = engine.IgnoreOverride{IsIgnored: false, LastUpdated: at}
	return true, nil
}

var (
	_ benefits.CardStore  = (*Store)(nil)
	_ benefits.UsageStore = (*Store)(nil)
)
