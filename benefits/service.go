/*
service.go - Orchestration of stores and the window engine

The Service is what the HTTP handlers, the CLI and the reminder scheduler
call. It loads entries from the stores, hands them to the pure functions in
aggregate.go and reminders.go, and applies writes.

WRITE RULES:
  - Usage is recorded against a concrete window key. An empty key means
    "the window that is current now".
  - The key must have the shape of the benefit's frequency; otherwise the
    write is rejected with a *WindowError.
  - A card created without an ID gets a random UUID.
  - Changing a card's anchor moves every window boundary, so all recorded
    usage for the card's benefits is reset.
  - Stale ignore flags are cleared in storage the next time a dashboard is
    built. Reads never depend on that write having happened.
*/
package benefits

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/colinjianingxie/walletfreak-sub000/engine"
)

// Service coordinates catalog, cards and usage.
type Service struct {
	Catalog Catalog
	Cards   CardStore
	Usage   UsageStore
	Clock   engine.Clock
	Logger  *slog.Logger
}

// NewService wires a service with the system clock and default logger.
func NewService(catalog Catalog, cards CardStore, usage UsageStore) *Service {
	return &Service{
		Catalog: catalog,
		Cards:   cards,
		Usage:   usage,
		Clock:   engine.SystemClock{},
		Logger:  slog.Default(),
	}
}

// Now is the service clock's current instant.
func (s *Service) Now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// =============================================================================
// CARDS
// =============================================================================

// CreateCard validates the card's benefits against the catalog and saves it.
func (s *Service) CreateCard(ctx context.Context, card Card) (Card, error) {
	if card.UserID == "" {
		return Card{}, fmt.Errorf("%w: user_id is required", ErrInvalidCard)
	}
	if card.ID == "" {
		card.ID = CardID(uuid.New().String())
	}
	for _, id := range card.BenefitIDs {
		if _, err := s.Catalog.Benefit(ctx, id); err != nil {
			return Card{}, err
		}
	}
	if card.CreatedAt.IsZero() {
		card.CreatedAt = s.Now()
	}
	if err := s.Cards.SaveCard(ctx, card); err != nil {
		return Card{}, err
	}
	s.logger().InfoContext(ctx, "card created",
		"card_id", card.ID, "user_id", card.UserID, "benefits", len(card.BenefitIDs))
	return card, nil
}

func (s *Service) Card(ctx context.Context, id CardID) (Card, error) {
	return s.Cards.Card(ctx, id)
}

// UpdateAnchor changes the card's anchor and resets usage for every
// benefit on the card. A no-op when the anchor is unchanged.
//
// Usage is reset before the anchor is written. A failed reset leaves the
// old anchor in place and a retry starts the reset over.
func (s *Service) UpdateAnchor(ctx context.Context, id CardID, anchor engine.Anchor) (Card, error) {
	card, err := s.Cards.Card(ctx, id)
	if err != nil {
		return Card{}, err
	}
	if card.Anchor.Equal(anchor) {
		return card, nil
	}
	for _, b := range card.BenefitIDs {
		if err := s.Usage.ResetUsage(ctx, id, b); err != nil {
			return Card{}, fmt.Errorf("reset usage %s/%s: %w", id, b, err)
		}
	}
	if err := s.Cards.UpdateAnchor(ctx, id, anchor); err != nil {
		return Card{}, err
	}
	s.logger().InfoContext(ctx, "anchor updated",
		"card_id", id, "from", card.Anchor.String(), "to", anchor.String())
	card.Anchor = anchor
	return card, nil
}

// =============================================================================
// READS
// =============================================================================

// Dashboard builds the summary for every card the user holds.
func (s *Service) Dashboard(ctx context.Context, userID UserID) (Summary, error) {
	cards, err := s.Cards.CardsByUser(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	entries, err := s.entries(ctx, cards)
	if err != nil {
		return Summary{}, err
	}

	now := s.Now()
	sum := Aggregate(entries, now)
	s.clearStale(ctx, sum.Stale(), now)
	return sum, nil
}

// WindowState pairs a window with the usage recorded against it.
type WindowState struct {
	Window engine.Window
	Usage  engine.UsageState
}

// Windows returns every window of the benefit overlapping the calendar year.
func (s *Service) Windows(ctx context.Context, cardID CardID, benefitID BenefitID, year int) ([]WindowState, error) {
	card, benefit, err := s.pair(ctx, cardID, benefitID)
	if err != nil {
		return nil, err
	}
	usage, err := s.Usage.Usage(ctx, cardID, benefitID)
	if err != nil {
		return nil, err
	}

	series := benefit.Config.Series(card.Anchor, year, s.Now())
	out := make([]WindowState, 0, len(series))
	for _, w := range series {
		out = append(out, WindowState{Window: w, Usage: engine.State(usage[w.Key], w.Ceiling)})
	}
	return out, nil
}

// Reminders evaluates every card and returns benefits closing within the
// given number of days with value left.
func (s *Service) Reminders(ctx context.Context, within int) ([]Reminder, error) {
	cards, err := s.Cards.AllCards(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries(ctx, cards)
	if err != nil {
		return nil, err
	}
	return FindReminders(entries, s.Now(), within), nil
}

// =============================================================================
// WRITES
// =============================================================================

// RecordUsage adds amount to a window. Negative amounts correct earlier
// entries; zero is rejected. Returns the window's updated state.
func (s *Service) RecordUsage(ctx context.Context, cardID CardID, benefitID BenefitID, key engine.Key, amount decimal.Decimal) (WindowState, error) {
	if amount.IsZero() {
		return WindowState{}, fmt.Errorf("%w: amount must be non-zero", ErrInvalidAmount)
	}
	card, benefit, w, err := s.window(ctx, cardID, benefitID, key)
	if err != nil {
		return WindowState{}, err
	}
	if err := s.Usage.AddUsage(ctx, cardID, benefitID, w.Key, amount, s.Now()); err != nil {
		return WindowState{}, err
	}
	s.logger().InfoContext(ctx, "usage recorded",
		"card_id", card.ID, "benefit_id", benefit.ID, "window", w.Key, "amount", amount.String())
	return s.windowState(ctx, cardID, benefitID, w)
}

// MarkFull sets or clears the explicit "fully used" flag on a window.
func (s *Service) MarkFull(ctx context.Context, cardID CardID, benefitID BenefitID, key engine.Key, full bool) (WindowState, error) {
	_, _, w, err := s.window(ctx, cardID, benefitID, key)
	if err != nil {
		return WindowState{}, err
	}
	if err := s.Usage.SetFull(ctx, cardID, benefitID, w.Key, full, s.Now()); err != nil {
		return WindowState{}, err
	}
	return s.windowState(ctx, cardID, benefitID, w)
}

// SetIgnored sets the user's ignore flag for a (card, benefit) pair.
func (s *Service) SetIgnored(ctx context.Context, cardID CardID, benefitID BenefitID, ignored bool) error {
	if _, _, err := s.pair(ctx, cardID, benefitID); err != nil {
		return err
	}
	return s.Usage.SetIgnored(ctx, cardID, benefitID, ignored, s.Now())
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Service) pair(ctx context.Context, cardID CardID, benefitID BenefitID) (Card, Benefit, error) {
	card, err := s.Cards.Card(ctx, cardID)
	if err != nil {
		return Card{}, Benefit{}, err
	}
	if !card.HasBenefit(benefitID) {
		return Card{}, Benefit{}, fmt.Errorf("%w: %s on %s", ErrBenefitNotOnCard, benefitID, cardID)
	}
	benefit, err := s.Catalog.Benefit(ctx, benefitID)
	if err != nil {
		return Card{}, Benefit{}, err
	}
	return card, benefit, nil
}

// window resolves key (or the current window when key is empty).
func (s *Service) window(ctx context.Context, cardID CardID, benefitID BenefitID, key engine.Key) (Card, Benefit, engine.Window, error) {
	card, benefit, err := s.pair(ctx, cardID, benefitID)
	if err != nil {
		return Card{}, Benefit{}, engine.Window{}, err
	}
	now := s.Now()
	if key == "" {
		return card, benefit, benefit.Config.Current(card.Anchor, now), nil
	}
	w, err := benefit.Config.WindowFor(card.Anchor, key, now)
	if err != nil {
		return Card{}, Benefit{}, engine.Window{}, &WindowError{
			BenefitID: benefitID,
			Key:       key,
			Frequency: benefit.Config.Frequency,
			Err:       err,
		}
	}
	return card, benefit, w, nil
}

func (s *Service) windowState(ctx context.Context, cardID CardID, benefitID BenefitID, w engine.Window) (WindowState, error) {
	usage, err := s.Usage.Usage(ctx, cardID, benefitID)
	if err != nil {
		return WindowState{}, err
	}
	return WindowState{Window: w, Usage: engine.State(usage[w.Key], w.Ceiling)}, nil
}

func (s *Service) entries(ctx context.Context, cards []Card) ([]Entry, error) {
	var entries []Entry
	for _, card := range cards {
		for _, id := range card.BenefitIDs {
			benefit, err := s.Catalog.Benefit(ctx, id)
			if errors.Is(err, ErrBenefitNotFound) {
				s.logger().WarnContext(ctx, "card references unknown benefit",
					"card_id", card.ID, "benefit_id", id)
				continue
			}
			if err != nil {
				return nil, err
			}
			usage, err := s.Usage.Usage(ctx, card.ID, id)
			if err != nil {
				return nil, err
			}
			ignore, err := s.Usage.Ignore(ctx, card.ID, id)
			if err != nil {
				return nil, err
			}
			entries = append(entries, Entry{Card: card, Benefit: benefit, Usage: usage, Ignore: ignore})
		}
	}
	return entries, nil
}

// clearStale persists the lapse of ignore flags. Failures are logged only;
// the summary was computed without relying on this write. The clear only
// applies to flags still older than the current window, so an ignore set
// after the dashboard read is kept.
func (s *Service) clearStale(ctx context.Context, stale []BenefitView, now time.Time) {
	for _, v := range stale {
		cleared, err := s.Usage.ClearIgnoredBefore(ctx, v.CardID, v.BenefitID, v.Window.Start, now)
		if err != nil {
			s.logger().WarnContext(ctx, "clear stale ignore failed",
				"card_id", v.CardID, "benefit_id", v.BenefitID, "error", err)
			continue
		}
		if !cleared {
			continue
		}
		s.logger().InfoContext(ctx, "stale ignore cleared",
			"card_id", v.CardID, "benefit_id", v.BenefitID, "window", v.Window.Key)
	}
}
