package benefits

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/colinjianingxie/walletfreak-sub000/engine"
)

// Reminder flags a benefit with unused value in a window that closes soon.
type Reminder struct {
	CardID        CardID
	UserID        UserID
	BenefitID     BenefitID
	BenefitName   string
	Window        engine.Window
	Remaining     decimal.Decimal
	DaysRemaining int
}

// FindReminders picks entries whose current window is open, not full, has
// value left, and closes within the given number of days. Ignored entries
// (after staleness) are skipped. Results are ordered by days remaining.
func FindReminders(entries []Entry, now time.Time, within int) []Reminder {
	var out []Reminder
	for _, e := range entries {
		v, ok := Evaluate(e, now)
		if !ok || v.Ignored || !v.Window.Available {
			continue
		}
		if v.Usage.Status == engine.StatusFull || !v.Usage.Remaining.IsPositive() {
			continue
		}
		if v.DaysRemaining > within {
			continue
		}
		out = append(out, Reminder{
			CardID:        e.Card.ID,
			UserID:        e.Card.UserID,
			BenefitID:     e.Benefit.ID,
			BenefitName:   e.Benefit.Name,
			Window:        v.Window,
			Remaining:     v.Usage.Remaining,
			DaysRemaining: v.DaysRemaining,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysRemaining < out[j].DaysRemaining
	})
	return out
}

// Notifier delivers reminders. Delivery channels live outside this package.
type Notifier interface {
	Notify(ctx context.Context, reminders []Reminder) error
}

// LogNotifier writes one structured log line per reminder.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, reminders []Reminder) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, r := range reminders {
		logger.InfoContext(ctx, "benefit expiring",
			"user_id", r.UserID,
			"card_id", r.CardID,
			"benefit_id", r.BenefitID,
			"window", r.Window.Key,
			"remaining", r.Remaining.StringFixed(engine.CeilingPlaces),
			"days_remaining", r.DaysRemaining,
		)
	}
	return nil
}
