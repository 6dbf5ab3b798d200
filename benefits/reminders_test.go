package benefits_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colinjianingxie/walletfreak-sub000/benefits"
	"github.com/colinjianingxie/walletfreak-sub000/engine"
)

func TestFindReminders(t *testing.T) {
	now := day(2024, time.May, 25)

	future := benefits.Card{ID: "new", UserID: "u1", Anchor: engine.KnownAnchor(day(2024, time.June, 3))}

	entries := []benefits.Entry{
		{Card: platinum, Benefit: credit("saks", engine.SemiAnnual, "100")},
		{
			Card:    platinum,
			Benefit: credit("uber", engine.Monthly, "120"),
			Usage:   map[engine.Key]engine.UsageRecord{"2024_05": used("4")},
		},
		{Card: platinum, Benefit: credit("airline", engine.AnnualCalendar, "200")},
		{
			Card:    platinum,
			Benefit: credit("dining", engine.Monthly, "120"),
			Usage:   map[engine.Key]engine.UsageRecord{"2024_05": {IsFull: true}},
		},
		{
			Card:    platinum,
			Benefit: credit("resy", engine.Monthly, "120"),
			Ignore:  engine.IgnoreOverride{IsIgnored: true, LastUpdated: day(2024, time.May, 2)},
		},
		{Card: future, Benefit: credit("uber", engine.Monthly, "120")},
	}

	got := benefits.FindReminders(entries, now, 7)
	require.Len(t, got, 1)
	r := got[0]
	assert.Equal(t, benefits.BenefitID("uber"), r.BenefitID)
	assert.Equal(t, benefits.CardID("plat"), r.CardID)
	assert.Equal(t, benefits.UserID("u1"), r.UserID)
	assert.Equal(t, engine.Key("2024_05"), r.Window.Key)
	assert.True(t, r.Remaining.Equal(dollars("6")))
	assert.Equal(t, 7, r.DaysRemaining)

	// A wider horizon picks up the half-year credit, soonest first.
	got = benefits.FindReminders(entries, now, 40)
	require.Len(t, got, 2)
	assert.Equal(t, benefits.BenefitID("uber"), got[0].BenefitID)
	assert.Equal(t, benefits.BenefitID("saks"), got[1].BenefitID)
	assert.Equal(t, 37, got[1].DaysRemaining)
}

func TestFindReminders_StaleIgnoreReminds(t *testing.T) {
	now := day(2024, time.June, 28)
	e := benefits.Entry{
		Card:    platinum,
		Benefit: credit("resy", engine.Monthly, "120"),
		// Ignored in May; June is a new window.
		Ignore: engine.IgnoreOverride{IsIgnored: true, LastUpdated: day(2024, time.May, 20)},
	}
	got := benefits.FindReminders([]benefits.Entry{e}, now, 5)
	require.Len(t, got, 1)
	assert.Equal(t, engine.Key("2024_06"), got[0].Window.Key)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := benefits.LogNotifier{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	err := n.Notify(context.Background(), []benefits.Reminder{{
		CardID:        "plat",
		UserID:        "u1",
		BenefitID:     "uber",
		Window:        engine.Window{Key: "2024_05"},
		Remaining:     dollars("6"),
		DaysRemaining: 7,
	}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"benefit_id":"uber"`)
	assert.Contains(t, buf.String(), `"remaining":"6.00"`)
	assert.Contains(t, buf.String(), `"days_remaining":7`)
}
