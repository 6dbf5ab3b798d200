package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/colinjianingxie/walletfreak-sub000/engine"
)

func dollars(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCeiling_EvenSplit(t *testing.T) {
	tests := []struct {
		freq engine.Frequency
		key  engine.Key
		want string
	}{
		{engine.Monthly, "2024_03", "20"},
		{engine.Quarterly, "2024_Q2", "60"},
		{engine.SemiAnnual, "2024_H1", "120"},
		{engine.AnnualCalendar, "2024", "240"},
		{engine.AnnualAnniversary, "2023", "240"},
		{engine.Quadrennial, "2024_2028", "240"},
		{engine.Frequency("bogus"), "2024", "240"},
	}
	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			cfg := engine.Config{AnnualCeiling: dollars("240"), Frequency: tt.freq}
			assert.True(t, cfg.Ceiling(tt.key).Equal(dollars(tt.want)), "got %s", cfg.Ceiling(tt.key))
		})
	}
}

func TestCeiling_OverrideWins(t *testing.T) {
	cfg := engine.Config{
		AnnualCeiling: dollars("120"),
		Frequency:     engine.Monthly,
		Overrides: map[engine.Key]decimal.Decimal{
			"2024_12": dollars("35"),
			"2024_Q4": dollars("999"), // can never match a monthly key
		},
	}

	assert.True(t, cfg.Ceiling("2024_12").Equal(dollars("35")))
	assert.True(t, cfg.Ceiling("2024_11").Equal(dollars("10")))
	assert.True(t, cfg.Ceiling("2025_12").Equal(dollars("10")))
}

func TestCeiling_PartitionSumsToAnnual(t *testing.T) {
	for _, annual := range []string{"100", "200", "155", "89.99", "0.01", "1000.07"} {
		for _, f := range []engine.Frequency{engine.Monthly, engine.Quarterly, engine.SemiAnnual} {
			cfg := engine.Config{AnnualCeiling: dollars(annual), Frequency: f}

			total := decimal.Zero
			for _, w := range cfg.Series(engine.UnknownAnchor(), 2024, day(2024, time.June, 1)) {
				total = total.Add(w.Ceiling)
			}
			assert.True(t, total.Equal(cfg.AnnualCeiling), "%s %s: sum %s", f, annual, total)
		}
	}
}

func TestCeiling_ResidueLandsOnFinalWindow(t *testing.T) {
	cfg := engine.Config{AnnualCeiling: dollars("100"), Frequency: engine.Monthly}

	assert.True(t, cfg.Ceiling("2024_01").Equal(dollars("8.33")))
	assert.True(t, cfg.Ceiling("2024_11").Equal(dollars("8.33")))
	assert.True(t, cfg.Ceiling("2024_12").Equal(dollars("8.37")))
}

func TestConfig_FillsCeilingOnWindows(t *testing.T) {
	cfg := engine.Config{AnnualCeiling: dollars("200"), Frequency: engine.Quarterly}
	now := day(2024, time.August, 1)

	assert.True(t, cfg.Current(engine.UnknownAnchor(), now).Ceiling.Equal(dollars("50")))
	assert.True(t, cfg.CycleCeiling(engine.UnknownAnchor(), now).Equal(dollars("200")))

	w, err := cfg.WindowFor(engine.UnknownAnchor(), "2024_Q1", now)
	assert.NoError(t, err)
	assert.True(t, w.Ceiling.Equal(dollars("50")))
}
