package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/colinjianingxie/walletfreak-sub000/engine"
)

func TestEffectiveIgnored(t *testing.T) {
	anchor := engine.UnknownAnchor()

	tests := []struct {
		name     string
		override engine.IgnoreOverride
		freq     engine.Frequency
		now      time.Time
		want     bool
	}{
		{
			name:     "ignored last month is stale",
			override: engine.IgnoreOverride{IsIgnored: true, LastUpdated: day(2024, time.June, 1)},
			freq:     engine.Monthly,
			now:      day(2024, time.July, 2),
			want:     false,
		},
		{
			name:     "ignored this month holds",
			override: engine.IgnoreOverride{IsIgnored: true, LastUpdated: day(2024, time.July, 1)},
			freq:     engine.Monthly,
			now:      day(2024, time.July, 2),
			want:     true,
		},
		{
			name:     "ignored last month still holds for a quarterly benefit",
			override: engine.IgnoreOverride{IsIgnored: true, LastUpdated: day(2024, time.August, 1)},
			freq:     engine.Quarterly,
			now:      day(2024, time.September, 30),
			want:     true,
		},
		{
			name:     "missing timestamp",
			override: engine.IgnoreOverride{IsIgnored: true},
			freq:     engine.AnnualCalendar,
			now:      day(2024, time.July, 2),
			want:     false,
		},
		{
			name:     "not ignored",
			override: engine.IgnoreOverride{LastUpdated: day(2024, time.July, 1)},
			freq:     engine.Monthly,
			now:      day(2024, time.July, 2),
			want:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.EffectiveIgnored(tt.override, tt.freq, anchor, tt.now))
		})
	}
}

func TestEffectiveIgnored_Idempotent(t *testing.T) {
	anchor := anchorOn(2022, time.May, 5)
	now := day(2024, time.May, 20)

	for _, f := range engine.Frequencies {
		for _, set := range []time.Time{{}, day(2023, time.December, 31), day(2024, time.May, 5), day(2024, time.May, 19)} {
			o := engine.IgnoreOverride{IsIgnored: true, LastUpdated: set}
			once := engine.EffectiveIgnored(o, f, anchor, now)
			twice := engine.EffectiveIgnored(engine.IgnoreOverride{IsIgnored: once, LastUpdated: set}, f, anchor, now)
			assert.Equal(t, once, twice, "%s set=%s", f, set)
		}
	}
}

func TestIgnoreOverride_Stale(t *testing.T) {
	o := engine.IgnoreOverride{IsIgnored: true, LastUpdated: day(2024, time.March, 31)}

	assert.True(t, o.Stale(engine.Quarterly, engine.UnknownAnchor(), day(2024, time.April, 1)))
	assert.False(t, o.Stale(engine.AnnualCalendar, engine.UnknownAnchor(), day(2024, time.April, 1)))
	assert.False(t, engine.IgnoreOverride{}.Stale(engine.Monthly, engine.UnknownAnchor(), day(2024, time.April, 1)))
}
