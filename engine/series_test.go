package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colinjianingxie/walletfreak-sub000/engine"
)

func testAnchors() map[string]engine.Anchor {
	return map[string]engine.Anchor{
		"unknown":       engine.UnknownAnchor(),
		"jan 1":         anchorOn(2022, time.January, 1),
		"leap day":      anchorOn(2020, time.February, 29),
		"mid year":      anchorOn(2023, time.June, 17),
		"new years eve": anchorOn(2021, time.December, 31),
		"future":        anchorOn(2027, time.April, 4),
	}
}

func TestSeries_AgreesWithCurrent(t *testing.T) {
	// For every instant, the window Series flags as current must be exactly
	// the window Current resolves, availability included.
	for name, anchor := range testAnchors() {
		for _, f := range engine.Frequencies {
			t.Run(name+"/"+string(f), func(t *testing.T) {
				for now := day(2023, time.January, 1); now.Before(day(2027, time.January, 1)); now = now.Add(77 * time.Hour) {
					series := engine.Series(f, anchor, now.Year(), now)

					var flagged []engine.Window
					for _, w := range series {
						if w.Current {
							flagged = append(flagged, w)
						}
					}
					require.Len(t, flagged, 1, "now=%s keys=%v", now, keysOf(series))
					require.Equal(t, engine.Current(f, anchor, now), flagged[0], "now=%s", now)
				}
			})
		}
	}
}

func TestSeries_WindowsAreContiguous(t *testing.T) {
	now := day(2024, time.May, 20)
	for _, f := range engine.Frequencies {
		t.Run(string(f), func(t *testing.T) {
			series := engine.Series(f, anchorOn(2022, time.September, 9), 2024, now)
			require.NotEmpty(t, series)
			for i := 1; i < len(series); i++ {
				assert.Equal(t, series[i-1].End, series[i].Start)
			}
		})
	}
}

func TestSeries_Shapes(t *testing.T) {
	anchor := anchorOn(2022, time.September, 9)
	now := day(2024, time.May, 20)

	assert.Equal(t,
		[]engine.Key{"2024_01", "2024_02", "2024_03", "2024_04", "2024_05", "2024_06",
			"2024_07", "2024_08", "2024_09", "2024_10", "2024_11", "2024_12"},
		keysOf(engine.Series(engine.Monthly, anchor, 2024, now)))
	assert.Equal(t,
		[]engine.Key{"2024_Q1", "2024_Q2", "2024_Q3", "2024_Q4"},
		keysOf(engine.Series(engine.Quarterly, anchor, 2024, now)))
	assert.Equal(t,
		[]engine.Key{"2024_H1", "2024_H2"},
		keysOf(engine.Series(engine.SemiAnnual, anchor, 2024, now)))
	assert.Equal(t,
		[]engine.Key{"2024"},
		keysOf(engine.Series(engine.AnnualCalendar, anchor, 2024, now)))
	assert.Equal(t,
		[]engine.Key{"2023", "2024"},
		keysOf(engine.Series(engine.AnnualAnniversary, anchor, 2024, now)))
	assert.Equal(t,
		[]engine.Key{"2022_2026"},
		keysOf(engine.Series(engine.Quadrennial, anchor, 2024, now)))
	assert.Equal(t,
		[]engine.Key{"2022_2026", "2026_2030"},
		keysOf(engine.Series(engine.Quadrennial, anchor, 2026, now)))
}

func TestSeries_JanuaryFirstAnniversaryHasOneWindow(t *testing.T) {
	series := engine.Series(engine.AnnualAnniversary, anchorOn(2020, time.January, 1), 2024, day(2024, time.July, 1))

	require.Len(t, series, 1)
	assert.Equal(t, engine.Key("2024"), series[0].Key)
}

func TestSeries_PastYearHasNoCurrentWindow(t *testing.T) {
	series := engine.Series(engine.Monthly, anchorOn(2022, time.March, 3), 2022, day(2024, time.May, 20))

	for _, w := range series {
		assert.False(t, w.Current, w.Key)
	}
	assert.False(t, findWindow(t, series, "2022_02").Available)
	assert.True(t, findWindow(t, series, "2022_03").Available)
}

func TestCycle(t *testing.T) {
	now := day(2024, time.May, 20)
	anchor := anchorOn(2022, time.September, 9)

	assert.Len(t, engine.Cycle(engine.Monthly, anchor, now), 12)
	assert.Len(t, engine.Cycle(engine.Quarterly, anchor, now), 4)

	annual := engine.Cycle(engine.AnnualAnniversary, anchor, now)
	require.Len(t, annual, 1)
	assert.Equal(t, engine.Key("2023"), annual[0].Key)
	assert.True(t, annual[0].Current)
}
