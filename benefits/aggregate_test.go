package benefits_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colinjianingxie/walletfreak-sub000/benefits"
	"github.com/colinjianingxie/walletfreak-sub000/engine"
)

func idsOf(views []benefits.BenefitView) []benefits.BenefitID {
	var out []benefits.BenefitID
	for _, v := range views {
		out = append(out, v.BenefitID)
	}
	return out
}

func TestAggregate_Buckets(t *testing.T) {
	now := day(2024, time.May, 10)

	entries := []benefits.Entry{
		{
			Card:    platinum,
			Benefit: credit("uber", engine.Monthly, "200"),
			Usage: map[engine.Key]engine.UsageRecord{
				"2024_01": used("15"),
				"2024_05": used("16.67"),
				"2023_12": used("35"), // previous cycle
			},
		},
		{Card: platinum, Benefit: credit("airline", engine.AnnualCalendar, "200")},
		{Card: platinum, Benefit: typed(credit("lounge", engine.AnnualCalendar, "0"), benefits.TypePerk)},
		{
			Card:    platinum,
			Benefit: typed(credit("trip-delay", engine.AnnualCalendar, "500"), benefits.TypeInsurance),
			Usage:   map[engine.Key]engine.UsageRecord{"2024": used("100")},
		},
		{
			Card:    platinum,
			Benefit: credit("saks", engine.SemiAnnual, "100"),
			Ignore:  engine.IgnoreOverride{IsIgnored: true, LastUpdated: day(2024, time.February, 1)},
		},
		{
			Card:    platinum,
			Benefit: credit("hilton", engine.Quarterly, "200"),
			Ignore:  engine.IgnoreOverride{IsIgnored: true, LastUpdated: day(2024, time.March, 15)},
		},
	}

	sum := benefits.Aggregate(entries, now)

	assert.Equal(t, []benefits.BenefitID{"uber"}, idsOf(sum.Full))
	assert.Equal(t, []benefits.BenefitID{"airline", "trip-delay", "hilton"}, idsOf(sum.NeedsAction))
	assert.Equal(t, []benefits.BenefitID{"saks"}, idsOf(sum.Ignored))

	// 200 + 200 + 500 + 200; saks is ignored, lounge has no value.
	assert.True(t, sum.TotalPotentialValue.Equal(dollars("1100")), sum.TotalPotentialValue.String())
	// Only credits count: uber 15 + 16.67.
	assert.True(t, sum.TotalExtractedValue.Equal(dollars("31.67")), sum.TotalExtractedValue.String())

	stale := sum.Stale()
	require.Len(t, stale, 1)
	assert.Equal(t, benefits.BenefitID("hilton"), stale[0].BenefitID)
	assert.False(t, stale[0].Ignored)

	assert.Len(t, sum.Views(), 5)
}

func TestAggregate_ExactlyOneBucket(t *testing.T) {
	now := day(2024, time.August, 20)
	b := credit("uber", engine.Monthly, "120")

	cases := []benefits.Entry{
		{Card: platinum, Benefit: b},
		{Card: platinum, Benefit: b, Usage: map[engine.Key]engine.UsageRecord{"2024_08": used("3")}},
		{Card: platinum, Benefit: b, Usage: map[engine.Key]engine.UsageRecord{"2024_08": {IsFull: true}}},
		{Card: platinum, Benefit: b, Ignore: engine.IgnoreOverride{IsIgnored: true, LastUpdated: now}},
		{
			Card:    platinum,
			Benefit: b,
			Usage:   map[engine.Key]engine.UsageRecord{"2024_08": {IsFull: true}},
			Ignore:  engine.IgnoreOverride{IsIgnored: true, LastUpdated: now},
		},
	}
	want := []benefits.Bucket{
		benefits.BucketNeedsAction,
		benefits.BucketNeedsAction,
		benefits.BucketFull,
		benefits.BucketIgnored,
		benefits.BucketIgnored,
	}

	for i, e := range cases {
		sum := benefits.Aggregate([]benefits.Entry{e}, now)
		assert.Len(t, sum.Views(), 1, "case %d", i)
		v, ok := benefits.Evaluate(e, now)
		require.True(t, ok)
		assert.Equal(t, want[i], v.Bucket, "case %d", i)
	}
}

func TestEvaluate_View(t *testing.T) {
	now := day(2024, time.May, 10)
	e := benefits.Entry{
		Card:    platinum,
		Benefit: credit("uber", engine.Monthly, "120"),
		Usage:   map[engine.Key]engine.UsageRecord{"2024_05": used("4")},
	}

	v, ok := benefits.Evaluate(e, now)
	require.True(t, ok)
	assert.Equal(t, engine.Key("2024_05"), v.Window.Key)
	assert.Equal(t, engine.StatusPartial, v.Usage.Status)
	assert.True(t, v.Usage.Remaining.Equal(dollars("6")))
	assert.Equal(t, 22, v.DaysRemaining)
	assert.True(t, v.CycleCeiling.Equal(dollars("120")))
	assert.Equal(t, "Platinum", v.CardName)
}

func TestAggregate_Empty(t *testing.T) {
	sum := benefits.Aggregate(nil, day(2024, time.May, 10))
	assert.True(t, sum.TotalPotentialValue.IsZero())
	assert.True(t, sum.TotalExtractedValue.IsZero())
	assert.Empty(t, sum.Views())
}

func TestAggregate_AnniversaryYearToDate(t *testing.T) {
	// Anchor June 15: on 2024-05-10 the open window is 2023-06-15..2024-06-15.
	now := day(2024, time.May, 10)
	e := benefits.Entry{
		Card:    platinum,
		Benefit: credit("csr", engine.AnnualAnniversary, "300"),
		Usage: map[engine.Key]engine.UsageRecord{
			"2023": used("120"),
			"2022": used("300"),
		},
	}
	sum := benefits.Aggregate([]benefits.Entry{e}, now)
	assert.True(t, sum.TotalExtractedValue.Equal(dollars("120")))
	assert.True(t, sum.TotalPotentialValue.Equal(dollars("300")))
}
