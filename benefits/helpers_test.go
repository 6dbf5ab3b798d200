package benefits_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/colinjianingxie/walletfreak-sub000/benefits"
	"github.com/colinjianingxie/walletfreak-sub000/engine"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func dollars(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func credit(id string, freq engine.Frequency, annual string) benefits.Benefit {
	return benefits.Benefit{
		ID:     benefits.BenefitID(id),
		Name:   id,
		Type:   benefits.TypeCredit,
		Config: engine.Config{AnnualCeiling: dollars(annual), Frequency: freq},
	}
}

func typed(b benefits.Benefit, t benefits.BenefitType) benefits.Benefit {
	b.Type = t
	return b
}

func used(amount string) engine.UsageRecord {
	return engine.UsageRecord{Used: dollars(amount)}
}

var platinum = benefits.Card{
	ID:     "plat",
	UserID: "u1",
	Name:   "Platinum",
	Anchor: engine.KnownAnchor(day(2021, time.June, 15)),
}
