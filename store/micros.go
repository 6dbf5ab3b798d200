// Package store holds helpers shared by the storage backends.
//
// Usage amounts are persisted as integer micro-units (1 unit = 1_000_000
// micros) so that backends can add them atomically with native integer
// arithmetic: SQL "used = used + ?" or Redis HINCRBY. Six places covers
// the two-place ceilings with room for fractional-cent corrections.
package store

import "github.com/shopspring/decimal"

// MicroPlaces is the number of decimal places kept in storage.
const MicroPlaces int32 = 6

// ToMicros converts an amount to micro-units, rounding half away from zero.
func ToMicros(d decimal.Decimal) int64 {
	return d.Shift(MicroPlaces).Round(0).IntPart()
}

// FromMicros converts micro-units back to an amount.
func FromMicros(m int64) decimal.Decimal {
	return decimal.New(m, -MicroPlaces)
}
