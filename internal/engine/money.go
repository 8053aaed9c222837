package engine

import (
	"github.com/shopspring/decimal"
)

// Currency values carry two fraction digits. Every amount the engine emits has been
// passed through RoundCents.
const centsPlaces = 2

var hundred = decimal.NewFromInt(100)

// RoundCents rounds to the nearest cent, half away from zero. Engine amounts are
// non-negative, so this is round-half-up.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(centsPlaces)
}

// FloorZero returns d, or zero when d is negative.
func FloorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ToCents converts an amount to an integer number of cents after rounding.
func ToCents(d decimal.Decimal) int64 {
	return RoundCents(d).Mul(hundred).IntPart()
}

// FromCents converts an integer number of cents back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -centsPlaces)
}

// Positive reports whether an optional amount is present and strictly greater than zero.
func Positive(d *decimal.Decimal) bool {
	return d != nil && d.IsPositive()
}

// Value dereferences an optional amount, treating absence as zero.
func Value(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// Sum adds amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Ptr returns a pointer to a copy of d.
func Ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
