package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Settings carries the organization-level knobs the engine needs. Callers build it
// from configuration and pass it in explicitly.
type Settings struct {
	PremiumRate       decimal.Decimal
	DownPaymentRatio  decimal.Decimal
	HighBondThreshold decimal.Decimal
	AgingBoundaries   []int
}

// DefaultSettings returns the stock organization settings.
func DefaultSettings() Settings {
	return Settings{
		PremiumRate:       decimal.RequireFromString("0.12"),
		DownPaymentRatio:  decimal.RequireFromString("0.5"),
		HighBondThreshold: decimal.NewFromInt(100_000),
		AgingBoundaries:   []int{30, 60, 90},
	}
}

// Validate checks that rates are in (0,1], the threshold is positive and the aging
// boundaries are strictly increasing positive day counts.
func (s Settings) Validate() error {
	one := decimal.NewFromInt(1)
	if !s.PremiumRate.IsPositive() || s.PremiumRate.GreaterThan(one) {
		return fmt.Errorf("premium rate must be in (0,1], got %s", s.PremiumRate)
	}
	if !s.DownPaymentRatio.IsPositive() || s.DownPaymentRatio.GreaterThan(one) {
		return fmt.Errorf("down payment ratio must be in (0,1], got %s", s.DownPaymentRatio)
	}
	if !s.HighBondThreshold.IsPositive() {
		return fmt.Errorf("high bond threshold must be positive, got %s", s.HighBondThreshold)
	}
	for i, b := range s.AgingBoundaries {
		if b <= 0 {
			return fmt.Errorf("aging boundary %d must be positive", b)
		}
		if i > 0 && b <= s.AgingBoundaries[i-1] {
			return fmt.Errorf("aging boundaries must be strictly increasing: %v", s.AgingBoundaries)
		}
	}
	return nil
}

// normalizeBoundaries returns a sorted, de-duplicated copy of positive boundaries,
// falling back to 30/60/90 when nothing usable is supplied.
func normalizeBoundaries(boundaries []int) []int {
	seen := make(map[int]bool, len(boundaries))
	out := make([]int, 0, len(boundaries))
	for _, b := range boundaries {
		if b > 0 && !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		return []int{30, 60, 90}
	}
	sort.Ints(out)
	return out
}
