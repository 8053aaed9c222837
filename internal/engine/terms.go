package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TermOption is one suggested installment amount and cadence. Not persisted.
type TermOption struct {
	Index     int             `json:"index"` // 1-based, as exchanged with the recommendation service
	Label     string          `json:"label"`
	Periods   int             `json:"periods"`
	Amount    decimal.Decimal `json:"amount"`
	Frequency Frequency       `json:"frequency"`
}

var (
	highBondMonths = [3]int{3, 6, 9}
	standardWeeks  = [3]int{4, 6, 10}
)

// IsHighBond reports whether a bond amount falls in the monthly-cadence tier.
func IsHighBond(bondAmount decimal.Decimal, s Settings) bool {
	threshold := s.HighBondThreshold
	if !threshold.IsPositive() {
		threshold = DefaultSettings().HighBondThreshold
	}
	return bondAmount.GreaterThanOrEqual(threshold)
}

// SuggestTerms proposes three installment options for the remaining balance. High
// bonds split over 3, 6 and 9 months; everything else over 4, 6 and 10 weeks. A
// non-positive remaining balance still returns the labels with zero amounts.
func SuggestTerms(bondAmount, remaining decimal.Decimal, s Settings) [3]TermOption {
	periods, freq, unit := standardWeeks, FrequencyWeekly, "wk"
	if IsHighBond(bondAmount, s) {
		periods, freq, unit = highBondMonths, FrequencyMonthly, "mo"
	}

	var options [3]TermOption
	for i, n := range periods {
		amount := decimal.Zero
		if remaining.IsPositive() {
			amount = RoundCents(remaining.Div(decimal.NewFromInt(int64(n))))
		}
		options[i] = TermOption{
			Index:     i + 1,
			Label:     fmt.Sprintf("%d %s", n, unit),
			Periods:   n,
			Amount:    amount,
			Frequency: freq,
		}
	}
	return options
}
