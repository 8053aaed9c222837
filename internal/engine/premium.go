package engine

import (
	"github.com/shopspring/decimal"

	"github.com/sjperalta/bailbooks-api/internal/models"
)

// DefaultDownPaymentRatio is the share of the premium collected up front when no
// down payment is given.
var DefaultDownPaymentRatio = decimal.RequireFromString("0.5")

// Quote is the premium split for a bond amount.
type Quote struct {
	Premium     decimal.Decimal `json:"premium"`
	DownPayment decimal.Decimal `json:"down_payment"`
	Remaining   decimal.Decimal `json:"remaining"`
}

// ComputePremium derives premium, down payment and remaining balance.
//
// A positive premiumOverride replaces bondAmount*premiumRate and a positive
// downOverride replaces premium*0.5. Remaining is floored at zero, so an override down
// payment larger than the premium yields a zero remaining balance. A bond amount of
// zero or less is the "no quote yet" state and yields all zeros.
func ComputePremium(bondAmount, premiumRate decimal.Decimal, premiumOverride, downOverride *decimal.Decimal) Quote {
	return computePremium(bondAmount, premiumRate, DefaultDownPaymentRatio, premiumOverride, downOverride)
}

func computePremium(bondAmount, premiumRate, downRatio decimal.Decimal, premiumOverride, downOverride *decimal.Decimal) Quote {
	if !bondAmount.IsPositive() {
		return Quote{Premium: decimal.Zero, DownPayment: decimal.Zero, Remaining: decimal.Zero}
	}

	var premium decimal.Decimal
	if Positive(premiumOverride) {
		premium = RoundCents(*premiumOverride)
	} else {
		premium = FloorZero(RoundCents(bondAmount.Mul(premiumRate)))
	}

	var down decimal.Decimal
	if Positive(downOverride) {
		down = RoundCents(*downOverride)
	} else {
		down = FloorZero(RoundCents(premium.Mul(downRatio)))
	}

	return Quote{
		Premium:     premium,
		DownPayment: down,
		Remaining:   FloorZero(premium.Sub(down)),
	}
}

// EffectiveRate returns the case's own premium rate when set, else the organization rate.
func EffectiveRate(c *models.BondCase, s Settings) decimal.Decimal {
	if Positive(c.PremiumRate) {
		return *c.PremiumRate
	}
	return s.PremiumRate
}

// QuoteCase computes the quote for a stored case. Explicitly stored premium and down
// payment act as overrides; absent ones are derived for display only and are never
// written back.
func QuoteCase(c *models.BondCase, s Settings) Quote {
	ratio := s.DownPaymentRatio
	if !ratio.IsPositive() {
		ratio = DefaultDownPaymentRatio
	}
	return computePremium(Value(c.BondAmount), EffectiveRate(c, s), ratio, c.Premium, c.DownPayment)
}

// CasePremium is the premium a case is billed for: the stored premium when set,
// otherwise the derived one.
func CasePremium(c *models.BondCase, s Settings) decimal.Decimal {
	if Positive(c.Premium) {
		return RoundCents(*c.Premium)
	}
	return QuoteCase(c, s).Premium
}
