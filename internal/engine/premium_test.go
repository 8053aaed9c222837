package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sjperalta/bailbooks-api/internal/models"
)

func TestComputePremiumDefaults(t *testing.T) {
	q := ComputePremium(d("10000"), d("0.10"), nil, nil)
	assertAmount(t, "1000", q.Premium)
	assertAmount(t, "500", q.DownPayment)
	assertAmount(t, "500", q.Remaining)
}

func TestComputePremiumOverrides(t *testing.T) {
	q := ComputePremium(d("10000"), d("0.10"), Ptr(d("1200")), Ptr(d("200")))
	assertAmount(t, "1200", q.Premium)
	assertAmount(t, "200", q.DownPayment)
	assertAmount(t, "1000", q.Remaining)

	// zero overrides count as absent
	q = ComputePremium(d("10000"), d("0.10"), Ptr(decimal.Zero), Ptr(decimal.Zero))
	assertAmount(t, "1000", q.Premium)
	assertAmount(t, "500", q.DownPayment)
}

func TestComputePremiumDownLargerThanPremium(t *testing.T) {
	q := ComputePremium(d("1000"), d("0.10"), nil, Ptr(d("250")))
	assertAmount(t, "100", q.Premium)
	assertAmount(t, "250", q.DownPayment)
	assertAmount(t, "0", q.Remaining)
}

func TestComputePremiumNoBond(t *testing.T) {
	for _, bond := range []string{"0", "-100"} {
		q := ComputePremium(d(bond), d("0.10"), Ptr(d("500")), Ptr(d("100")))
		assert.True(t, q.Premium.IsZero(), bond)
		assert.True(t, q.DownPayment.IsZero(), bond)
		assert.True(t, q.Remaining.IsZero(), bond)
	}
}

func TestComputePremiumDownNeverExceedsPremium(t *testing.T) {
	rates := []string{"0.05", "0.1", "0.125", "0.15", "1"}
	for bond := int64(0); bond <= 250_000; bond += 1_237 {
		for _, rate := range rates {
			q := ComputePremium(decimal.NewFromInt(bond).Add(d("0.37")), d(rate), nil, nil)
			assert.True(t, q.DownPayment.LessThanOrEqual(q.Premium), "bond %d rate %s", bond, rate)
			assert.False(t, q.Remaining.IsNegative())
			assert.True(t, q.Remaining.Equal(q.Premium.Sub(q.DownPayment)))
		}
	}
}

func TestQuoteCaseUsesOrganizationRate(t *testing.T) {
	s := DefaultSettings()
	c := &models.BondCase{BondAmount: Ptr(d("25000"))}
	q := QuoteCase(c, s)
	assertAmount(t, "3000", q.Premium)
	assertAmount(t, "1500", q.DownPayment)

	c.PremiumRate = Ptr(d("0.10"))
	assertAmount(t, "2500", QuoteCase(c, s).Premium)

	c.Premium = Ptr(d("2000"))
	assertAmount(t, "2000", CasePremium(c, s))
	assertAmount(t, "1000", QuoteCase(c, s).Remaining)
}

func TestCasePremiumWithoutBond(t *testing.T) {
	assert.True(t, CasePremium(&models.BondCase{}, DefaultSettings()).IsZero())
}
