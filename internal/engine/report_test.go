package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/bailbooks-api/internal/models"
)

func TestProfitAndLossEmpty(t *testing.T) {
	report := ProfitAndLoss(date("2024-01-01"), date("2024-01-31"), nil, nil, nil, nil, DefaultSettings())
	assert.True(t, report.PremiumsEarned.IsZero())
	assert.True(t, report.PaymentsCollected.IsZero())
	assert.True(t, report.OtherDeposits.IsZero())
	assert.True(t, report.TotalRevenue.IsZero())
	assert.True(t, report.TotalExpenses.IsZero())
	assert.True(t, report.NetIncome.IsZero())
	assert.NotNil(t, report.ExpensesByCategory)
	assert.Empty(t, report.ExpensesByCategory)
}

func TestProfitAndLossAggregates(t *testing.T) {
	s := DefaultSettings()
	paidIn := time.Date(2024, 1, 31, 22, 0, 0, 0, time.UTC)
	paidOut := date("2024-02-01")
	caseID := uint(1)

	cases := []models.BondCase{
		{ID: 1, Premium: Ptr(d("1500")), CreatedAt: date("2024-01-05")},
		{ID: 2, BondAmount: Ptr(d("10000")), CreatedAt: date("2024-01-31")},
		{ID: 3, Premium: Ptr(d("999")), CreatedAt: date("2023-12-31")},
	}
	insts := []models.Installment{
		{Amount: d("200"), Status: models.InstallmentStatusPaid, PaidAt: &paidIn},
		{Amount: d("300"), Status: models.InstallmentStatusPaid, PaidAt: &paidOut},
		{Amount: d("400"), Status: models.InstallmentStatusPending},
	}
	expenses := []models.Expense{
		{Category: "Rent", Amount: d("800"), IncurredOn: date("2024-01-01")},
		{Category: "Fuel", Amount: d("40.10"), IncurredOn: date("2024-01-10")},
		{Category: "Fuel", Amount: d("9.90"), IncurredOn: date("2024-01-20")},
		{Category: "Rent", Amount: d("800"), IncurredOn: date("2024-02-01")},
	}
	deposits := []models.Deposit{
		{CaseID: &caseID, Amount: d("75"), ReceivedOn: date("2024-01-15")},
	}

	report := ProfitAndLoss(date("2024-01-01"), date("2024-01-31"), cases, insts, expenses, deposits, s)
	assertAmount(t, "2700", report.PremiumsEarned)
	assertAmount(t, "200", report.PaymentsCollected)
	assertAmount(t, "75", report.OtherDeposits)
	assertAmount(t, "2975", report.TotalRevenue)
	assertAmount(t, "850", report.TotalExpenses)
	assertAmount(t, "2125", report.NetIncome)

	require.Len(t, report.ExpensesByCategory, 2)
	assert.Equal(t, "Fuel", report.ExpensesByCategory[0].Category)
	assertAmount(t, "50", report.ExpensesByCategory[0].Amount)
	assert.Equal(t, "Rent", report.ExpensesByCategory[1].Category)
}

func TestProfitAndLossInvertedRange(t *testing.T) {
	cases := []models.BondCase{{Premium: Ptr(d("100")), CreatedAt: date("2024-01-15")}}
	report := ProfitAndLoss(date("2024-01-31"), date("2024-01-01"), cases, nil, nil, nil, DefaultSettings())
	assert.True(t, report.TotalRevenue.IsZero())
}

func TestSummarize(t *testing.T) {
	today := date("2024-03-15")
	paid := date("2024-03-02")
	paidLastMonth := date("2024-02-27")
	insts := []models.Installment{
		{Amount: d("100"), Status: models.InstallmentStatusPaid, PaidAt: &paid},
		{Amount: d("100"), Status: models.InstallmentStatusPaid, PaidAt: &paidLastMonth},
		installment(3, "60", models.InstallmentStatusPending, "2024-03-20"),
		installment(4, "40", models.InstallmentStatusPending, "2024-03-10"),
		installment(5, "25", models.InstallmentStatusPending, "2024-01-01"),
	}

	summary := Summarize(insts, today, DefaultSettings())
	assertAmount(t, "100", summary.CollectedThisMonth)
	assertAmount(t, "100", summary.PendingThisMonth)
	assertAmount(t, "65", summary.OverdueTotal)
	assert.Equal(t, 2, summary.OverdueCount)
	assert.Len(t, summary.Aging, 4)
	assert.Equal(t, 1, summary.Aging[2].Count)
}

func TestProfitAndLossUsesUTCCalendarDay(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	s := DefaultSettings()

	// 2024-02-01 01:00 UTC and 2024-03-01 02:00 UTC respectively
	createdAt := time.Date(2024, 1, 31, 20, 0, 0, 0, est)
	paidAt := time.Date(2024, 2, 29, 21, 0, 0, 0, est)

	cases := []models.BondCase{{ID: 1, Premium: Ptr(d("1200")), CreatedAt: createdAt}}
	insts := []models.Installment{{CaseID: 1, Amount: d("250"), Status: models.InstallmentStatusPaid, PaidAt: &paidAt}}

	jan := ProfitAndLoss(date("2024-01-01"), date("2024-01-31"), cases, insts, nil, nil, s)
	feb := ProfitAndLoss(date("2024-02-01"), date("2024-02-29"), cases, insts, nil, nil, s)
	mar := ProfitAndLoss(date("2024-03-01"), date("2024-03-31"), cases, insts, nil, nil, s)

	assert.True(t, jan.PremiumsEarned.IsZero())
	assert.Equal(t, "1200.00", feb.PremiumsEarned.StringFixed(2))
	assert.True(t, feb.PaymentsCollected.IsZero())
	assert.Equal(t, "250.00", mar.PaymentsCollected.StringFixed(2))
}

func TestSummarizeUsesUTCCalendarDay(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	paidAt := time.Date(2024, 2, 29, 21, 0, 0, 0, est)
	insts := []models.Installment{{Amount: d("250"), Status: models.InstallmentStatusPaid, PaidAt: &paidAt}}

	assert.True(t, Summarize(insts, date("2024-02-15"), DefaultSettings()).CollectedThisMonth.IsZero())
	assert.Equal(t, "250.00", Summarize(insts, date("2024-03-05"), DefaultSettings()).CollectedThisMonth.StringFixed(2))
}
