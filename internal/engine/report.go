package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjperalta/bailbooks-api/internal/models"
)

// CategoryTotal is the summed expense amount of one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// PeriodReport is a profit-and-loss statement for a date range.
type PeriodReport struct {
	StartDate          time.Time       `json:"start_date"`
	EndDate            time.Time       `json:"end_date"`
	PremiumsEarned     decimal.Decimal `json:"premiums_earned"`
	PaymentsCollected  decimal.Decimal `json:"payments_collected"`
	OtherDeposits      decimal.Decimal `json:"other_deposits"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	ExpensesByCategory []CategoryTotal `json:"expenses_by_category"`
	TotalExpenses      decimal.Decimal `json:"total_expenses"`
	NetIncome          decimal.Decimal `json:"net_income"`
}

// ProfitAndLoss aggregates a period. Premiums are recognized on the case creation
// date (accrual), installments on their paid_at date (cash). Date bounds are
// inclusive calendar days. An empty or inverted range yields zero totals.
func ProfitAndLoss(
	start, end time.Time,
	cases []models.BondCase,
	installments []models.Installment,
	expenses []models.Expense,
	deposits []models.Deposit,
	s Settings,
) PeriodReport {
	report := PeriodReport{
		StartDate:          DateOf(start),
		EndDate:            DateOf(end),
		PremiumsEarned:     decimal.Zero,
		PaymentsCollected:  decimal.Zero,
		OtherDeposits:      decimal.Zero,
		ExpensesByCategory: []CategoryTotal{},
		TotalExpenses:      decimal.Zero,
	}

	for i := range cases {
		if InRange(cases[i].CreatedAt, start, end) {
			report.PremiumsEarned = report.PremiumsEarned.Add(CasePremium(&cases[i], s))
		}
	}

	for i := range installments {
		inst := &installments[i]
		if inst.Status == models.InstallmentStatusPaid && inst.PaidAt != nil && InRange(*inst.PaidAt, start, end) {
			report.PaymentsCollected = report.PaymentsCollected.Add(inst.Amount)
		}
	}

	for i := range deposits {
		if InRange(deposits[i].ReceivedOn, start, end) {
			report.OtherDeposits = report.OtherDeposits.Add(deposits[i].Amount)
		}
	}

	byCategory := make(map[string]decimal.Decimal)
	for i := range expenses {
		e := &expenses[i]
		if !InRange(e.IncurredOn, start, end) {
			continue
		}
		category := strings.TrimSpace(e.Category)
		if category == "" {
			category = "Uncategorized"
		}
		byCategory[category] = byCategory[category].Add(e.Amount)
		report.TotalExpenses = report.TotalExpenses.Add(e.Amount)
	}
	for category, amount := range byCategory {
		report.ExpensesByCategory = append(report.ExpensesByCategory, CategoryTotal{Category: category, Amount: RoundCents(amount)})
	}
	sort.Slice(report.ExpensesByCategory, func(a, b int) bool {
		return report.ExpensesByCategory[a].Category < report.ExpensesByCategory[b].Category
	})

	report.PremiumsEarned = RoundCents(report.PremiumsEarned)
	report.PaymentsCollected = RoundCents(report.PaymentsCollected)
	report.OtherDeposits = RoundCents(report.OtherDeposits)
	report.TotalExpenses = RoundCents(report.TotalExpenses)
	report.TotalRevenue = Sum(report.PremiumsEarned, report.PaymentsCollected, report.OtherDeposits)
	report.NetIncome = report.TotalRevenue.Sub(report.TotalExpenses)
	return report
}

// DashboardSummary is the organization-wide collection picture for one day.
type DashboardSummary struct {
	AsOf               time.Time       `json:"as_of"`
	CollectedThisMonth decimal.Decimal `json:"collected_this_month"`
	PendingThisMonth   decimal.Decimal `json:"pending_this_month"`
	OverdueTotal       decimal.Decimal `json:"overdue_total"`
	OverdueCount       int             `json:"overdue_count"`
	Aging              []AgingBucket   `json:"aging"`
}

// Summarize computes the dashboard figures from every case's installments.
func Summarize(installments []models.Installment, today time.Time, s Settings) DashboardSummary {
	today = DateOf(today)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	summary := DashboardSummary{
		AsOf:               today,
		CollectedThisMonth: decimal.Zero,
		PendingThisMonth:   decimal.Zero,
	}
	for i := range installments {
		inst := &installments[i]
		switch inst.Status {
		case models.InstallmentStatusPaid:
			if inst.PaidAt != nil && InRange(*inst.PaidAt, monthStart, monthEnd) {
				summary.CollectedThisMonth = summary.CollectedThisMonth.Add(inst.Amount)
			}
		case models.InstallmentStatusPending:
			if inst.DueDate != nil && InRange(*inst.DueDate, monthStart, monthEnd) {
				summary.PendingThisMonth = summary.PendingThisMonth.Add(inst.Amount)
			}
		}
	}

	summary.Aging = BucketOverdue(installments, today, s.AgingBoundaries)
	summary.OverdueTotal, summary.OverdueCount = OverdueTotals(summary.Aging)
	return summary
}
