package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjperalta/bailbooks-api/internal/models"
)

// Totals summarizes one case's installments.
type Totals struct {
	Paid      decimal.Decimal `json:"paid"`
	Scheduled decimal.Decimal `json:"scheduled"`
	Balance   decimal.Decimal `json:"balance"`
}

// ComputeTotals sums paid and non-cancelled installments. The balance is measured
// against the premium when one is set, otherwise against the scheduled total, and is
// floored at zero.
func ComputeTotals(premium decimal.Decimal, installments []models.Installment) Totals {
	paid, scheduled := decimal.Zero, decimal.Zero
	for i := range installments {
		inst := &installments[i]
		if inst.Status == models.InstallmentStatusPaid {
			paid = paid.Add(inst.Amount)
		}
		if inst.Status != models.InstallmentStatusCancelled {
			scheduled = scheduled.Add(inst.Amount)
		}
	}

	basis := scheduled
	if premium.IsPositive() {
		basis = premium
	}
	return Totals{
		Paid:      RoundCents(paid),
		Scheduled: RoundCents(scheduled),
		Balance:   RoundCents(FloorZero(basis.Sub(paid))),
	}
}

// IsOverdue reports whether a pending installment's due date is strictly before today.
func IsOverdue(inst *models.Installment, today time.Time) bool {
	return inst.Status == models.InstallmentStatusPending &&
		inst.DueDate != nil &&
		DaysBetween(*inst.DueDate, today) > 0
}

// DaysOverdue returns how many days past due an overdue installment is, else 0.
func DaysOverdue(inst *models.Installment, today time.Time) int {
	if !IsOverdue(inst, today) {
		return 0
	}
	return DaysBetween(*inst.DueDate, today)
}

// SortInstallments orders installments by due date, then creation order. Undated
// (manual) entries sort after dated ones.
func SortInstallments(installments []models.Installment) {
	sort.SliceStable(installments, func(a, b int) bool {
		da, db := installments[a].DueDate, installments[b].DueDate
		switch {
		case da != nil && db != nil && !DateOf(*da).Equal(DateOf(*db)):
			return DateOf(*da).Before(DateOf(*db))
		case da != nil && db == nil:
			return true
		case da == nil && db != nil:
			return false
		}
		if !installments[a].CreatedAt.Equal(installments[b].CreatedAt) {
			return installments[a].CreatedAt.Before(installments[b].CreatedAt)
		}
		return installments[a].ID < installments[b].ID
	})
}

// LedgerRow is one installment as shown on a case's payment tab.
type LedgerRow struct {
	models.Installment
	Overdue      bool            `json:"overdue"`
	DaysOverdue  int             `json:"days_overdue"`
	PaidToDate   decimal.Decimal `json:"paid_to_date"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// CaseLedger is the ordered installment history of a case plus its totals.
type CaseLedger struct {
	Rows   []LedgerRow `json:"rows"`
	Totals Totals      `json:"totals"`
}

// BuildLedger orders a case's installments and annotates each row with its overdue
// state and the running paid total.
func BuildLedger(premium decimal.Decimal, installments []models.Installment, today time.Time) CaseLedger {
	ordered := make([]models.Installment, len(installments))
	copy(ordered, installments)
	SortInstallments(ordered)

	totals := ComputeTotals(premium, ordered)
	basis := totals.Scheduled
	if premium.IsPositive() {
		basis = RoundCents(premium)
	}

	rows := make([]LedgerRow, 0, len(ordered))
	paid := decimal.Zero
	for i := range ordered {
		inst := &ordered[i]
		if inst.Status == models.InstallmentStatusPaid {
			paid = paid.Add(inst.Amount)
		}
		rows = append(rows, LedgerRow{
			Installment:  *inst,
			Overdue:      IsOverdue(inst, today),
			DaysOverdue:  DaysOverdue(inst, today),
			PaidToDate:   RoundCents(paid),
			BalanceAfter: RoundCents(FloorZero(basis.Sub(paid))),
		})
	}
	return CaseLedger{Rows: rows, Totals: totals}
}

// ManualPayment is an ad hoc payment recorded against a case.
type ManualPayment struct {
	Amount      decimal.Decimal
	Method      string
	Description string
	Status      string // paid or pending; empty means paid
	DueDate     *time.Time
}

// NewManualInstallment validates a manual payment and builds its record. Paid entries
// need a payment method and get paid_at = now; pending entries need a due date.
func NewManualInstallment(p ManualPayment, now time.Time) (models.Installment, error) {
	status := strings.ToLower(strings.TrimSpace(p.Status))
	if status == "" {
		status = models.InstallmentStatusPaid
	}
	amount := RoundCents(p.Amount)
	if !amount.IsPositive() {
		return models.Installment{}, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidPaymentInput)
	}

	inst := models.Installment{
		Amount: amount,
		Status: status,
		Source: models.InstallmentSourceManual,
	}
	if d := strings.TrimSpace(p.Description); d != "" {
		inst.Description = &d
	}
	if p.DueDate != nil {
		due := DateOf(*p.DueDate)
		inst.DueDate = &due
	}

	switch status {
	case models.InstallmentStatusPaid:
		method, err := NormalizeMethod(p.Method)
		if err != nil {
			return models.Installment{}, err
		}
		paidAt := now
		inst.PaidAt = &paidAt
		inst.PaymentMethod = &method
	case models.InstallmentStatusPending:
		if inst.DueDate == nil {
			return models.Installment{}, fmt.Errorf("%w: pending payments need a due date", ErrInvalidPaymentInput)
		}
	default:
		return models.Installment{}, fmt.Errorf("%w: status must be paid or pending, got %q", ErrInvalidPaymentInput, p.Status)
	}
	return inst, nil
}

// NormalizeMethod lower-cases a payment method tag and rejects empty ones. Tags
// outside cash/check/card/other are kept as given.
func NormalizeMethod(method string) (string, error) {
	m := strings.ToLower(strings.TrimSpace(method))
	if m == "" {
		return "", fmt.Errorf("%w: payment method is required", ErrInvalidPaymentInput)
	}
	return m, nil
}
