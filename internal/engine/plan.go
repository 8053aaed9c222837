package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjperalta/bailbooks-api/internal/models"
)

// MaxPlanInstallments bounds how many installments one plan may materialize.
const MaxPlanInstallments = 520

// PlanInput describes an installment plan to materialize.
type PlanInput struct {
	TotalAmount       decimal.Decimal
	DownPayment       decimal.Decimal
	InstallmentAmount decimal.Decimal
	Frequency         Frequency
	StartDate         time.Time
}

// Validate rejects plans that cannot be generated.
func (in PlanInput) Validate() error {
	if !in.TotalAmount.IsPositive() {
		return fmt.Errorf("%w: total amount must be greater than zero", ErrInvalidPlanInput)
	}
	if in.DownPayment.IsNegative() {
		return fmt.Errorf("%w: down payment cannot be negative", ErrInvalidPlanInput)
	}
	if !RoundCents(in.InstallmentAmount).IsPositive() {
		return fmt.Errorf("%w: installment amount must be greater than zero", ErrInvalidPlanInput)
	}
	if in.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidPlanInput)
	}
	if !in.Frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidPlanInput, in.Frequency)
	}
	return nil
}

// RemainingAfterDown is the amount the installments have to cover.
func (in PlanInput) RemainingAfterDown() decimal.Decimal {
	return FloorZero(RoundCents(in.TotalAmount).Sub(RoundCents(in.DownPayment)))
}

// GeneratePlan expands a plan into pending installments due on the start date and
// every cadence step after it. All but the last installment carry the requested
// amount; the last carries the remainder, so the amounts always add up to
// RemainingAfterDown exactly. The work is done in integer cents.
//
// The returned installments have no CaseID or PlanID; the caller assigns them.
func GeneratePlan(in PlanInput) ([]models.Installment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	remaining := ToCents(in.RemainingAfterDown())
	step := ToCents(in.InstallmentAmount)
	if remaining == 0 {
		return []models.Installment{}, nil
	}

	if (remaining+step-1)/step > MaxPlanInstallments {
		return nil, fmt.Errorf("%w: plan would need more than %d installments", ErrInvalidPlanInput, MaxPlanInstallments)
	}
	count := int((remaining + step - 1) / step)
	start := DateOf(in.StartDate)
	installments := make([]models.Installment, 0, count)
	for i := 0; i < count; i++ {
		cents := step
		if i == count-1 {
			cents = remaining - step*int64(count-1)
		}
		due := AddPeriods(start, in.Frequency, i)
		description := fmt.Sprintf("Installment %d of %d", i+1, count)
		installments = append(installments, models.Installment{
			Sequence:    i + 1,
			Amount:      FromCents(cents),
			DueDate:     &due,
			Status:      models.InstallmentStatusPending,
			Source:      models.InstallmentSourcePlan,
			Description: &description,
		})
	}
	return installments, nil
}
