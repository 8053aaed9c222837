package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/bailbooks-api/internal/models"
)

func TestGeneratePlanLastInstallmentTakesRemainder(t *testing.T) {
	plan, err := GeneratePlan(PlanInput{
		TotalAmount:       d("1200"),
		DownPayment:       d("200"),
		InstallmentAmount: d("334.78"),
		Frequency:         FrequencyWeekly,
		StartDate:         date("2024-01-01"),
	})
	require.NoError(t, err)
	require.Len(t, plan, 3)

	wantDates := []string{"2024-01-01", "2024-01-08", "2024-01-15"}
	wantAmounts := []string{"334.78", "334.78", "330.44"}
	for i := range plan {
		assert.Equal(t, date(wantDates[i]), *plan[i].DueDate)
		assertAmount(t, wantAmounts[i], plan[i].Amount)
		assert.Equal(t, i+1, plan[i].Sequence)
		assert.Equal(t, models.InstallmentStatusPending, plan[i].Status)
		assert.Equal(t, models.InstallmentSourcePlan, plan[i].Source)
	}
	assert.Equal(t, "Installment 3 of 3", *plan[2].Description)
}

func TestGeneratePlanSumsExactly(t *testing.T) {
	amounts := []string{"0.01", "0.07", "3.33", "17.5", "99.99", "250", "333.33", "1000"}
	freqs := []Frequency{FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly}
	for total := int64(1); total <= 5000; total += 397 {
		for _, amount := range amounts {
			for _, f := range freqs {
				in := PlanInput{
					TotalAmount:       decimal.NewFromInt(total).Add(d("0.29")),
					DownPayment:       d("0.5"),
					InstallmentAmount: d(amount),
					Frequency:         f,
					StartDate:         date("2024-01-31"),
				}
				if in.RemainingAfterDown().Div(d(amount)).GreaterThan(d("2000")) {
					continue
				}
				plan, err := GeneratePlan(in)
				require.NoError(t, err)

				sum := decimal.Zero
				for i, inst := range plan {
					sum = sum.Add(inst.Amount)
					assert.True(t, inst.Amount.IsPositive())
					if i < len(plan)-1 {
						assert.True(t, inst.Amount.Equal(d(amount)))
					} else {
						assert.True(t, inst.Amount.LessThanOrEqual(d(amount)))
					}
				}
				assert.True(t, sum.Equal(in.RemainingAfterDown()), "total %d amount %s: %s", total, amount, sum)
			}
		}
	}
}

func TestGeneratePlanMonthlyFromMonthEnd(t *testing.T) {
	plan, err := GeneratePlan(PlanInput{
		TotalAmount:       d("400"),
		InstallmentAmount: d("100"),
		Frequency:         FrequencyMonthly,
		StartDate:         date("2024-01-31"),
	})
	require.NoError(t, err)
	require.Len(t, plan, 4)
	assert.Equal(t, date("2024-02-29"), *plan[1].DueDate)
	assert.Equal(t, date("2024-03-31"), *plan[2].DueDate)
	assert.Equal(t, date("2024-04-30"), *plan[3].DueDate)
}

func TestGeneratePlanFullyCoveredByDown(t *testing.T) {
	plan, err := GeneratePlan(PlanInput{
		TotalAmount:       d("500"),
		DownPayment:       d("600"),
		InstallmentAmount: d("100"),
		Frequency:         FrequencyWeekly,
		StartDate:         date("2024-01-01"),
	})
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestGeneratePlanRejectsBadInput(t *testing.T) {
	valid := PlanInput{
		TotalAmount:       d("1000"),
		DownPayment:       d("100"),
		InstallmentAmount: d("100"),
		Frequency:         FrequencyWeekly,
		StartDate:         date("2024-01-01"),
	}

	tests := []struct {
		name   string
		mutate func(*PlanInput)
	}{
		{"zero total", func(in *PlanInput) { in.TotalAmount = decimal.Zero }},
		{"negative down", func(in *PlanInput) { in.DownPayment = d("-1") }},
		{"zero installment", func(in *PlanInput) { in.InstallmentAmount = decimal.Zero }},
		{"sub-cent installment", func(in *PlanInput) { in.InstallmentAmount = d("0.001") }},
		{"missing start", func(in *PlanInput) { in.StartDate = date("0001-01-01") }},
		{"unknown frequency", func(in *PlanInput) { in.Frequency = "daily" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := GeneratePlan(in)
			assert.ErrorIs(t, err, ErrInvalidPlanInput)
		})
	}
}

func TestGeneratePlanCapsInstallmentCount(t *testing.T) {
	in := PlanInput{
		TotalAmount:       d("1000000"),
		InstallmentAmount: d("0.01"),
		Frequency:         FrequencyWeekly,
		StartDate:         date("2024-01-01"),
	}
	plan, err := GeneratePlan(in)
	assert.ErrorIs(t, err, ErrInvalidPlanInput)
	assert.Nil(t, plan)

	in.TotalAmount = d("520")
	in.InstallmentAmount = d("1")
	plan, err = GeneratePlan(in)
	require.NoError(t, err)
	assert.Len(t, plan, MaxPlanInstallments)

	in.TotalAmount = d("520.01")
	_, err = GeneratePlan(in)
	assert.ErrorIs(t, err, ErrInvalidPlanInput)
}
