package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/bailbooks-api/internal/engine"
	"github.com/sjperalta/bailbooks-api/internal/models"
)

func TestGeneratePlanFromSuggestedTerm(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	c := env.openCase(t, "10000")

	res, err := env.planSvc.Generate(ctx, c.ID, PlanRequest{TermIndex: 1, StartDate: day("2024-03-18")}, SystemActor)
	require.NoError(t, err)

	assert.NotEmpty(t, res.PlanID)
	assert.Equal(t, int64(0), res.Cancelled)
	assert.True(t, dec("600").Equal(res.Input.RemainingAfter))
	require.Len(t, res.Installments, 4)

	wantDue := []string{"2024-03-18", "2024-03-25", "2024-04-01", "2024-04-08"}
	for i, inst := range res.Installments {
		assert.True(t, dec("150").Equal(inst.Amount))
		assert.Equal(t, wantDue[i], inst.DueDate.Format("2006-01-02"))
		assert.Equal(t, models.InstallmentStatusPending, inst.Status)
		require.NotNil(t, inst.PlanID)
		assert.Equal(t, res.PlanID, *inst.PlanID)
	}

	stored, err := env.cases.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, dec("150").Equal(*stored.PaymentAmount))
	assert.Equal(t, "weekly", *stored.PaymentFrequency)
}

func TestRestructureKeepsHistory(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	c := env.openCase(t, "10000")

	first, err := env.planSvc.Generate(ctx, c.ID, PlanRequest{TermIndex: 1, StartDate: day("2024-03-18")}, SystemActor)
	require.NoError(t, err)
	_, err = env.ledgerSvc.MarkPaid(ctx, first.Installments[0].ID, "cash", SystemActor)
	require.NoError(t, err)

	res, err := env.planSvc.Generate(ctx, c.ID, PlanRequest{
		TotalAmount:       decPtr("450"),
		DownPayment:       decPtr("0"),
		InstallmentAmount: decPtr("100"),
		Frequency:         "biweekly",
		StartDate:         day("2024-04-01"),
	}, SystemActor)
	require.NoError(t, err)

	assert.Equal(t, int64(3), res.Cancelled)
	require.Len(t, res.Installments, 5)
	assert.True(t, dec("50").Equal(res.Installments[4].Amount))
	assert.Equal(t, "2024-04-15", res.Installments[1].DueDate.Format("2006-01-02"))

	all, err := env.insts.FindByCase(ctx, c.ID)
	require.NoError(t, err)
	counts := map[string]int{}
	for _, inst := range all {
		counts[inst.Status]++
	}
	assert.Equal(t, map[string]int{"paid": 1, "cancelled": 3, "pending": 5}, counts)

	assert.True(t, dec("150").Equal(res.Totals.Paid))
	assert.True(t, dec("600").Equal(res.Totals.Scheduled))
	assert.True(t, dec("450").Equal(res.Totals.Balance))

	last := env.audit.entries[len(env.audit.entries)-1]
	assert.Equal(t, models.AuditActionRestructure, last.Action)
}

func TestPreviewDoesNotPersist(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	c := env.openCase(t, "150000")

	res, err := env.planSvc.Preview(ctx, c.ID, PlanRequest{TermIndex: 2, StartDate: day("2024-01-31")})
	require.NoError(t, err)

	assert.Equal(t, engine.FrequencyMonthly, res.Input.Frequency)
	require.Len(t, res.Installments, 6)
	assert.Equal(t, "2024-02-29", res.Installments[1].DueDate.Format("2006-01-02"))
	assert.Empty(t, res.PlanID)

	stored, err := env.insts.FindByCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestGeneratePlanRejectsBadInput(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	c := env.openCase(t, "10000")
	start := day("2024-03-18")

	tests := []struct {
		name string
		req  PlanRequest
	}{
		{"no frequency", PlanRequest{InstallmentAmount: decPtr("100"), StartDate: start}},
		{"bad term index", PlanRequest{TermIndex: 4, StartDate: start}},
		{"unknown frequency", PlanRequest{InstallmentAmount: decPtr("100"), Frequency: "daily", StartDate: start}},
		{"zero installment", PlanRequest{InstallmentAmount: decPtr("0"), Frequency: "weekly", StartDate: start}},
		{"negative down", PlanRequest{TermIndex: 1, DownPayment: decPtr("-1"), StartDate: start}},
		{"missing start", PlanRequest{TermIndex: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.planSvc.Generate(ctx, c.ID, tt.req, SystemActor)
			assert.ErrorIs(t, err, ErrInvalidPlanInput)
		})
	}

	all, err := env.insts.FindByCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = env.planSvc.Generate(ctx, 999, PlanRequest{TermIndex: 1, StartDate: start}, SystemActor)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGeneratePlanNothingRemaining(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	c := env.openCase(t, "10000")

	res, err := env.planSvc.Generate(ctx, c.ID, PlanRequest{
		DownPayment:       decPtr("1200"),
		InstallmentAmount: decPtr("100"),
		Frequency:         "weekly",
		StartDate:         day("2024-03-18"),
	}, SystemActor)
	require.NoError(t, err)
	assert.Empty(t, res.Installments)
}

func TestRestructureDefaultsCreditCollectedPayments(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	c := env.openCase(t, "10000")

	first, err := env.planSvc.Generate(ctx, c.ID, PlanRequest{TermIndex: 1, StartDate: day("2024-03-18")}, SystemActor)
	require.NoError(t, err)
	_, err = env.ledgerSvc.RecordManual(ctx, c.ID, ManualPaymentInput{Amount: dec("600"), Method: "cash", Description: "Down payment"}, SystemActor)
	require.NoError(t, err)
	_, err = env.ledgerSvc.MarkPaid(ctx, first.Installments[0].ID, "card", SystemActor)
	require.NoError(t, err)

	res, err := env.planSvc.Generate(ctx, c.ID, PlanRequest{TermIndex: 1, StartDate: day("2024-04-01")}, SystemActor)
	require.NoError(t, err)

	assert.True(t, dec("750").Equal(res.Input.DownPayment), "down %s", res.Input.DownPayment)
	assert.True(t, dec("450").Equal(res.Input.RemainingAfter))
	require.Len(t, res.Installments, 4)
	sum := dec("0")
	for _, inst := range res.Installments {
		sum = sum.Add(inst.Amount)
	}
	assert.True(t, dec("450").Equal(sum), "sum %s", sum)
}

func TestCollectedTowardPlan(t *testing.T) {
	paid := func(amount, source string) models.Installment {
		return models.Installment{Amount: dec(amount), Status: models.InstallmentStatusPaid, Source: source}
	}
	pending := models.Installment{Amount: dec("999"), Status: models.InstallmentStatusPending, Source: models.InstallmentSourcePlan}

	tests := []struct {
		name    string
		history []models.Installment
		want    string
	}{
		{"nothing collected", nil, "600"},
		{"down collected outside the ledger", []models.Installment{paid("150", models.InstallmentSourcePlan), pending}, "750"},
		{"down recorded manually", []models.Installment{paid("600", models.InstallmentSourceManual), paid("150", models.InstallmentSourcePlan)}, "750"},
		{"extra manual payment", []models.Installment{paid("800", models.InstallmentSourceManual)}, "800"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collectedTowardPlan(dec("600"), tt.history)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}
