package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/bailbooks-api/internal/models"
)

func planFor(t *testing.T, env *testEnv) (*models.BondCase, []models.Installment) {
	c := env.openCase(t, "10000")
	res, err := env.planSvc.Generate(context.Background(), c.ID, PlanRequest{TermIndex: 1, StartDate: day("2024-03-01")}, SystemActor)
	require.NoError(t, err)
	return c, res.Installments
}

func TestMarkPaid(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, insts := planFor(t, env)

	paid, err := env.ledgerSvc.MarkPaid(ctx, insts[0].ID, " Check ", Actor{ID: 3})
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPaid, paid.Status)
	assert.Equal(t, "check", *paid.PaymentMethod)
	assert.Equal(t, testNow, *paid.PaidAt)

	_, err = env.ledgerSvc.MarkPaid(ctx, insts[0].ID, "cash", SystemActor)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := env.insts.FindByID(ctx, insts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "check", *stored.PaymentMethod)

	last := env.audit.entries[len(env.audit.entries)-1]
	assert.Equal(t, models.AuditActionPay, last.Action)
	assert.Equal(t, uint(3), last.ActorID)
}

func TestMarkPaidNeedsMethod(t *testing.T) {
	env := newTestEnv()
	_, insts := planFor(t, env)

	_, err := env.ledgerSvc.MarkPaid(context.Background(), insts[0].ID, "  ", SystemActor)
	assert.ErrorIs(t, err, ErrInvalidPaymentInput)
}

func TestTerminalStatesRejectTransitions(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, insts := planFor(t, env)

	_, err := env.ledgerSvc.Cancel(ctx, insts[1].ID, SystemActor)
	require.NoError(t, err)
	_, err = env.ledgerSvc.Cancel(ctx, insts[1].ID, SystemActor)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = env.ledgerSvc.MarkPaid(ctx, insts[1].ID, "cash", SystemActor)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	failed, err := env.ledgerSvc.MarkFailed(ctx, insts[2].ID, "card declined", SystemActor)
	require.NoError(t, err)
	assert.Equal(t, "card declined", *failed.FailureReason)
	_, err = env.ledgerSvc.MarkFailed(ctx, insts[2].ID, "again", SystemActor)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.ledgerSvc.MarkPaid(ctx, 999, "cash", SystemActor)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentTransitionLoserFails(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_, insts := planFor(t, env)

	// Another request cancels the installment between our read and our write.
	env.insts.beforeTransition = func(id uint) {
		env.insts.beforeTransition = nil
		_, err := env.ledgerSvc.Cancel(ctx, id, SystemActor)
		require.NoError(t, err)
	}

	_, err := env.ledgerSvc.MarkPaid(ctx, insts[0].ID, "cash", SystemActor)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := env.insts.FindByID(ctx, insts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusCancelled, stored.Status)
	assert.Nil(t, stored.PaidAt)
}

func TestRecordManual(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	c := env.openCase(t, "10000")

	inst, err := env.ledgerSvc.RecordManual(ctx, c.ID, ManualPaymentInput{
		Amount: dec("75.555"), Method: "Cash", Description: "walk-in",
	}, SystemActor)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPaid, inst.Status)
	assert.Equal(t, models.InstallmentSourceManual, inst.Source)
	assert.True(t, dec("75.56").Equal(inst.Amount))
	assert.Equal(t, "cash", *inst.PaymentMethod)
	assert.Equal(t, testNow, *inst.PaidAt)

	_, err = env.ledgerSvc.RecordManual(ctx, c.ID, ManualPaymentInput{Amount: dec("10")}, SystemActor)
	assert.ErrorIs(t, err, ErrInvalidPaymentInput)
	_, err = env.ledgerSvc.RecordManual(ctx, c.ID, ManualPaymentInput{Amount: dec("0"), Method: "cash"}, SystemActor)
	assert.ErrorIs(t, err, ErrInvalidPaymentInput)
	_, err = env.ledgerSvc.RecordManual(ctx, c.ID, ManualPaymentInput{Amount: dec("10"), Status: "pending"}, SystemActor)
	assert.ErrorIs(t, err, ErrInvalidPaymentInput)
	_, err = env.ledgerSvc.RecordManual(ctx, 999, ManualPaymentInput{Amount: dec("10"), Method: "cash"}, SystemActor)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelPendingAndTotals(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	c, insts := planFor(t, env)

	_, err := env.ledgerSvc.MarkPaid(ctx, insts[0].ID, "cash", SystemActor)
	require.NoError(t, err)

	n, err := env.ledgerSvc.CancelPending(ctx, c.ID, SystemActor)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = env.ledgerSvc.CancelPending(ctx, c.ID, SystemActor)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	totals, err := env.ledgerSvc.Totals(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, dec("150").Equal(totals.Paid))
	assert.True(t, dec("150").Equal(totals.Scheduled))
	assert.True(t, totals.Balance.IsZero())

	_, err = env.caseSvc.Update(ctx, c.ID, CaseInput{Premium: decPtr("1200")}, SystemActor)
	require.NoError(t, err)
	totals, err = env.ledgerSvc.Totals(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, dec("1050").Equal(totals.Balance))
}

func TestLedgerRows(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	c, insts := planFor(t, env)

	_, err := env.ledgerSvc.MarkPaid(ctx, insts[0].ID, "cash", SystemActor)
	require.NoError(t, err)

	ledger, err := env.ledgerSvc.Ledger(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, ledger.Rows, 4)

	// Plan starts 2024-03-01 weekly; today is 2024-03-15.
	assert.False(t, ledger.Rows[0].Overdue)
	assert.True(t, dec("150").Equal(ledger.Rows[0].PaidToDate))
	assert.True(t, ledger.Rows[1].Overdue)
	assert.Equal(t, 7, ledger.Rows[1].DaysOverdue)
	assert.False(t, ledger.Rows[2].Overdue)
	assert.True(t, dec("450").Equal(ledger.Rows[3].BalanceAfter))
}
