package statemachine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/bailbooks-api/internal/engine"
	"github.com/sjperalta/bailbooks-api/internal/models"
)

func TestInstallmentFSMPay(t *testing.T) {
	inst := &models.Installment{Status: models.InstallmentStatusPending}
	paidAt := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, NewInstallmentFSM(inst).Pay(context.Background(), "Card", paidAt))
	assert.Equal(t, models.InstallmentStatusPaid, inst.Status)
	assert.Equal(t, paidAt, *inst.PaidAt)
	assert.Equal(t, models.PaymentMethodCard, *inst.PaymentMethod)
}

func TestInstallmentFSMPayRequiresMethod(t *testing.T) {
	inst := &models.Installment{Status: models.InstallmentStatusPending}
	err := NewInstallmentFSM(inst).Pay(context.Background(), "", time.Now())
	assert.ErrorIs(t, err, engine.ErrInvalidPaymentInput)
	assert.Equal(t, models.InstallmentStatusPending, inst.Status)
}

func TestInstallmentFSMPayWithoutMethodOnPaidIsTransitionError(t *testing.T) {
	paidAt := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	inst := &models.Installment{Status: models.InstallmentStatusPaid, PaidAt: &paidAt}

	err := NewInstallmentFSM(inst).Pay(context.Background(), "", time.Now())

	assert.ErrorIs(t, err, engine.ErrInvalidTransition)
	assert.NotErrorIs(t, err, engine.ErrInvalidPaymentInput)
	assert.Equal(t, paidAt, *inst.PaidAt)
}

func TestInstallmentFSMFail(t *testing.T) {
	inst := &models.Installment{Status: models.InstallmentStatusPending}
	require.NoError(t, NewInstallmentFSM(inst).Fail(context.Background(), "card declined"))
	assert.Equal(t, models.InstallmentStatusFailed, inst.Status)
	assert.Equal(t, "card declined", *inst.FailureReason)
}

func TestInstallmentFSMTerminalStates(t *testing.T) {
	ctx := context.Background()
	terminal := []string{models.InstallmentStatusPaid, models.InstallmentStatusFailed, models.InstallmentStatusCancelled}

	for _, status := range terminal {
		t.Run(status, func(t *testing.T) {
			inst := &models.Installment{Status: status}
			f := NewInstallmentFSM(inst)
			assert.ErrorIs(t, f.Pay(ctx, "cash", time.Now()), engine.ErrInvalidTransition)
			assert.ErrorIs(t, f.Fail(ctx, ""), engine.ErrInvalidTransition)
			assert.ErrorIs(t, f.Cancel(ctx), engine.ErrInvalidTransition)
			assert.Equal(t, status, inst.Status)
			assert.Nil(t, inst.PaidAt)
		})
	}
}

func TestInstallmentFSMCan(t *testing.T) {
	f := NewInstallmentFSM(&models.Installment{Status: models.InstallmentStatusPending})
	assert.True(t, f.Can(EventCancel))
	require.NoError(t, f.Cancel(context.Background()))
	assert.Equal(t, models.InstallmentStatusCancelled, f.Current())
	assert.False(t, f.Can(EventPay))
}
