package statemachine

import (
	"context"
	"fmt"
	"time"

	"github.com/looplab/fsm"

	"github.com/sjperalta/bailbooks-api/internal/engine"
	"github.com/sjperalta/bailbooks-api/internal/models"
)

// Installment events
const (
	EventPay    = "pay"
	EventFail   = "fail"
	EventCancel = "cancel"
)

// InstallmentFSM wraps an installment with its state machine. Only pending
// installments move; paid, failed and cancelled are terminal.
type InstallmentFSM struct {
	installment *models.Installment
	fsm         *fsm.FSM
}

// NewInstallmentFSM creates a new installment state machine
func NewInstallmentFSM(installment *models.Installment) *InstallmentFSM {
	ifsm := &InstallmentFSM{
		installment: installment,
	}

	ifsm.fsm = fsm.NewFSM(
		installment.Status,
		fsm.Events{
			{Name: EventPay, Src: []string{models.InstallmentStatusPending}, Dst: models.InstallmentStatusPaid},
			{Name: EventFail, Src: []string{models.InstallmentStatusPending}, Dst: models.InstallmentStatusFailed},
			{Name: EventCancel, Src: []string{models.InstallmentStatusPending}, Dst: models.InstallmentStatusCancelled},
		},
		fsm.Callbacks{},
	)

	return ifsm
}

// Pay marks the installment paid at the given time with a payment method. The state
// is checked before the method, so a terminal installment always reports
// ErrInvalidTransition.
func (i *InstallmentFSM) Pay(ctx context.Context, method string, paidAt time.Time) error {
	if err := i.allowed(EventPay); err != nil {
		return err
	}
	m, err := engine.NormalizeMethod(method)
	if err != nil {
		return err
	}
	if err := i.event(ctx, EventPay); err != nil {
		return err
	}
	i.installment.PaidAt = &paidAt
	i.installment.PaymentMethod = &m
	return nil
}

// Fail marks the installment failed, keeping the reason when given
func (i *InstallmentFSM) Fail(ctx context.Context, reason string) error {
	if err := i.event(ctx, EventFail); err != nil {
		return err
	}
	if reason != "" {
		i.installment.FailureReason = &reason
	}
	return nil
}

// Cancel marks the installment cancelled
func (i *InstallmentFSM) Cancel(ctx context.Context) error {
	return i.event(ctx, EventCancel)
}

func (i *InstallmentFSM) allowed(name string) error {
	if !i.fsm.Can(name) {
		return fmt.Errorf("%w: cannot %s an installment that is %s", engine.ErrInvalidTransition, name, i.installment.Status)
	}
	return nil
}

func (i *InstallmentFSM) event(ctx context.Context, name string) error {
	if err := i.allowed(name); err != nil {
		return err
	}
	if err := i.fsm.Event(ctx, name); err != nil {
		return fmt.Errorf("%w: %v", engine.ErrInvalidTransition, err)
	}
	i.installment.Status = i.fsm.Current()
	return nil
}

// Current returns the current state
func (i *InstallmentFSM) Current() string {
	return i.fsm.Current()
}

// Can checks if a transition is possible
func (i *InstallmentFSM) Can(event string) bool {
	return i.fsm.Can(event)
}
