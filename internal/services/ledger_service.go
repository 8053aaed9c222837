package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjperalta/bailbooks-api/internal/engine"
	"github.com/sjperalta/bailbooks-api/internal/metrics"
	"github.com/sjperalta/bailbooks-api/internal/models"
	"github.com/sjperalta/bailbooks-api/internal/repository"
	"github.com/sjperalta/bailbooks-api/internal/statemachine"
	"github.com/sjperalta/bailbooks-api/pkg/logger"
)

// ManualPaymentInput is a payment recorded outside any plan.
type ManualPaymentInput struct {
	Amount      decimal.Decimal
	Method      string
	Description string
	Status      string
	DueDate     *time.Time
}

type LedgerService struct {
	caseRepo repository.CaseRepository
	instRepo repository.InstallmentRepository
	auditSvc *AuditService
	clock    func() time.Time
}

func NewLedgerService(caseRepo repository.CaseRepository, instRepo repository.InstallmentRepository, auditSvc *AuditService) *LedgerService {
	return &LedgerService{caseRepo: caseRepo, instRepo: instRepo, auditSvc: auditSvc, clock: engine.Now}
}

func (s *LedgerService) FindByID(ctx context.Context, id uint) (*models.Installment, error) {
	return s.instRepo.FindByID(ctx, id)
}

func (s *LedgerService) List(ctx context.Context, query *repository.ListQuery) ([]models.Installment, int64, error) {
	return s.instRepo.List(ctx, query)
}

// RecordManual appends a manual installment to a case.
func (s *LedgerService) RecordManual(ctx context.Context, caseID uint, in ManualPaymentInput, actor Actor) (*models.Installment, error) {
	if _, err := s.caseRepo.FindByID(ctx, caseID); err != nil {
		return nil, err
	}

	inst, err := engine.NewManualInstallment(engine.ManualPayment{
		Amount:      in.Amount,
		Method:      in.Method,
		Description: in.Description,
		Status:      in.Status,
		DueDate:     in.DueDate,
	}, s.clock())
	if err != nil {
		return nil, err
	}
	inst.CaseID = caseID

	if err := s.instRepo.Create(ctx, &inst); err != nil {
		return nil, err
	}
	metrics.IncManualInstallment()

	action := models.AuditActionCreate
	if inst.Status == models.InstallmentStatusPaid {
		action = models.AuditActionPay
	}
	s.auditSvc.Log(ctx, actor, action, "Installment", inst.ID,
		fmt.Sprintf("Manual %s payment of %s on case %d", inst.Status, inst.Amount.StringFixed(2), caseID))
	return &inst, nil
}

// MarkPaid moves a pending installment to paid.
func (s *LedgerService) MarkPaid(ctx context.Context, id uint, method string, actor Actor) (*models.Installment, error) {
	now := s.clock()
	return s.transition(ctx, id, statemachine.EventPay, actor, func(f *statemachine.InstallmentFSM) error {
		return f.Pay(ctx, method, now)
	})
}

// MarkFailed moves a pending installment to failed.
func (s *LedgerService) MarkFailed(ctx context.Context, id uint, reason string, actor Actor) (*models.Installment, error) {
	return s.transition(ctx, id, statemachine.EventFail, actor, func(f *statemachine.InstallmentFSM) error {
		return f.Fail(ctx, reason)
	})
}

// Cancel moves a pending installment to cancelled.
func (s *LedgerService) Cancel(ctx context.Context, id uint, actor Actor) (*models.Installment, error) {
	return s.transition(ctx, id, statemachine.EventCancel, actor, func(f *statemachine.InstallmentFSM) error {
		return f.Cancel(ctx)
	})
}

// transition applies an event in memory, then persists it with a compare-and-swap on
// the pending status so a concurrent transition makes this one fail.
func (s *LedgerService) transition(ctx context.Context, id uint, event string, actor Actor, apply func(*statemachine.InstallmentFSM) error) (*models.Installment, error) {
	inst, err := s.instRepo.FindByID(ctx, id)
	if err != nil {
		metrics.ObserveTransition(event, err)
		return nil, err
	}

	from := inst.Status
	if err := apply(statemachine.NewInstallmentFSM(inst)); err != nil {
		metrics.ObserveTransition(event, err)
		return nil, err
	}
	if err := s.instRepo.Transition(ctx, inst, from); err != nil {
		metrics.ObserveTransition(event, err)
		return nil, err
	}
	metrics.ObserveTransition(event, nil)

	s.auditSvc.Log(ctx, actor, auditActionFor(event), "Installment", inst.ID,
		fmt.Sprintf("Installment %d of case %d: %s -> %s", inst.ID, inst.CaseID, from, inst.Status))
	return inst, nil
}

func auditActionFor(event string) string {
	switch event {
	case statemachine.EventPay:
		return models.AuditActionPay
	case statemachine.EventFail:
		return models.AuditActionFail
	default:
		return models.AuditActionCancel
	}
}

// CancelPending cancels every pending installment of a case without regenerating.
func (s *LedgerService) CancelPending(ctx context.Context, caseID uint, actor Actor) (int64, error) {
	if _, err := s.caseRepo.FindByID(ctx, caseID); err != nil {
		return 0, err
	}
	n, err := s.instRepo.CancelPendingByCase(ctx, caseID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.auditSvc.Log(ctx, actor, models.AuditActionCancel, "BondCase", caseID,
			fmt.Sprintf("%d pending installments cancelled", n))
		logger.Info("pending installments cancelled", "case_id", caseID, "count", n)
	}
	return n, nil
}

// Totals returns paid, scheduled and balance for a case. The balance is measured
// against the stored premium when one is set.
func (s *LedgerService) Totals(ctx context.Context, caseID uint) (*engine.Totals, error) {
	c, err := s.caseRepo.FindByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	installments, err := s.instRepo.FindByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	totals := engine.ComputeTotals(engine.Value(c.Premium), installments)
	return &totals, nil
}

// Ledger returns the annotated installment history of a case as of today.
func (s *LedgerService) Ledger(ctx context.Context, caseID uint) (*engine.CaseLedger, error) {
	c, err := s.caseRepo.FindByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	installments, err := s.instRepo.FindByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	ledger := engine.BuildLedger(engine.Value(c.Premium), installments, s.clock())
	return &ledger, nil
}
