package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sjperalta/bailbooks-api/internal/engine"
	"github.com/sjperalta/bailbooks-api/internal/metrics"
	"github.com/sjperalta/bailbooks-api/internal/models"
	"github.com/sjperalta/bailbooks-api/internal/repository"
	"github.com/sjperalta/bailbooks-api/pkg/logger"
)

// PlanRequest describes the plan to generate for a case. Absent fields fall back to
// the case: total to its premium, installment amount and frequency to its billed
// terms. An absent down payment becomes the amount already collected: manual payments
// count toward the quoted down payment (never less than it) and paid plan installments
// are added on top. TermIndex (1..3) picks a suggested term instead.
type PlanRequest struct {
	TotalAmount       *decimal.Decimal
	DownPayment       *decimal.Decimal
	InstallmentAmount *decimal.Decimal
	Frequency         string
	TermIndex         int
	StartDate         time.Time
}

// PlanResult is the outcome of generating or restructuring a plan.
type PlanResult struct {
	PlanID       string               `json:"plan_id"`
	Input        PlanSummary          `json:"input"`
	Installments []models.Installment `json:"installments"`
	Cancelled    int64                `json:"cancelled"`
	Totals       engine.Totals        `json:"totals"`
}

// PlanSummary echoes the resolved plan parameters.
type PlanSummary struct {
	TotalAmount       decimal.Decimal  `json:"total_amount"`
	DownPayment       decimal.Decimal  `json:"down_payment"`
	RemainingAfter    decimal.Decimal  `json:"remaining_after_down"`
	InstallmentAmount decimal.Decimal  `json:"installment_amount"`
	Frequency         engine.Frequency `json:"frequency"`
	StartDate         time.Time        `json:"start_date"`
}

type PlanService struct {
	caseRepo repository.CaseRepository
	instRepo repository.InstallmentRepository
	auditSvc *AuditService
	settings engine.Settings
}

func NewPlanService(caseRepo repository.CaseRepository, instRepo repository.InstallmentRepository, auditSvc *AuditService, settings engine.Settings) *PlanService {
	return &PlanService{caseRepo: caseRepo, instRepo: instRepo, auditSvc: auditSvc, settings: settings}
}

// Preview resolves and expands a plan for a case without persisting it.
func (s *PlanService) Preview(ctx context.Context, caseID uint, req PlanRequest) (*PlanResult, error) {
	c, err := s.caseRepo.FindByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	history, err := s.instRepo.FindByCase(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	in, err := s.resolve(c, req, history)
	if err != nil {
		return nil, err
	}
	installments, err := engine.GeneratePlan(in)
	if err != nil {
		return nil, err
	}
	for i := range installments {
		installments[i].CaseID = c.ID
	}
	return &PlanResult{
		Input:        summarize(in),
		Installments: installments,
		Totals:       engine.ComputeTotals(engine.Value(c.Premium), installments),
	}, nil
}

// Generate materializes a plan for a case. Any pending installments of a previous
// plan are cancelled in the same unit of work; paid and failed history is kept.
func (s *PlanService) Generate(ctx context.Context, caseID uint, req PlanRequest, actor Actor) (*PlanResult, error) {
	result, err := s.generate(ctx, caseID, req, actor)
	kind := "generate"
	if result != nil && result.Cancelled > 0 {
		kind = "restructure"
	}
	count := 0
	if result != nil {
		count = len(result.Installments)
	}
	metrics.ObservePlan(kind, count, err)
	return result, err
}

func (s *PlanService) generate(ctx context.Context, caseID uint, req PlanRequest, actor Actor) (*PlanResult, error) {
	c, err := s.caseRepo.FindByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	history, err := s.instRepo.FindByCase(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	in, err := s.resolve(c, req, history)
	if err != nil {
		return nil, err
	}
	installments, err := engine.GeneratePlan(in)
	if err != nil {
		return nil, err
	}

	planID := uuid.NewString()
	for i := range installments {
		installments[i].CaseID = c.ID
		installments[i].PlanID = &planID
	}

	cancelled, err := s.instRepo.ReplacePlan(ctx, &repository.PlanReplacement{
		CaseID:           c.ID,
		PaymentAmount:    engine.RoundCents(in.InstallmentAmount),
		PaymentFrequency: string(in.Frequency),
		Installments:     installments,
	})
	if err != nil {
		return nil, fmt.Errorf("replace plan for case %d: %w", c.ID, err)
	}

	all, err := s.instRepo.FindByCase(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	action := models.AuditActionCreate
	if cancelled > 0 {
		action = models.AuditActionRestructure
	}
	s.auditSvc.Log(ctx, actor, action, "BondCase", c.ID,
		fmt.Sprintf("Plan %s: %d installments of %s %s, %d pending cancelled",
			planID, len(installments), engine.RoundCents(in.InstallmentAmount).StringFixed(2), in.Frequency, cancelled))
	logger.Info("payment plan generated",
		"case_id", c.ID, "plan_id", planID, "installments", len(installments), "cancelled", cancelled)

	return &PlanResult{
		PlanID:       planID,
		Input:        summarize(in),
		Installments: installments,
		Cancelled:    cancelled,
		Totals:       engine.ComputeTotals(engine.Value(c.Premium), all),
	}, nil
}

// resolve fills plan parameters from the request, then the case, then its quote and
// the payments already collected.
func (s *PlanService) resolve(c *models.BondCase, req PlanRequest, history []models.Installment) (engine.PlanInput, error) {
	quote := engine.QuoteCase(c, s.settings)

	in := engine.PlanInput{
		TotalAmount: quote.Premium,
		DownPayment: quote.DownPayment,
		StartDate:   req.StartDate,
	}
	if req.TotalAmount != nil {
		in.TotalAmount = *req.TotalAmount
	}
	if req.DownPayment != nil {
		in.DownPayment = *req.DownPayment
	} else {
		in.DownPayment = collectedTowardPlan(quote.DownPayment, history)
	}

	if req.TermIndex != 0 {
		if req.TermIndex < 1 || req.TermIndex > 3 {
			return in, fmt.Errorf("%w: term index must be 1, 2 or 3", ErrInvalidPlanInput)
		}
		term := engine.SuggestTerms(engine.Value(c.BondAmount), in.RemainingAfterDown(), s.settings)[req.TermIndex-1]
		in.InstallmentAmount = term.Amount
		in.Frequency = term.Frequency
	} else {
		in.InstallmentAmount = engine.Value(c.PaymentAmount)
		if c.PaymentFrequency != nil {
			in.Frequency = engine.Frequency(*c.PaymentFrequency)
		}
	}

	if req.InstallmentAmount != nil {
		in.InstallmentAmount = *req.InstallmentAmount
	}
	if req.Frequency != "" {
		f, err := engine.ParseFrequency(req.Frequency)
		if err != nil {
			return in, err
		}
		in.Frequency = f
	}
	if in.Frequency == "" {
		return in, fmt.Errorf("%w: frequency is required", ErrInvalidPlanInput)
	}
	return in, in.Validate()
}

func summarize(in engine.PlanInput) PlanSummary {
	return PlanSummary{
		TotalAmount:       engine.RoundCents(in.TotalAmount),
		DownPayment:       engine.RoundCents(in.DownPayment),
		RemainingAfter:    in.RemainingAfterDown(),
		InstallmentAmount: engine.RoundCents(in.InstallmentAmount),
		Frequency:         in.Frequency,
		StartDate:         engine.DateOf(in.StartDate),
	}
}

// collectedTowardPlan is the default down payment for a (re)generated plan: manual
// payments settle the quoted down payment first, paid plan installments come on top.
func collectedTowardPlan(quotedDown decimal.Decimal, history []models.Installment) decimal.Decimal {
	manual, plan := decimal.Zero, decimal.Zero
	for i := range history {
		inst := &history[i]
		if inst.Status != models.InstallmentStatusPaid {
			continue
		}
		if inst.Source == models.InstallmentSourceManual {
			manual = manual.Add(inst.Amount)
		} else {
			plan = plan.Add(inst.Amount)
		}
	}
	return engine.RoundCents(decimal.Max(quotedDown, manual).Add(plan))
}
