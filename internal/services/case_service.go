package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sjperalta/bailbooks-api/internal/engine"
	"github.com/sjperalta/bailbooks-api/internal/models"
	"github.com/sjperalta/bailbooks-api/internal/repository"
)

// CaseInput carries the fields of a create or update. Nil fields are left alone on
// update. A premium or down payment of zero clears the stored value so the derived
// default applies again.
type CaseInput struct {
	CaseNumber       *string
	DefendantName    *string
	IndemnitorName   *string
	BondAmount       *decimal.Decimal
	PremiumRate      *decimal.Decimal
	Premium          *decimal.Decimal
	DownPayment      *decimal.Decimal
	PaymentAmount    *decimal.Decimal
	PaymentFrequency *string
	Note             *string
}

// CaseDetail is a case with its computed figures.
type CaseDetail struct {
	Case         *models.BondCase `json:"case"`
	Quote        engine.Quote     `json:"quote"`
	Totals       engine.Totals    `json:"totals"`
	OverdueCount int              `json:"overdue_count"`
}

type CaseService struct {
	repo     repository.CaseRepository
	instRepo repository.InstallmentRepository
	auditSvc *AuditService
	settings engine.Settings
	clock    func() time.Time
}

func NewCaseService(repo repository.CaseRepository, instRepo repository.InstallmentRepository, auditSvc *AuditService, settings engine.Settings) *CaseService {
	return &CaseService{repo: repo, instRepo: instRepo, auditSvc: auditSvc, settings: settings, clock: engine.Now}
}

func (s *CaseService) List(ctx context.Context, query *repository.ListQuery) ([]models.BondCase, int64, error) {
	return s.repo.List(ctx, query)
}

// Get returns a case with its quote and ledger totals.
func (s *CaseService) Get(ctx context.Context, id uint) (*CaseDetail, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	installments, err := s.instRepo.FindByCase(ctx, id)
	if err != nil {
		return nil, err
	}

	today := engine.DateOf(s.clock())
	overdue := 0
	for i := range installments {
		if engine.IsOverdue(&installments[i], today) {
			overdue++
		}
	}
	return &CaseDetail{
		Case:         c,
		Quote:        engine.QuoteCase(c, s.settings),
		Totals:       engine.ComputeTotals(engine.Value(c.Premium), installments),
		OverdueCount: overdue,
	}, nil
}

func (s *CaseService) Create(ctx context.Context, in CaseInput, actor Actor) (*models.BondCase, error) {
	if in.DefendantName == nil || strings.TrimSpace(*in.DefendantName) == "" {
		return nil, fmt.Errorf("%w: defendant name is required", ErrInvalidInput)
	}

	c := &models.BondCase{}
	if err := applyCaseInput(c, in); err != nil {
		return nil, err
	}
	if c.CaseNumber == "" {
		c.CaseNumber = newCaseNumber(s.clock())
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, models.AuditActionCreate, "BondCase", c.ID,
		fmt.Sprintf("Case %s opened for %s", c.CaseNumber, c.DefendantName))
	return c, nil
}

// Update applies the given fields. Changing the bond amount never rewrites a premium
// or down payment the user has set.
func (s *CaseService) Update(ctx context.Context, id uint, in CaseInput, actor Actor) (*models.BondCase, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.DefendantName != nil && strings.TrimSpace(*in.DefendantName) == "" {
		return nil, fmt.Errorf("%w: defendant name cannot be empty", ErrInvalidInput)
	}
	if err := applyCaseInput(c, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, models.AuditActionUpdate, "BondCase", c.ID, "Case "+c.CaseNumber+" updated")
	return c, nil
}

func applyCaseInput(c *models.BondCase, in CaseInput) error {
	if in.CaseNumber != nil {
		if n := strings.TrimSpace(*in.CaseNumber); n != "" {
			c.CaseNumber = n
		}
	}
	if in.DefendantName != nil {
		c.DefendantName = strings.TrimSpace(*in.DefendantName)
	}
	if in.IndemnitorName != nil {
		c.IndemnitorName = optionalString(*in.IndemnitorName)
	}
	if in.Note != nil {
		c.Note = optionalString(*in.Note)
	}

	if in.BondAmount != nil {
		if in.BondAmount.IsNegative() {
			return fmt.Errorf("%w: bond amount cannot be negative", ErrInvalidInput)
		}
		c.BondAmount = engine.Ptr(engine.RoundCents(*in.BondAmount))
	}
	if in.PremiumRate != nil {
		rate := *in.PremiumRate
		switch {
		case rate.IsZero():
			c.PremiumRate = nil
		case rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)):
			return fmt.Errorf("%w: premium rate must be in (0,1]", ErrInvalidInput)
		default:
			c.PremiumRate = &rate
		}
	}

	amounts := []struct {
		in   *decimal.Decimal
		dst  **decimal.Decimal
		name string
	}{
		{in.Premium, &c.Premium, "premium"},
		{in.DownPayment, &c.DownPayment, "down payment"},
		{in.PaymentAmount, &c.PaymentAmount, "payment amount"},
	}
	for _, a := range amounts {
		if a.in == nil {
			continue
		}
		if a.in.IsNegative() {
			return fmt.Errorf("%w: %s cannot be negative", ErrInvalidInput, a.name)
		}
		if a.in.IsZero() {
			*a.dst = nil
			continue
		}
		*a.dst = engine.Ptr(engine.RoundCents(*a.in))
	}

	if in.PaymentFrequency != nil {
		if strings.TrimSpace(*in.PaymentFrequency) == "" {
			c.PaymentFrequency = nil
		} else {
			f, err := engine.ParseFrequency(*in.PaymentFrequency)
			if err != nil {
				return err
			}
			freq := string(f)
			c.PaymentFrequency = &freq
		}
	}
	return nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// newCaseNumber builds a readable unique case number such as BB-240131-9F2C41.
func newCaseNumber(now time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("BB-%s-%s", now.UTC().Format("060102"), id[:6])
}
