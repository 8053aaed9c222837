package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjperalta/bailbooks-api/internal/advisor"
	"github.com/sjperalta/bailbooks-api/internal/engine"
	"github.com/sjperalta/bailbooks-api/internal/metrics"
	"github.com/sjperalta/bailbooks-api/internal/models"
	"github.com/sjperalta/bailbooks-api/internal/repository"
	"github.com/sjperalta/bailbooks-api/pkg/logger"
)

// QuoteRequest is an ad hoc quote. Nil or non-positive overrides are ignored.
type QuoteRequest struct {
	BondAmount  decimal.Decimal
	PremiumRate *decimal.Decimal
	Premium     *decimal.Decimal
	DownPayment *decimal.Decimal
}

// QuoteResult is a premium split with the three suggested terms and the optional
// recommendation.
type QuoteResult struct {
	BondAmount     decimal.Decimal         `json:"bond_amount"`
	PremiumRate    decimal.Decimal         `json:"premium_rate"`
	Quote          engine.Quote            `json:"quote"`
	HighBond       bool                    `json:"high_bond"`
	Terms          [3]engine.TermOption    `json:"terms"`
	Recommendation *advisor.Recommendation `json:"recommendation"`
}

type QuoteService struct {
	caseRepo repository.CaseRepository
	advisor  advisor.Advisor
	settings engine.Settings
}

// NewQuoteService creates the quote service. adv may be nil when no recommendation
// service is configured.
func NewQuoteService(caseRepo repository.CaseRepository, adv advisor.Advisor, settings engine.Settings) *QuoteService {
	return &QuoteService{caseRepo: caseRepo, advisor: adv, settings: settings}
}

// Quote prices a bond amount without touching storage.
func (s *QuoteService) Quote(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	if req.BondAmount.IsNegative() {
		return nil, fmt.Errorf("%w: bond amount cannot be negative", ErrInvalidInput)
	}
	rate := s.settings.PremiumRate
	if engine.Positive(req.PremiumRate) {
		if req.PremiumRate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("%w: premium rate must be at most 1", ErrInvalidInput)
		}
		rate = *req.PremiumRate
	}

	c := &models.BondCase{
		BondAmount:  &req.BondAmount,
		PremiumRate: &rate,
		Premium:     req.Premium,
		DownPayment: req.DownPayment,
	}
	return s.build(ctx, c), nil
}

// QuoteCase prices a stored case using its stored overrides.
func (s *QuoteService) QuoteCase(ctx context.Context, caseID uint) (*QuoteResult, error) {
	c, err := s.caseRepo.FindByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	return s.build(ctx, c), nil
}

func (s *QuoteService) build(ctx context.Context, c *models.BondCase) *QuoteResult {
	bond := engine.Value(c.BondAmount)
	quote := engine.QuoteCase(c, s.settings)
	terms := engine.SuggestTerms(bond, quote.Remaining, s.settings)

	return &QuoteResult{
		BondAmount:     bond,
		PremiumRate:    engine.EffectiveRate(c, s.settings),
		Quote:          quote,
		HighBond:       engine.IsHighBond(bond, s.settings),
		Terms:          terms,
		Recommendation: s.recommend(ctx, bond, quote, terms),
	}
}

// recommend asks the advisor for a pick. It never fails: any problem is logged and
// yields no recommendation.
func (s *QuoteService) recommend(ctx context.Context, bond decimal.Decimal, quote engine.Quote, terms [3]engine.TermOption) *advisor.Recommendation {
	if s.advisor == nil {
		metrics.ObserveAdvisor(metrics.AdvisorOutcomeDisabled, 0)
		return nil
	}
	if !quote.Remaining.IsPositive() {
		return nil
	}

	start := time.Now()
	rec, err := s.advisor.Recommend(ctx, advisor.NewRequest(bond, quote, terms))
	switch {
	case errors.Is(err, advisor.ErrInvalidResponse):
		metrics.ObserveAdvisor(metrics.AdvisorOutcomeInvalid, time.Since(start))
		logger.Warn("term recommendation rejected", logger.Err(err))
		return nil
	case err != nil:
		metrics.ObserveAdvisor(metrics.AdvisorOutcomeUnavailable, time.Since(start))
		logger.Warn("term recommendation unavailable", logger.Err(err))
		return nil
	case rec == nil:
		metrics.ObserveAdvisor(metrics.AdvisorOutcomeUnavailable, time.Since(start))
		return nil
	}
	metrics.ObserveAdvisor(metrics.AdvisorOutcomeRecommended, time.Since(start))
	return rec
}
