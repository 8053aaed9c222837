package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjperalta/bailbooks-api/internal/engine"
	"github.com/sjperalta/bailbooks-api/internal/metrics"
	"github.com/sjperalta/bailbooks-api/internal/models"
	"github.com/sjperalta/bailbooks-api/internal/repository"
	"github.com/sjperalta/bailbooks-api/pkg/logger"
)

// AgingReport is the overdue picture of the whole book on one day.
type AgingReport struct {
	AsOf         time.Time            `json:"as_of"`
	Buckets      []engine.AgingBucket `json:"buckets"`
	OverdueTotal decimal.Decimal      `json:"overdue_total"`
	OverdueCount int                  `json:"overdue_count"`
}

type ReportService struct {
	caseRepo    repository.CaseRepository
	instRepo    repository.InstallmentRepository
	expenseRepo repository.ExpenseRepository
	depositRepo repository.DepositRepository
	settings    engine.Settings
	clock       func() time.Time
}

func NewReportService(
	caseRepo repository.CaseRepository,
	instRepo repository.InstallmentRepository,
	expenseRepo repository.ExpenseRepository,
	depositRepo repository.DepositRepository,
	settings engine.Settings,
) *ReportService {
	return &ReportService{
		caseRepo:    caseRepo,
		instRepo:    instRepo,
		expenseRepo: expenseRepo,
		depositRepo: depositRepo,
		settings:    settings,
		clock:       engine.Now,
	}
}

// Today is the reporting date used when the caller gives none.
func (s *ReportService) Today() time.Time {
	return engine.DateOf(s.clock())
}

// Aging buckets every overdue installment as of today.
func (s *ReportService) Aging(ctx context.Context, today time.Time) (*AgingReport, error) {
	today = engine.DateOf(today)
	pending, err := s.instRepo.FindPendingDueBy(ctx, engine.AddDays(today, -1))
	if err != nil {
		return nil, err
	}
	buckets := engine.BucketOverdue(pending, today, s.settings.AgingBoundaries)
	total, count := engine.OverdueTotals(buckets)
	return &AgingReport{AsOf: today, Buckets: buckets, OverdueTotal: total, OverdueCount: count}, nil
}

// ProfitAndLoss aggregates premiums, collections, deposits and expenses over an
// inclusive date range. An inverted range yields zero totals.
func (s *ReportService) ProfitAndLoss(ctx context.Context, start, end time.Time) (*engine.PeriodReport, error) {
	start, end = engine.DateOf(start), engine.DateOf(end)
	if end.Before(start) {
		report := engine.ProfitAndLoss(start, end, nil, nil, nil, nil, s.settings)
		return &report, nil
	}

	cases, err := s.caseRepo.FindCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	paid, err := s.instRepo.FindPaidBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.FindBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	deposits, err := s.depositRepo.FindBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	report := engine.ProfitAndLoss(start, end, cases, paid, expenses, deposits, s.settings)
	return &report, nil
}

// Dashboard returns this month's collection figures and the aging picture.
func (s *ReportService) Dashboard(ctx context.Context, today time.Time) (*engine.DashboardSummary, error) {
	today = engine.DateOf(today)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	pending, err := s.instRepo.FindPendingDueBy(ctx, monthEnd)
	if err != nil {
		return nil, err
	}
	paid, err := s.instRepo.FindPaidBetween(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	summary := engine.Summarize(append(pending, paid...), today, s.settings)
	return &summary, nil
}

// RefreshOverdueGauges publishes the current aging buckets as metrics.
func (s *ReportService) RefreshOverdueGauges(ctx context.Context) error {
	report, err := s.Aging(ctx, s.Today())
	if err != nil {
		return fmt.Errorf("refresh overdue gauges: %w", err)
	}
	for _, b := range report.Buckets {
		metrics.SetOverdue(b.Label, b.Total, b.Count)
	}
	return nil
}

// AgingDigest logs the daily aging summary.
func (s *ReportService) AgingDigest(ctx context.Context) error {
	report, err := s.Aging(ctx, s.Today())
	if err != nil {
		return fmt.Errorf("aging digest: %w", err)
	}

	args := []any{
		"as_of", report.AsOf.Format("2006-01-02"),
		"overdue_total", report.OverdueTotal.StringFixed(2),
		"overdue_count", report.OverdueCount,
	}
	for _, b := range report.Buckets {
		args = append(args, b.Label, fmt.Sprintf("%d / %s", b.Count, b.Total.StringFixed(2)))
	}
	logger.Info("daily aging digest", args...)
	return nil
}

// GenerateOverdueCSV lists every overdue installment with its case and days late.
func (s *ReportService) GenerateOverdueCSV(ctx context.Context, today time.Time) (*bytes.Buffer, error) {
	report, err := s.Aging(ctx, today)
	if err != nil {
		return nil, err
	}
	cases, err := s.caseIndex(ctx)
	if err != nil {
		return nil, err
	}

	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{"Installment ID", "Case", "Defendant", "Due Date", "Days Overdue", "Bucket", "Amount"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, bucket := range report.Buckets {
		for i := range bucket.Installments {
			inst := &bucket.Installments[i]
			c := cases[inst.CaseID]
			record := []string{
				strconv.FormatUint(uint64(inst.ID), 10),
				c.CaseNumber,
				c.DefendantName,
				inst.DueDate.Format("2006-01-02"),
				strconv.Itoa(engine.DaysOverdue(inst, report.AsOf)),
				bucket.Label,
				inst.Amount.StringFixed(2),
			}
			if err := w.Write(record); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	return b, w.Error()
}

func (s *ReportService) caseIndex(ctx context.Context) (map[uint]models.BondCase, error) {
	cases, err := s.caseRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[uint]models.BondCase, len(cases))
	for _, c := range cases {
		index[c.ID] = c
	}
	return index, nil
}
