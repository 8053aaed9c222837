package services

import (
	"github.com/sjperalta/bailbooks-api/internal/advisor"
	"github.com/sjperalta/bailbooks-api/internal/config"
	"github.com/sjperalta/bailbooks-api/internal/jobs"
	"github.com/sjperalta/bailbooks-api/internal/repository"
	"github.com/sjperalta/bailbooks-api/internal/storage"
)

// Services holds all service instances
type Services struct {
	Audit  *AuditService
	Case   *CaseService
	Quote  *QuoteService
	Plan   *PlanService
	Ledger *LedgerService
	Books  *BooksService
	Report *ReportService
	Export *ExportService
	Job    *JobService
}

// NewServices creates all service instances. adv may be nil.
func NewServices(repos *repository.Repositories, worker *jobs.Worker, storage *storage.LocalStorage, cfg *config.Config, adv advisor.Advisor) *Services {
	settings := cfg.Org.ToEngine()
	auditSvc := NewAuditService(repos.Audit)
	reportSvc := NewReportService(repos.Case, repos.Installment, repos.Expense, repos.Deposit, settings)

	var archive Archiver
	if storage != nil {
		archive = storage
	}

	return &Services{
		Audit:  auditSvc,
		Case:   NewCaseService(repos.Case, repos.Installment, auditSvc, settings),
		Quote:  NewQuoteService(repos.Case, adv, settings),
		Plan:   NewPlanService(repos.Case, repos.Installment, auditSvc, settings),
		Ledger: NewLedgerService(repos.Case, repos.Installment, auditSvc),
		Books:  NewBooksService(repos.Expense, repos.Deposit, repos.Case, auditSvc),
		Report: reportSvc,
		Export: NewExportService(repos.Case, repos.Installment, reportSvc, cfg.Org, archive, worker),
		Job:    NewJobService(worker, reportSvc),
	}
}
