package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjperalta/bailbooks-api/internal/engine"
	"github.com/sjperalta/bailbooks-api/internal/models"
	"github.com/sjperalta/bailbooks-api/internal/repository"
)

// ExpenseInput carries the fields of an expense create or update. Nil fields are
// left unchanged on update.
type ExpenseInput struct {
	Category    *string
	Amount      *decimal.Decimal
	IncurredOn  *time.Time
	Description *string
}

// DepositInput carries the fields of a deposit create or update.
type DepositInput struct {
	CaseID      *uint
	Amount      *decimal.Decimal
	ReceivedOn  *time.Time
	Description *string
}

// BooksService keeps the expense and other-deposit books used by profit and loss.
type BooksService struct {
	expenseRepo repository.ExpenseRepository
	depositRepo repository.DepositRepository
	caseRepo    repository.CaseRepository
	auditSvc    *AuditService
}

func NewBooksService(
	expenseRepo repository.ExpenseRepository,
	depositRepo repository.DepositRepository,
	caseRepo repository.CaseRepository,
	auditSvc *AuditService,
) *BooksService {
	return &BooksService{expenseRepo: expenseRepo, depositRepo: depositRepo, caseRepo: caseRepo, auditSvc: auditSvc}
}

func (s *BooksService) ListExpenses(ctx context.Context, query *repository.ListQuery) ([]models.Expense, int64, error) {
	return s.expenseRepo.List(ctx, query)
}

func (s *BooksService) GetExpense(ctx context.Context, id uint) (*models.Expense, error) {
	return s.expenseRepo.FindByID(ctx, id)
}

func (s *BooksService) CreateExpense(ctx context.Context, in ExpenseInput, actor Actor) (*models.Expense, error) {
	if in.Amount == nil || in.IncurredOn == nil {
		return nil, fmt.Errorf("%w: amount and incurred_on are required", ErrInvalidInput)
	}
	expense := &models.Expense{}
	if err := applyExpenseInput(expense, in); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, err
	}
	s.auditSvc.Log(ctx, actor, models.AuditActionCreate, "Expense", expense.ID,
		fmt.Sprintf("Expense %s of %s", expense.Category, expense.Amount.StringFixed(2)))
	return expense, nil
}

func (s *BooksService) UpdateExpense(ctx context.Context, id uint, in ExpenseInput, actor Actor) (*models.Expense, error) {
	expense, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyExpenseInput(expense, in); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		return nil, err
	}
	s.auditSvc.Log(ctx, actor, models.AuditActionUpdate, "Expense", expense.ID, "Expense updated")
	return expense, nil
}

func (s *BooksService) DeleteExpense(ctx context.Context, id uint, actor Actor) error {
	if err := s.expenseRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actor, models.AuditActionDelete, "Expense", id, "Expense deleted")
	return nil
}

func applyExpenseInput(e *models.Expense, in ExpenseInput) error {
	if in.Category != nil {
		e.Category = strings.TrimSpace(*in.Category)
	}
	if e.Category == "" {
		e.Category = "Uncategorized"
	}
	if in.Amount != nil {
		amount := engine.RoundCents(*in.Amount)
		if !amount.IsPositive() {
			return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
		}
		e.Amount = amount
	}
	if in.IncurredOn != nil {
		e.IncurredOn = engine.DateOf(*in.IncurredOn)
	}
	if in.Description != nil {
		e.Description = optionalString(*in.Description)
	}
	return nil
}

func (s *BooksService) ListDeposits(ctx context.Context, query *repository.ListQuery) ([]models.Deposit, int64, error) {
	return s.depositRepo.List(ctx, query)
}

func (s *BooksService) GetDeposit(ctx context.Context, id uint) (*models.Deposit, error) {
	return s.depositRepo.FindByID(ctx, id)
}

func (s *BooksService) CreateDeposit(ctx context.Context, in DepositInput, actor Actor) (*models.Deposit, error) {
	if in.Amount == nil || in.ReceivedOn == nil {
		return nil, fmt.Errorf("%w: amount and received_on are required", ErrInvalidInput)
	}
	deposit := &models.Deposit{}
	if err := s.applyDepositInput(ctx, deposit, in); err != nil {
		return nil, err
	}
	if err := s.depositRepo.Create(ctx, deposit); err != nil {
		return nil, err
	}
	s.auditSvc.Log(ctx, actor, models.AuditActionCreate, "Deposit", deposit.ID,
		fmt.Sprintf("Deposit of %s", deposit.Amount.StringFixed(2)))
	return deposit, nil
}

func (s *BooksService) UpdateDeposit(ctx context.Context, id uint, in DepositInput, actor Actor) (*models.Deposit, error) {
	deposit, err := s.depositRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyDepositInput(ctx, deposit, in); err != nil {
		return nil, err
	}
	if err := s.depositRepo.Update(ctx, deposit); err != nil {
		return nil, err
	}
	s.auditSvc.Log(ctx, actor, models.AuditActionUpdate, "Deposit", deposit.ID, "Deposit updated")
	return deposit, nil
}

func (s *BooksService) DeleteDeposit(ctx context.Context, id uint, actor Actor) error {
	if err := s.depositRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actor, models.AuditActionDelete, "Deposit", id, "Deposit deleted")
	return nil
}

func (s *BooksService) applyDepositInput(ctx context.Context, d *models.Deposit, in DepositInput) error {
	if in.CaseID != nil {
		if *in.CaseID == 0 {
			d.CaseID = nil
		} else {
			if _, err := s.caseRepo.FindByID(ctx, *in.CaseID); err != nil {
				return err
			}
			caseID := *in.CaseID
			d.CaseID = &caseID
		}
	}
	if in.Amount != nil {
		amount := engine.RoundCents(*in.Amount)
		if !amount.IsPositive() {
			return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
		}
		d.Amount = amount
	}
	if in.ReceivedOn != nil {
		d.ReceivedOn = engine.DateOf(*in.ReceivedOn)
	}
	if in.Description != nil {
		d.Description = optionalString(*in.Description)
	}
	return nil
}
