package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopspring/decimal"

	"github.com/sjperalta/bailbooks-api/internal/engine"
	"github.com/sjperalta/bailbooks-api/internal/models"
)

// InstallmentRepository defines the interface for installment data access
type InstallmentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Installment, error)
	FindByCase(ctx context.Context, caseID uint) ([]models.Installment, error)
	Create(ctx context.Context, installment *models.Installment) error
	Transition(ctx context.Context, installment *models.Installment, from string) error
	CancelPendingByCase(ctx context.Context, caseID uint) (int64, error)
	ReplacePlan(ctx context.Context, plan *PlanReplacement) (int64, error)
	List(ctx context.Context, query *ListQuery) ([]models.Installment, int64, error)
	FindPendingDueBy(ctx context.Context, date time.Time) ([]models.Installment, error)
	FindPaidBetween(ctx context.Context, start, end time.Time) ([]models.Installment, error)
	FindAll(ctx context.Context) ([]models.Installment, error)
}

// PlanReplacement is the unit of work applied when a case's plan is regenerated:
// every pending installment of the case is cancelled and the new set inserted.
type PlanReplacement struct {
	CaseID           uint
	PaymentAmount    decimal.Decimal
	PaymentFrequency string
	Installments     []models.Installment
}

type installmentRepository struct {
	db *gorm.DB
}

// NewInstallmentRepository creates a new installment repository
func NewInstallmentRepository(db *gorm.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) FindByID(ctx context.Context, id uint) (*models.Installment, error) {
	var inst models.Installment
	if err := r.db.WithContext(ctx).First(&inst, id).Error; err != nil {
		return nil, notFound(err, "installment %d", id)
	}
	return &inst, nil
}

// FindByCase returns a case's installments by due date, then creation order.
func (r *installmentRepository) FindByCase(ctx context.Context, caseID uint) ([]models.Installment, error) {
	var installments []models.Installment
	err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("due_date ASC NULLS LAST, created_at ASC, id ASC").
		Find(&installments).Error
	return installments, err
}

func (r *installmentRepository) Create(ctx context.Context, installment *models.Installment) error {
	return r.db.WithContext(ctx).Create(installment).Error
}

// Transition persists a status change only if the row is still in the from status.
// Of two racing transitions on the same installment exactly one matches; the other
// gets ErrInvalidTransition.
func (r *installmentRepository) Transition(ctx context.Context, installment *models.Installment, from string) error {
	installment.UpdatedAt = engine.Now()
	result := r.db.WithContext(ctx).
		Model(&models.Installment{}).
		Where("id = ? AND status = ?", installment.ID, from).
		Select("Status", "PaidAt", "PaymentMethod", "FailureReason", "UpdatedAt").
		Updates(installment)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	current, err := r.FindByID(ctx, installment.ID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: installment %d is %s", engine.ErrInvalidTransition, installment.ID, current.Status)
}

// CancelPendingByCase moves every pending installment of a case to cancelled.
func (r *installmentRepository) CancelPendingByCase(ctx context.Context, caseID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Installment{}).
		Where("case_id = ? AND status = ?", caseID, models.InstallmentStatusPending).
		Update("status", models.InstallmentStatusCancelled)
	return result.RowsAffected, result.Error
}

// ReplacePlan runs a restructure as one transaction holding the case row lock, so
// two restructures of the same case serialize and no reader sees both plans active.
func (r *installmentRepository) ReplacePlan(ctx context.Context, plan *PlanReplacement) (int64, error) {
	var cancelled int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.BondCase
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, plan.CaseID).Error; err != nil {
			return notFound(err, "case %d", plan.CaseID)
		}

		result := tx.Model(&models.Installment{}).
			Where("case_id = ? AND status = ?", plan.CaseID, models.InstallmentStatusPending).
			Update("status", models.InstallmentStatusCancelled)
		if result.Error != nil {
			return result.Error
		}
		cancelled = result.RowsAffected

		if len(plan.Installments) > 0 {
			for i := range plan.Installments {
				plan.Installments[i].CaseID = plan.CaseID
			}
			if err := tx.Create(&plan.Installments).Error; err != nil {
				return err
			}
		}

		frequency := plan.PaymentFrequency
		return tx.Model(&c).Select("PaymentAmount", "PaymentFrequency").Updates(&models.BondCase{
			PaymentAmount:    &plan.PaymentAmount,
			PaymentFrequency: &frequency,
		}).Error
	})
	if err != nil {
		return 0, err
	}
	return cancelled, nil
}

// List supports the tracker view. Filters: case_id, status (comma separated or the
// virtual "overdue"), source, start_date/end_date on due_date.
func (r *installmentRepository) List(ctx context.Context, query *ListQuery) ([]models.Installment, int64, error) {
	var installments []models.Installment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Installment{})

	if val := query.Filters["case_id"]; val != "" {
		db = db.Where("case_id = ?", val)
	}

	statusFilter := query.Filters["status"]
	switch {
	case statusFilter == "":
	case statusFilter == "overdue":
		db = db.Where("status = ? AND due_date < CURRENT_DATE", models.InstallmentStatusPending)
	case strings.Contains(statusFilter, ","):
		db = db.Where("status IN ?", strings.Split(statusFilter, ","))
	default:
		db = db.Where("status = ?", statusFilter)
	}

	if val := query.Filters["source"]; val != "" {
		db = db.Where("source = ?", val)
	}
	if val := query.Filters["start_date"]; val != "" {
		db = db.Where("due_date >= ?", val)
	}
	if val := query.Filters["end_date"]; val != "" {
		db = db.Where("due_date <= ?", val)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = query.paginate(db, map[string]string{
		"due_date":   "due_date",
		"amount":     "amount",
		"paid_at":    "paid_at",
		"created_at": "created_at",
	}, "due_date ASC NULLS LAST, id ASC")

	err := db.Find(&installments).Error
	return installments, total, err
}

// FindPendingDueBy returns pending installments due on or before date.
func (r *installmentRepository) FindPendingDueBy(ctx context.Context, date time.Time) ([]models.Installment, error) {
	var installments []models.Installment
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date <= ?", models.InstallmentStatusPending, engine.DateOf(date)).
		Order("due_date ASC").
		Find(&installments).Error
	return installments, err
}

// FindPaidBetween returns installments paid on any calendar day in [start, end].
func (r *installmentRepository) FindPaidBetween(ctx context.Context, start, end time.Time) ([]models.Installment, error) {
	var installments []models.Installment
	err := r.db.WithContext(ctx).
		Where("status = ? AND paid_at >= ? AND paid_at < ?",
			models.InstallmentStatusPaid, engine.DateOf(start), engine.AddDays(end, 1)).
		Order("paid_at ASC").
		Find(&installments).Error
	return installments, err
}

func (r *installmentRepository) FindAll(ctx context.Context) ([]models.Installment, error) {
	var installments []models.Installment
	err := r.db.WithContext(ctx).
		Order("case_id ASC, due_date ASC NULLS LAST, created_at ASC").
		Find(&installments).Error
	return installments, err
}

// IsNotFound reports whether err is a missing-row error from any repository.
func IsNotFound(err error) bool {
	return errors.Is(err, engine.ErrNotFound)
}
