package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sjperalta/bailbooks-api/internal/engine"
	"github.com/sjperalta/bailbooks-api/internal/models"
)

// CaseRepository defines the interface for bond case data access
type CaseRepository interface {
	FindByID(ctx context.Context, id uint) (*models.BondCase, error)
	FindByCaseNumber(ctx context.Context, caseNumber string) (*models.BondCase, error)
	Create(ctx context.Context, c *models.BondCase) error
	Update(ctx context.Context, c *models.BondCase) error
	List(ctx context.Context, query *ListQuery) ([]models.BondCase, int64, error)
	FindCreatedBetween(ctx context.Context, start, end time.Time) ([]models.BondCase, error)
	FindAll(ctx context.Context) ([]models.BondCase, error)
}

type caseRepository struct {
	db *gorm.DB
}

// NewCaseRepository creates a new bond case repository
func NewCaseRepository(db *gorm.DB) CaseRepository {
	return &caseRepository{db: db}
}

func (r *caseRepository) FindByID(ctx context.Context, id uint) (*models.BondCase, error) {
	var c models.BondCase
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, "case %d", id)
	}
	return &c, nil
}

func (r *caseRepository) FindByCaseNumber(ctx context.Context, caseNumber string) (*models.BondCase, error) {
	var c models.BondCase
	if err := r.db.WithContext(ctx).Where("case_number = ?", caseNumber).First(&c).Error; err != nil {
		return nil, notFound(err, "case %s", caseNumber)
	}
	return &c, nil
}

func (r *caseRepository) Create(ctx context.Context, c *models.BondCase) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if isDuplicateKeyError(err, "idx_bond_cases_case_number") {
			return fmt.Errorf("case number %s: %w", c.CaseNumber, ErrDuplicate)
		}
		return err
	}
	return nil
}

// Update saves the case columns only; installments are never written through a case.
func (r *caseRepository) Update(ctx context.Context, c *models.BondCase) error {
	return r.db.WithContext(ctx).Omit("Installments").Save(c).Error
}

func (r *caseRepository) List(ctx context.Context, query *ListQuery) ([]models.BondCase, int64, error) {
	var cases []models.BondCase
	var total int64

	db := r.db.WithContext(ctx).Model(&models.BondCase{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("case_number ILIKE ? OR defendant_name ILIKE ? OR COALESCE(indemnitor_name, '') ILIKE ?",
			search, search, search)
	}

	if val := query.Filters["start_date"]; val != "" {
		db = db.Where("created_at >= ?", val)
	}
	if val := query.Filters["end_date"]; val != "" {
		endDate := val
		if len(endDate) == 10 {
			endDate += " 23:59:59"
		}
		db = db.Where("created_at <= ?", endDate)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = query.paginate(db, map[string]string{
		"created_at":     "created_at",
		"case_number":    "case_number",
		"defendant_name": "defendant_name",
		"bond_amount":    "bond_amount",
	}, "created_at DESC")

	err := db.Find(&cases).Error
	return cases, total, err
}

// FindCreatedBetween returns cases opened on any calendar day in [start, end].
func (r *caseRepository) FindCreatedBetween(ctx context.Context, start, end time.Time) ([]models.BondCase, error) {
	var cases []models.BondCase
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", engine.DateOf(start), engine.AddDays(end, 1)).
		Order("created_at ASC").
		Find(&cases).Error
	return cases, err
}

func (r *caseRepository) FindAll(ctx context.Context) ([]models.BondCase, error) {
	var cases []models.BondCase
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&cases).Error
	return cases, err
}
