package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sjperalta/bailbooks-api/internal/engine"
	"github.com/sjperalta/bailbooks-api/internal/models"
)

// ExpenseRepository defines the interface for expense data access
type ExpenseRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Expense, error)
	Create(ctx context.Context, expense *models.Expense) error
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Expense, int64, error)
	FindBetween(ctx context.Context, start, end time.Time) ([]models.Expense, error)
}

type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) FindByID(ctx context.Context, id uint) (*models.Expense, error) {
	var e models.Expense
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, notFound(err, "expense %d", id)
	}
	return &e, nil
}

func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *expenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

func (r *expenseRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Expense{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "expense %d", id)
	}
	return nil
}

func (r *expenseRepository) List(ctx context.Context, query *ListQuery) ([]models.Expense, int64, error) {
	var expenses []models.Expense
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Expense{})
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("category ILIKE ? OR COALESCE(description, '') ILIKE ?", search, search)
	}
	if val := query.Filters["category"]; val != "" {
		db = db.Where("category = ?", val)
	}
	if val := query.Filters["start_date"]; val != "" {
		db = db.Where("incurred_on >= ?", val)
	}
	if val := query.Filters["end_date"]; val != "" {
		db = db.Where("incurred_on <= ?", val)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = query.paginate(db, map[string]string{
		"incurred_on": "incurred_on",
		"amount":      "amount",
		"category":    "category",
	}, "incurred_on DESC, id DESC")

	err := db.Find(&expenses).Error
	return expenses, total, err
}

// FindBetween returns expenses incurred on any calendar day in [start, end].
func (r *expenseRepository) FindBetween(ctx context.Context, start, end time.Time) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.db.WithContext(ctx).
		Where("incurred_on >= ? AND incurred_on <= ?", engine.DateOf(start), engine.DateOf(end)).
		Order("incurred_on ASC").
		Find(&expenses).Error
	return expenses, err
}

// DepositRepository defines the interface for other-deposit data access
type DepositRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Deposit, error)
	Create(ctx context.Context, deposit *models.Deposit) error
	Update(ctx context.Context, deposit *models.Deposit) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Deposit, int64, error)
	FindBetween(ctx context.Context, start, end time.Time) ([]models.Deposit, error)
}

type depositRepository struct {
	db *gorm.DB
}

// NewDepositRepository creates a new deposit repository
func NewDepositRepository(db *gorm.DB) DepositRepository {
	return &depositRepository{db: db}
}

func (r *depositRepository) FindByID(ctx context.Context, id uint) (*models.Deposit, error) {
	var d models.Deposit
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, notFound(err, "deposit %d", id)
	}
	return &d, nil
}

func (r *depositRepository) Create(ctx context.Context, deposit *models.Deposit) error {
	return r.db.WithContext(ctx).Create(deposit).Error
}

func (r *depositRepository) Update(ctx context.Context, deposit *models.Deposit) error {
	return r.db.WithContext(ctx).Save(deposit).Error
}

func (r *depositRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Deposit{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "deposit %d", id)
	}
	return nil
}

func (r *depositRepository) List(ctx context.Context, query *ListQuery) ([]models.Deposit, int64, error) {
	var deposits []models.Deposit
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Deposit{})
	if query.Search != "" {
		db = db.Where("COALESCE(description, '') ILIKE ?", "%"+query.Search+"%")
	}
	if val := query.Filters["case_id"]; val != "" {
		db = db.Where("case_id = ?", val)
	}
	if val := query.Filters["start_date"]; val != "" {
		db = db.Where("received_on >= ?", val)
	}
	if val := query.Filters["end_date"]; val != "" {
		db = db.Where("received_on <= ?", val)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = query.paginate(db, map[string]string{
		"received_on": "received_on",
		"amount":      "amount",
	}, "received_on DESC, id DESC")

	err := db.Find(&deposits).Error
	return deposits, total, err
}

// FindBetween returns deposits received on any calendar day in [start, end].
func (r *depositRepository) FindBetween(ctx context.Context, start, end time.Time) ([]models.Deposit, error) {
	var deposits []models.Deposit
	err := r.db.WithContext(ctx).
		Where("received_on >= ? AND received_on <= ?", engine.DateOf(start), engine.DateOf(end)).
		Order("received_on ASC").
		Find(&deposits).Error
	return deposits, err
}
