package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Installment represents one scheduled or recorded payment toward a case premium
type Installment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CaseID        uint            `gorm:"not null;index" json:"case_id"`
	PlanID        *string         `gorm:"index" json:"plan_id,omitempty"` // batch id shared by one generated plan
	Sequence      int             `json:"sequence"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	DueDate       *time.Time      `gorm:"type:date;index" json:"due_date"`
	Status        string          `gorm:"default:pending;not null;index" json:"status"`
	PaidAt        *time.Time      `gorm:"index" json:"paid_at"`
	PaymentMethod *string         `json:"payment_method"`
	Source        string          `gorm:"default:plan;not null" json:"source"`
	Description   *string         `json:"description"`
	FailureReason *string         `gorm:"type:text" json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Installment
func (Installment) TableName() string {
	return "installments"
}

// Installment status constants
const (
	InstallmentStatusPending   = "pending"
	InstallmentStatusPaid      = "paid"
	InstallmentStatusFailed    = "failed"
	InstallmentStatusCancelled = "cancelled"
)

// Installment source constants
const (
	InstallmentSourcePlan   = "plan"
	InstallmentSourceManual = "manual"
)

// Payment method constants
const (
	PaymentMethodCash  = "cash"
	PaymentMethodCheck = "check"
	PaymentMethodCard  = "card"
	PaymentMethodOther = "other"
)

// IsPending returns true while the installment can still change status
func (i *Installment) IsPending() bool {
	return i.Status == InstallmentStatusPending
}

// IsTerminal returns true once the installment is paid, failed or cancelled
func (i *Installment) IsTerminal() bool {
	return !i.IsPending()
}
