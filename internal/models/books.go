package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is an outgoing amount recorded in the books
type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Category    string          `gorm:"size:100;not null;index" json:"category"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	IncurredOn  time.Time       `gorm:"type:date;not null;index" json:"incurred_on"`
	Description *string         `gorm:"size:255" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Expense
func (Expense) TableName() string {
	return "expenses"
}

// Deposit is revenue that is neither a premium nor an installment (collateral
// forfeitures, fees, refunds received)
type Deposit struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CaseID      *uint           `gorm:"index" json:"case_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	ReceivedOn  time.Time       `gorm:"type:date;not null;index" json:"received_on"`
	Description *string         `gorm:"size:255" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Deposit
func (Deposit) TableName() string {
	return "deposits"
}
