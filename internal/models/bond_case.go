package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BondCase represents one bail bond engagement
type BondCase struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	CaseNumber       string           `gorm:"uniqueIndex;not null" json:"case_number"`
	DefendantName    string           `gorm:"not null" json:"defendant_name"`
	IndemnitorName   *string          `json:"indemnitor_name"`
	BondAmount       *decimal.Decimal `gorm:"type:decimal(14,2)" json:"bond_amount"`
	PremiumRate      *decimal.Decimal `gorm:"type:decimal(6,4)" json:"premium_rate"`    // nil = organization rate
	Premium          *decimal.Decimal `gorm:"type:decimal(14,2)" json:"premium"`        // nil until a user sets it
	DownPayment      *decimal.Decimal `gorm:"type:decimal(14,2)" json:"down_payment"`   // nil until a user sets it
	PaymentAmount    *decimal.Decimal `gorm:"type:decimal(14,2)" json:"payment_amount"` // per-installment amount actually billed
	PaymentFrequency *string          `json:"payment_frequency"`
	Note             *string          `gorm:"type:text" json:"note"`
	CreatedAt        time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`

	// Associations
	Installments []Installment `gorm:"foreignKey:CaseID" json:"installments,omitempty"`
}

// TableName specifies the table name for BondCase
func (BondCase) TableName() string {
	return "bond_cases"
}
