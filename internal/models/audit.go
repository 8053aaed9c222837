package models

import (
	"time"
)

// AuditLog represents a back-office audit entry
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ActorID   uint      `gorm:"index" json:"actor_id"`                // 0 for system jobs
	Action    string    `gorm:"size:50;not null" json:"action"`       // CREATE, UPDATE, PAY, FAIL, CANCEL, RESTRUCTURE
	Entity    string    `gorm:"size:50;not null;index" json:"entity"` // BondCase, Installment, Expense, Deposit
	EntityID  uint      `gorm:"index" json:"entity_id"`
	Details   string    `gorm:"type:text" json:"details"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit actions
const (
	AuditActionCreate      = "CREATE"
	AuditActionUpdate      = "UPDATE"
	AuditActionDelete      = "DELETE"
	AuditActionPay         = "PAY"
	AuditActionFail        = "FAIL"
	AuditActionCancel      = "CANCEL"
	AuditActionRestructure = "RESTRUCTURE"
)
