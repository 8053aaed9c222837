package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Case        CaseRepository
	Installment InstallmentRepository
	Expense     ExpenseRepository
	Deposit     DepositRepository
	Audit       AuditRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Case:        NewCaseRepository(db),
		Installment: NewInstallmentRepository(db),
		Expense:     NewExpenseRepository(db),
		Deposit:     NewDepositRepository(db),
		Audit:       NewAuditRepository(db),
	}
}
