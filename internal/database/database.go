package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sjperalta/bailbooks-api/internal/engine"
	"github.com/sjperalta/bailbooks-api/internal/models"
	pkgLogger "github.com/sjperalta/bailbooks-api/pkg/logger"
)

// Connect establishes a connection to the PostgreSQL database. SQL statements are
// logged at info level outside production.
func Connect(databaseURL string, production bool) (*gorm.DB, error) {
	logLevel := logger.Info
	if production {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:                 pkgLogger.NewGormLogger(logLevel, 200*time.Millisecond),
		NowFunc:                engine.Now,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the tables for every persisted model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.BondCase{},
		&models.Installment{},
		&models.Expense{},
		&models.Deposit{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
