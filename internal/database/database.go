package database

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"trading-contests/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// ErrTxConflict marks an error as a retryable write conflict. Errors wrapping
// it cause RunInTransaction to roll back and run the closure again.
var ErrTxConflict = errors.New("transaction conflict")

const maxTxRetries = 3

// TransactionAbortError reports that a transaction kept conflicting and was
// given up on after exhausting its retries.
type TransactionAbortError struct {
	Attempts int
	Err      error
}

func (e *TransactionAbortError) Error() string {
	return fmt.Sprintf("transaction aborted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransactionAbortError) Unwrap() error {
	return e.Err
}

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
	})

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate() error {
	return MigrateAll(DB)
}

// MigrateAll migrates every model on the given connection. Tests use it with
// their own sqlite handles.
func MigrateAll(db *gorm.DB) error {
	// Core models first
	coreModels := []interface{}{
		&models.User{},
		&models.CreditWallet{},
		&models.LedgerTransaction{},
		&models.Instrument{},
	}

	for _, model := range coreModels {
		if err := db.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	// Contest models
	contestModels := []interface{}{
		&models.Contest{},
		&models.ContestParticipant{},
		&models.LeaderboardSnapshot{},
		&models.Position{},
		&models.TradeHistoryRecord{},
	}

	for _, model := range contestModels {
		if err := db.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	// Payment and admin models
	adminModels := []interface{}{
		&models.WithdrawalRequest{},
		&models.AdminUser{},
		&models.AdminLog{},
	}

	for _, model := range adminModels {
		if err := db.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedInstruments inserts the default instrument set if the table is empty.
func SeedInstruments(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Instrument{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count instruments: %w", err)
	}
	if count > 0 {
		return nil
	}

	defaults := models.DefaultInstruments()
	if err := db.Create(&defaults).Error; err != nil {
		return fmt.Errorf("failed to seed instruments: %w", err)
	}
	log.Printf("Seeded %d default instruments", len(defaults))
	return nil
}

// RunInTransaction executes fn inside a database transaction. A conflict
// (optimistic lock miss, duplicate key race, serialization failure) rolls the
// transaction back and reruns fn on a fresh one, up to maxTxRetries attempts.
// Any other error aborts immediately and is returned as-is.
func RunInTransaction(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var lastErr error

	for attempt := 1; attempt <= maxTxRetries; attempt++ {
		lastErr = db.Transaction(fn)
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
		log.Printf("[Database] Transaction conflict (attempt %d/%d): %v", attempt, maxTxRetries, lastErr)
	}

	return &TransactionAbortError{Attempts: maxTxRetries, Err: lastErr}
}

func isRetryable(err error) bool {
	if errors.Is(err, ErrTxConflict) {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Driver errors surface as plain strings; match the usual suspects from
	// postgres and the sqlite test driver.
	msg := err.Error()
	return strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
