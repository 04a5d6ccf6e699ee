package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"trading-contests/internal/database"
	"trading-contests/internal/metrics"
	"trading-contests/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerService is the only writer of wallet balances. Every balance change
// appends exactly one LedgerTransaction in the same database transaction as
// the wallet update, so replaying the ledger always reproduces the balance.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// Credit adds amount to the user's wallet. amount must be positive.
// Calling again with the same (type, correlationID) returns the original
// transaction without moving money.
func (s *LedgerService) Credit(userID uint, amount decimal.Decimal, txType models.TransactionType, correlationID, description string) (*models.LedgerTransaction, error) {
	var result *models.LedgerTransaction
	err := database.RunInTransaction(s.db, func(tx *gorm.DB) error {
		var err error
		result, err = s.CreditTx(tx, userID, amount, txType, correlationID, description)
		return err
	})
	return result, err
}

// Debit removes amount from the user's wallet. amount must be positive.
// Fails with a validation error if the balance would go negative.
func (s *LedgerService) Debit(userID uint, amount decimal.Decimal, txType models.TransactionType, correlationID, description string) (*models.LedgerTransaction, error) {
	var result *models.LedgerTransaction
	err := database.RunInTransaction(s.db, func(tx *gorm.DB) error {
		var err error
		result, err = s.DebitTx(tx, userID, amount, txType, correlationID, description)
		return err
	})
	return result, err
}

// CreditTx is Credit running inside the caller's transaction, so a credit
// commits or rolls back together with the caller's other writes.
func (s *LedgerService) CreditTx(tx *gorm.DB, userID uint, amount decimal.Decimal, txType models.TransactionType, correlationID, description string) (*models.LedgerTransaction, error) {
	if !amount.IsPositive() {
		return nil, NewValidationError("amount", "must be positive")
	}
	return s.apply(tx, userID, amount, txType, correlationID, description, false)
}

// DebitTx is Debit running inside the caller's transaction.
func (s *LedgerService) DebitTx(tx *gorm.DB, userID uint, amount decimal.Decimal, txType models.TransactionType, correlationID, description string) (*models.LedgerTransaction, error) {
	if !amount.IsPositive() {
		return nil, NewValidationError("amount", "must be positive")
	}
	return s.apply(tx, userID, amount.Neg(), txType, correlationID, description, false)
}

// Adjust applies a signed admin adjustment. It may drive the balance
// negative; that is the operator's call.
func (s *LedgerService) Adjust(userID uint, amount decimal.Decimal, correlationID, description string) (*models.LedgerTransaction, error) {
	if amount.IsZero() {
		return nil, NewValidationError("amount", "must not be zero")
	}
	var result *models.LedgerTransaction
	err := database.RunInTransaction(s.db, func(tx *gorm.DB) error {
		var err error
		result, err = s.apply(tx, userID, amount, models.TransactionTypeAdjustment, correlationID, description, true)
		return err
	})
	return result, err
}

// apply moves a signed amount through the wallet. The wallet row carries a
// version counter; a concurrent writer makes the guarded UPDATE touch zero
// rows, which surfaces as a retryable conflict.
func (s *LedgerService) apply(tx *gorm.DB, userID uint, amount decimal.Decimal, txType models.TransactionType, correlationID, description string, allowNegative bool) (*models.LedgerTransaction, error) {
	if correlationID == "" {
		return nil, NewValidationError("correlation_id", "is required")
	}

	// Idempotency: a completed transaction with the same key already settled
	// this movement. Only COMPLETED rows count; a pending or failed row must
	// not absorb a retry.
	var existing models.LedgerTransaction
	err := tx.Where("type = ? AND correlation_id = ? AND user_id = ? AND status = ?",
		txType, correlationID, userID, models.TransactionStatusCompleted).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check ledger idempotency: %w", err)
	}

	wallet, err := s.loadOrCreateWallet(tx, userID)
	if err != nil {
		return nil, err
	}

	balanceBefore := wallet.Balance
	balanceAfter := balanceBefore.Add(amount)
	if balanceAfter.IsNegative() && !allowNegative {
		return nil, NewValidationError("amount", fmt.Sprintf(
			"insufficient funds: balance %s, requested %s", balanceBefore, amount.Abs()))
	}

	record := models.LedgerTransaction{
		ID:            uuid.New(),
		UserID:        userID,
		Type:          txType,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		Status:        models.TransactionStatusCompleted,
		CorrelationID: correlationID,
		Description:   description,
		CreatedAt:     time.Now(),
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to append ledger transaction: %w", err)
	}

	updates := map[string]interface{}{
		"balance":    balanceAfter,
		"version":    wallet.Version + 1,
		"updated_at": time.Now(),
	}
	switch txType {
	case models.TransactionTypeDeposit:
		updates["total_deposited"] = wallet.TotalDeposited.Add(amount)
	case models.TransactionTypeWithdrawal:
		updates["total_withdrawn"] = wallet.TotalWithdrawn.Add(amount.Abs())
	case models.TransactionTypeWin:
		updates["total_won"] = wallet.TotalWon.Add(amount)
	case models.TransactionTypeEntry, models.TransactionTypeFee:
		updates["total_spent"] = wallet.TotalSpent.Add(amount.Abs())
	}

	res := tx.Model(&models.CreditWallet{}).
		Where("id = ? AND version = ?", wallet.ID, wallet.Version).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update wallet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, NewConflictError("wallet", fmt.Sprintf("version changed for user %d", userID))
	}

	metrics.LedgerTransactionsTotal.WithLabelValues(string(txType)).Inc()
	log.Printf("[Ledger] user=%d type=%s amount=%s balance=%s correlation=%s",
		userID, txType, amount, balanceAfter, correlationID)

	return &record, nil
}

func (s *LedgerService) loadOrCreateWallet(tx *gorm.DB, userID uint) (*models.CreditWallet, error) {
	var wallet models.CreditWallet
	err := tx.Where("user_id = ?", userID).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}

	wallet = models.CreditWallet{
		UserID:         userID,
		Balance:        decimal.Zero,
		TotalDeposited: decimal.Zero,
		TotalWithdrawn: decimal.Zero,
		TotalWon:       decimal.Zero,
		TotalSpent:     decimal.Zero,
	}
	if err := tx.Create(&wallet).Error; err != nil {
		// Unique index on user_id: a concurrent creator won the race.
		return nil, NewConflictError("wallet", fmt.Sprintf("concurrent create for user %d", userID))
	}
	return &wallet, nil
}

// GetWallet returns the user's wallet, creating an empty one on first use.
func (s *LedgerService) GetWallet(userID uint) (*models.CreditWallet, error) {
	var wallet *models.CreditWallet
	err := database.RunInTransaction(s.db, func(tx *gorm.DB) error {
		var err error
		wallet, err = s.loadOrCreateWallet(tx, userID)
		return err
	})
	return wallet, err
}

// GetTransactions returns the user's ledger history, newest first.
func (s *LedgerService) GetTransactions(userID uint, limit, offset int) ([]models.LedgerTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var records []models.LedgerTransaction
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger transactions: %w", err)
	}
	return records, nil
}
