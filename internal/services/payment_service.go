package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"trading-contests/internal/database"
	"trading-contests/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentService bridges the external payment provider and the ledger.
// Providers deliver webhooks at-least-once, so every handler here must
// tolerate replays.
type PaymentService struct {
	db     *gorm.DB
	ledger *LedgerService
}

func NewPaymentService(db *gorm.DB, ledger *LedgerService) *PaymentService {
	return &PaymentService{db: db, ledger: ledger}
}

// HandleDepositConfirmed credits the user once per provider transaction.
// A replayed webhook returns the original ledger transaction.
func (s *PaymentService) HandleDepositConfirmed(userID uint, amount decimal.Decimal, providerTxID string) (*models.LedgerTransaction, error) {
	if providerTxID == "" {
		return nil, NewValidationError("provider_tx_id", "is required")
	}
	return s.ledger.Credit(userID, amount, models.TransactionTypeDeposit,
		"provider:"+providerTxID, "Deposit confirmed by payment provider")
}

// RequestWithdrawal debits the amount and records a pending payout request
// in one transaction. The debit fails on insufficient funds before any
// request row exists.
func (s *PaymentService) RequestWithdrawal(userID uint, amount decimal.Decimal) (*models.WithdrawalRequest, error) {
	if !amount.IsPositive() {
		return nil, NewValidationError("amount", "must be positive")
	}

	request := &models.WithdrawalRequest{
		ID:     uuid.New(),
		UserID: userID,
		Amount: amount,
		Status: models.WithdrawalStatusPending,
	}
	err := database.RunInTransaction(s.db, func(tx *gorm.DB) error {
		_, err := s.ledger.DebitTx(tx, userID, amount, models.TransactionTypeWithdrawal,
			"withdrawal:"+request.ID.String(), "Withdrawal request")
		if err != nil {
			return err
		}
		return tx.Create(request).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Payment] Withdrawal %s requested: user=%d amount=%s", request.ID, userID, amount)
	return request, nil
}

// MarkProcessing records that the provider accepted the payout.
func (s *PaymentService) MarkProcessing(withdrawalID uuid.UUID, providerTxID string) error {
	res := s.db.Model(&models.WithdrawalRequest{}).
		Where("id = ? AND status = ?", withdrawalID, models.WithdrawalStatusPending).
		Updates(map[string]interface{}{
			"status":         models.WithdrawalStatusProcessing,
			"provider_tx_id": providerTxID,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark withdrawal processing: %w", res.Error)
	}
	return nil
}

// HandlePayoutResult settles a withdrawal on the provider's verdict. Failure
// refunds the debited amount; both paths are idempotent per withdrawal.
func (s *PaymentService) HandlePayoutResult(withdrawalID uuid.UUID, success bool, failReason string) (*models.WithdrawalRequest, error) {
	var request models.WithdrawalRequest

	err := database.RunInTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&request, "id = ?", withdrawalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("withdrawal", withdrawalID.String())
			}
			return fmt.Errorf("failed to load withdrawal: %w", err)
		}

		// Replays of a settled withdrawal are acknowledged as-is.
		if request.Status == models.WithdrawalStatusCompleted ||
			request.Status == models.WithdrawalStatusFailed {
			return nil
		}

		if success {
			return tx.Model(&models.WithdrawalRequest{}).
				Where("id = ?", withdrawalID).
				Update("status", models.WithdrawalStatusCompleted).Error
		}

		_, err := s.ledger.CreditTx(tx, request.UserID, request.Amount, models.TransactionTypeRefund,
			"withdrawal:"+withdrawalID.String()+":refund", "Withdrawal failed, amount returned")
		if err != nil {
			return err
		}
		return tx.Model(&models.WithdrawalRequest{}).
			Where("id = ?", withdrawalID).
			Updates(map[string]interface{}{
				"status":      models.WithdrawalStatusFailed,
				"fail_reason": failReason,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.First(&request, "id = ?", withdrawalID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload withdrawal: %w", err)
	}
	log.Printf("[Payment] Withdrawal %s settled: status=%s", withdrawalID, request.Status)
	return &request, nil
}

// StaleProcessing lists withdrawals stuck in PROCESSING longer than the
// threshold. They are reported to operators, never rolled back blindly: the
// provider may still complete them.
func (s *PaymentService) StaleProcessing(olderThan time.Duration) ([]models.WithdrawalRequest, error) {
	cutoff := time.Now().Add(-olderThan)
	var stale []models.WithdrawalRequest
	err := s.db.Where("status = ? AND updated_at < ?", models.WithdrawalStatusProcessing, cutoff).
		Order("updated_at").
		Find(&stale).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale withdrawals: %w", err)
	}
	return stale, nil
}
