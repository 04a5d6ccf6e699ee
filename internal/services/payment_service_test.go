package services

import (
	"testing"
	"time"

	"trading-contests/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestDepositWebhookReplay(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	payments := NewPaymentService(db, ledger)

	first, err := payments.HandleDepositConfirmed(1, decimal.NewFromInt(75), "tx-abc")
	if err != nil {
		t.Fatalf("HandleDepositConfirmed failed: %v", err)
	}
	replay, err := payments.HandleDepositConfirmed(1, decimal.NewFromInt(75), "tx-abc")
	if err != nil {
		t.Fatalf("Replayed deposit failed: %v", err)
	}
	if first.ID != replay.ID {
		t.Errorf("Expected the replay to return the original transaction")
	}

	wallet, err := ledger.GetWallet(1)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !wallet.Balance.Equal(decimal.NewFromInt(75)) {
		t.Errorf("Expected balance 75 after replayed webhook, got %s", wallet.Balance)
	}

	if _, err := payments.HandleDepositConfirmed(1, decimal.NewFromInt(10), ""); !IsValidation(err) {
		t.Errorf("Expected validation error for missing provider tx id, got %v", err)
	}
}

func TestWithdrawalLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	payments := NewPaymentService(db, ledger)

	if _, err := payments.HandleDepositConfirmed(2, decimal.NewFromInt(100), "tx-fund"); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	request, err := payments.RequestWithdrawal(2, decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("RequestWithdrawal failed: %v", err)
	}
	if request.Status != models.WithdrawalStatusPending {
		t.Errorf("Expected pending withdrawal, got %s", request.Status)
	}

	wallet, _ := ledger.GetWallet(2)
	if !wallet.Balance.Equal(decimal.NewFromInt(60)) {
		t.Errorf("Expected balance 60 after the debit, got %s", wallet.Balance)
	}

	if err := payments.MarkProcessing(request.ID, "provider-77"); err != nil {
		t.Fatalf("MarkProcessing failed: %v", err)
	}

	settled, err := payments.HandlePayoutResult(request.ID, true, "")
	if err != nil {
		t.Fatalf("HandlePayoutResult failed: %v", err)
	}
	if settled.Status != models.WithdrawalStatusCompleted {
		t.Errorf("Expected completed withdrawal, got %s", settled.Status)
	}

	// Replayed verdicts change nothing.
	again, err := payments.HandlePayoutResult(request.ID, false, "late duplicate")
	if err != nil {
		t.Fatalf("Replayed verdict failed: %v", err)
	}
	if again.Status != models.WithdrawalStatusCompleted {
		t.Errorf("Expected status to stay completed, got %s", again.Status)
	}
	wallet, _ = ledger.GetWallet(2)
	if !wallet.Balance.Equal(decimal.NewFromInt(60)) {
		t.Errorf("Expected balance unchanged at 60, got %s", wallet.Balance)
	}
}

func TestFailedPayoutRefunds(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	payments := NewPaymentService(db, ledger)

	if _, err := payments.HandleDepositConfirmed(3, decimal.NewFromInt(100), "tx-fund-3"); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	request, err := payments.RequestWithdrawal(3, decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("RequestWithdrawal failed: %v", err)
	}

	failed, err := payments.HandlePayoutResult(request.ID, false, "bank rejected")
	if err != nil {
		t.Fatalf("HandlePayoutResult failed: %v", err)
	}
	if failed.Status != models.WithdrawalStatusFailed {
		t.Errorf("Expected failed withdrawal, got %s", failed.Status)
	}
	if failed.FailReason == nil || *failed.FailReason != "bank rejected" {
		t.Errorf("Expected the provider's fail reason stored, got %v", failed.FailReason)
	}

	wallet, _ := ledger.GetWallet(3)
	if !wallet.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected the debit returned, balance %s", wallet.Balance)
	}

	// Replaying the failure must not refund twice.
	if _, err := payments.HandlePayoutResult(request.ID, false, "bank rejected"); err != nil {
		t.Fatalf("Replayed failure failed: %v", err)
	}
	wallet, _ = ledger.GetWallet(3)
	if !wallet.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected a single refund, balance %s", wallet.Balance)
	}
}

func TestWithdrawalValidation(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	payments := NewPaymentService(db, ledger)

	if _, err := payments.RequestWithdrawal(4, decimal.NewFromInt(-5)); !IsValidation(err) {
		t.Errorf("Expected validation error for negative amount, got %v", err)
	}
	if _, err := payments.RequestWithdrawal(4, decimal.NewFromInt(50)); !IsValidation(err) {
		t.Errorf("Expected validation error for insufficient funds, got %v", err)
	}

	var count int64
	if err := db.Model(&models.WithdrawalRequest{}).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count withdrawal requests: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no request rows after rejections, got %d", count)
	}

	if _, err := payments.HandlePayoutResult(uuid.New(), true, ""); !IsNotFound(err) {
		t.Errorf("Expected not-found error for an unknown withdrawal, got %v", err)
	}
}

func TestStaleProcessing(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	payments := NewPaymentService(db, ledger)

	if _, err := payments.HandleDepositConfirmed(5, decimal.NewFromInt(100), "tx-fund-5"); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	request, err := payments.RequestWithdrawal(5, decimal.NewFromInt(20))
	if err != nil {
		t.Fatalf("RequestWithdrawal failed: %v", err)
	}
	if err := payments.MarkProcessing(request.ID, "provider-9"); err != nil {
		t.Fatalf("MarkProcessing failed: %v", err)
	}

	// Backdate the processing row past the threshold.
	if err := db.Model(&models.WithdrawalRequest{}).
		Where("id = ?", request.ID).
		Update("updated_at", time.Now().Add(-2*time.Hour)).Error; err != nil {
		t.Fatalf("Failed to backdate withdrawal: %v", err)
	}

	stale, err := payments.StaleProcessing(time.Hour)
	if err != nil {
		t.Fatalf("StaleProcessing failed: %v", err)
	}
	if len(stale) != 1 || stale[0].ID != request.ID {
		t.Errorf("Expected the backdated withdrawal reported stale, got %v", stale)
	}
}
