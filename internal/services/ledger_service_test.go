package services

import (
	"fmt"
	"testing"
	"time"

	"trading-contests/internal/database"
	"trading-contests/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a per-test in-memory sqlite database and migrates the
// full schema. Shared by every service test in this package.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.MigrateAll(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("Invalid decimal %q: %v", s, err)
	}
	return d
}

func TestCreditAndDebit(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)

	tx, err := ledger.Credit(1, decimal.NewFromInt(100), "DEPOSIT", "provider:tx-1", "deposit")
	if err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if !tx.BalanceBefore.IsZero() || !tx.BalanceAfter.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected balance 0 -> 100, got %s -> %s", tx.BalanceBefore, tx.BalanceAfter)
	}

	tx, err = ledger.Debit(1, decimal.NewFromInt(30), "ENTRY", "contest:1:entry", "entry fee")
	if err != nil {
		t.Fatalf("Debit failed: %v", err)
	}
	if !tx.Amount.Equal(decimal.NewFromInt(-30)) {
		t.Errorf("Expected debit amount -30, got %s", tx.Amount)
	}
	if !tx.BalanceAfter.Equal(decimal.NewFromInt(70)) {
		t.Errorf("Expected balance 70 after debit, got %s", tx.BalanceAfter)
	}

	wallet, err := ledger.GetWallet(1)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !wallet.Balance.Equal(decimal.NewFromInt(70)) {
		t.Errorf("Expected wallet balance 70, got %s", wallet.Balance)
	}
	if !wallet.TotalDeposited.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected total deposited 100, got %s", wallet.TotalDeposited)
	}
	if !wallet.TotalSpent.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Expected total spent 30, got %s", wallet.TotalSpent)
	}
}

func TestCreditReplayIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)

	first, err := ledger.Credit(1, decimal.NewFromInt(50), "DEPOSIT", "provider:tx-9", "deposit")
	if err != nil {
		t.Fatalf("First credit failed: %v", err)
	}

	second, err := ledger.Credit(1, decimal.NewFromInt(50), "DEPOSIT", "provider:tx-9", "deposit")
	if err != nil {
		t.Fatalf("Replayed credit failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("Expected replay to return the original transaction, got %s and %s", first.ID, second.ID)
	}

	wallet, err := ledger.GetWallet(1)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !wallet.Balance.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected balance 50 after replay, got %s", wallet.Balance)
	}

	transactions, err := ledger.GetTransactions(1, 10, 0)
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(transactions) != 1 {
		t.Errorf("Expected 1 ledger transaction, got %d", len(transactions))
	}
}

func TestDebitInsufficientFunds(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)

	if _, err := ledger.Credit(1, decimal.NewFromInt(10), "DEPOSIT", "provider:tx-2", "deposit"); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}

	_, err := ledger.Debit(1, decimal.NewFromInt(25), "ENTRY", "contest:2:entry", "entry fee")
	if !IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}

	wallet, err := ledger.GetWallet(1)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !wallet.Balance.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected balance unchanged at 10, got %s", wallet.Balance)
	}

	transactions, err := ledger.GetTransactions(1, 10, 0)
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}
	if len(transactions) != 1 {
		t.Errorf("Expected only the deposit in the ledger, got %d records", len(transactions))
	}
}

func TestAdjustAllowsNegativeBalance(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)

	tx, err := ledger.Adjust(7, decimal.NewFromInt(-25), "admin:42:clawback", "manual clawback")
	if err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}
	if !tx.BalanceAfter.Equal(decimal.NewFromInt(-25)) {
		t.Errorf("Expected balance -25, got %s", tx.BalanceAfter)
	}

	wallet, err := ledger.GetWallet(7)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !wallet.Balance.Equal(decimal.NewFromInt(-25)) {
		t.Errorf("Expected wallet balance -25, got %s", wallet.Balance)
	}
}

func TestLedgerValidation(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)

	if _, err := ledger.Credit(1, decimal.NewFromInt(-5), "DEPOSIT", "provider:tx-3", ""); !IsValidation(err) {
		t.Errorf("Expected validation error for negative credit, got %v", err)
	}
	if _, err := ledger.Credit(1, decimal.Zero, "DEPOSIT", "provider:tx-4", ""); !IsValidation(err) {
		t.Errorf("Expected validation error for zero credit, got %v", err)
	}
	if _, err := ledger.Credit(1, decimal.NewFromInt(5), "DEPOSIT", "", ""); !IsValidation(err) {
		t.Errorf("Expected validation error for missing correlation id, got %v", err)
	}
	if _, err := ledger.Adjust(1, decimal.Zero, "admin:1:noop", ""); !IsValidation(err) {
		t.Errorf("Expected validation error for zero adjustment, got %v", err)
	}
}

func TestBalanceAfterMatchesLedgerSum(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)

	if _, err := ledger.Credit(3, mustDecimal(t, "120.50"), "DEPOSIT", "provider:tx-a", ""); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if _, err := ledger.Debit(3, mustDecimal(t, "20.25"), "ENTRY", "contest:5:entry", ""); err != nil {
		t.Fatalf("Debit failed: %v", err)
	}
	if _, err := ledger.Credit(3, mustDecimal(t, "14.10"), "WIN", "contest:5:prize", ""); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}

	transactions, err := ledger.GetTransactions(3, 10, 0)
	if err != nil {
		t.Fatalf("GetTransactions failed: %v", err)
	}

	sum := decimal.Zero
	for _, tx := range transactions {
		if !tx.BalanceAfter.Equal(tx.BalanceBefore.Add(tx.Amount)) {
			t.Errorf("Transaction %s breaks the balance arithmetic: %s + %s != %s",
				tx.ID, tx.BalanceBefore, tx.Amount, tx.BalanceAfter)
		}
		sum = sum.Add(tx.Amount)
	}

	wallet, err := ledger.GetWallet(3)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !wallet.Balance.Equal(sum) {
		t.Errorf("Wallet balance %s does not equal ledger sum %s", wallet.Balance, sum)
	}
	if !wallet.Balance.Equal(mustDecimal(t, "114.35")) {
		t.Errorf("Expected balance 114.35, got %s", wallet.Balance)
	}
}

func TestFailedRowDoesNotSatisfyIdempotency(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)

	// A failed row with the same key must not absorb a retry as if the
	// movement had settled.
	stale := models.LedgerTransaction{
		ID:            uuid.New(),
		UserID:        1,
		Type:          models.TransactionTypeDeposit,
		Amount:        decimal.NewFromInt(40),
		BalanceBefore: decimal.Zero,
		BalanceAfter:  decimal.NewFromInt(40),
		Status:        models.TransactionStatusFailed,
		CorrelationID: "provider:tx-failed",
		CreatedAt:     time.Now(),
	}
	if err := db.Create(&stale).Error; err != nil {
		t.Fatalf("Failed to insert stale transaction: %v", err)
	}

	tx, err := ledger.Credit(1, decimal.NewFromInt(40), "DEPOSIT", "provider:tx-failed", "deposit")
	if err == nil {
		if tx.ID == stale.ID {
			t.Fatalf("Credit returned the failed transaction as settled")
		}
		t.Fatalf("Expected the colliding key to surface an error, got transaction %s", tx.ID)
	}
	// The unique ledger key keeps conflicting, so the retries run out.
	if !IsTransactionAbort(err) {
		t.Errorf("Expected a transaction abort error, got %v", err)
	}

	wallet, err := ledger.GetWallet(1)
	if err != nil {
		t.Fatalf("GetWallet failed: %v", err)
	}
	if !wallet.Balance.IsZero() {
		t.Errorf("Expected no money moved, balance %s", wallet.Balance)
	}
}
