package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeEntry      TransactionType = "ENTRY"
	TransactionTypeWin        TransactionType = "WIN"
	TransactionTypeRefund     TransactionType = "REFUND"
	TransactionTypeFee        TransactionType = "FEE"
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// CreditWallet holds a user's spendable platform credits.
// Balances are only ever mutated through the ledger service; every change
// is paired with a LedgerTransaction in the same database transaction.
type CreditWallet struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	User           *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Balance        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"balance"`
	TotalDeposited decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_deposited"`
	TotalWithdrawn decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_withdrawn"`
	TotalWon       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_won"`
	TotalSpent     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_spent"`
	Version        int64           `gorm:"not null;default:0" json:"-"` // optimistic lock
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (CreditWallet) TableName() string {
	return "credit_wallets"
}

// LedgerTransaction is one immutable money movement. Records are append-only:
// after creation only Status may change (pending -> completed/failed).
type LedgerTransaction struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uint              `gorm:"not null;index:idx_ledger_user_created;uniqueIndex:idx_ledger_correlation" json:"user_id"`
	Type          TransactionType   `gorm:"size:50;not null;uniqueIndex:idx_ledger_correlation" json:"type"`
	Amount        decimal.Decimal   `gorm:"type:decimal(18,2);not null" json:"amount"` // signed
	BalanceBefore decimal.Decimal   `gorm:"type:decimal(18,2);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal   `gorm:"type:decimal(18,2);not null" json:"balance_after"`
	Status        TransactionStatus `gorm:"size:20;not null;default:COMPLETED;index" json:"status"`
	CorrelationID string            `gorm:"size:255;not null;uniqueIndex:idx_ledger_correlation" json:"correlation_id"`
	Description   string            `gorm:"type:text" json:"description"`
	CreatedAt     time.Time         `gorm:"index:idx_ledger_user_created" json:"created_at"`
}

func (LedgerTransaction) TableName() string {
	return "ledger_transactions"
}
