package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending    WithdrawalStatus = "PENDING"
	WithdrawalStatusProcessing WithdrawalStatus = "PROCESSING"
	WithdrawalStatusCompleted  WithdrawalStatus = "COMPLETED"
	WithdrawalStatusFailed     WithdrawalStatus = "FAILED"
)

// WithdrawalRequest tracks a payout to an external payment provider. Credits
// are debited when the request is created and refunded if the provider
// reports failure.
type WithdrawalRequest struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uint             `gorm:"not null;index" json:"user_id"`
	User         *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Amount       decimal.Decimal  `gorm:"type:decimal(18,2);not null" json:"amount"`
	ProviderTxID *string          `gorm:"size:255;index" json:"provider_tx_id,omitempty"`
	Status       WithdrawalStatus `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	FailReason   *string          `gorm:"type:text" json:"fail_reason,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `gorm:"index" json:"updated_at"`
}

func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}
