package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PositionSide string

const (
	PositionSideLong  PositionSide = "LONG"
	PositionSideShort PositionSide = "SHORT"
)

type PositionStatus string

const (
	PositionStatusOpen   PositionStatus = "OPEN"
	PositionStatusClosed PositionStatus = "CLOSED"
)

type CloseReason string

const (
	CloseReasonUser       CloseReason = "user"
	CloseReasonStopLoss   CloseReason = "stop_loss"
	CloseReasonTakeProfit CloseReason = "take_profit"
	CloseReasonMarginCall CloseReason = "margin_call"
	CloseReasonContestEnd CloseReason = "contest_end"
)

// Position is a leveraged contest position. It trades contest capital only,
// never wallet credits.
type Position struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ContestID       uint             `gorm:"not null;index:idx_position_contest_status" json:"contest_id"`
	ParticipantID   uint             `gorm:"not null;index" json:"participant_id"`
	UserID          uint             `gorm:"not null;index" json:"user_id"`
	Symbol          string           `gorm:"size:20;not null" json:"symbol"`
	Side            PositionSide     `gorm:"size:10;not null" json:"side"`
	Quantity        decimal.Decimal  `gorm:"type:decimal(18,8);not null" json:"quantity"`
	EntryPrice      decimal.Decimal  `gorm:"type:decimal(18,8);not null" json:"entry_price"`
	ExitPrice       *decimal.Decimal `gorm:"type:decimal(18,8)" json:"exit_price,omitempty"`
	Leverage        int              `gorm:"not null;default:1" json:"leverage"`
	MarginUsed      decimal.Decimal  `gorm:"type:decimal(18,2);not null" json:"margin_used"`
	StopLossPrice   *decimal.Decimal `gorm:"type:decimal(18,8)" json:"stop_loss_price,omitempty"`
	TakeProfitPrice *decimal.Decimal `gorm:"type:decimal(18,8)" json:"take_profit_price,omitempty"`
	Status          PositionStatus   `gorm:"size:10;not null;default:OPEN;index:idx_position_contest_status" json:"status"`
	CloseReason     *CloseReason     `gorm:"size:20" json:"close_reason,omitempty"`
	OpenedAt        time.Time        `gorm:"not null" json:"opened_at"`
	ClosedAt        *time.Time       `json:"closed_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (Position) TableName() string {
	return "positions"
}

// TradeHistoryRecord is the immutable settlement record of one closed
// position. The unique index on PositionID guarantees a position settles
// exactly once.
type TradeHistoryRecord struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PositionID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"position_id"`
	ContestID      uint            `gorm:"not null;index" json:"contest_id"`
	ParticipantID  uint            `gorm:"not null;index" json:"participant_id"`
	UserID         uint            `gorm:"not null;index" json:"user_id"`
	Symbol         string          `gorm:"size:20;not null" json:"symbol"`
	Side           PositionSide    `gorm:"size:10;not null" json:"side"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"quantity"`
	EntryPrice     decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"entry_price"`
	ExitPrice      decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"exit_price"`
	Leverage       int             `gorm:"not null" json:"leverage"`
	RealizedPnL    decimal.Decimal `gorm:"column:realized_pnl;type:decimal(18,2);not null" json:"realized_pnl"`
	HoldingSeconds int64           `gorm:"not null" json:"holding_seconds"`
	CloseReason    CloseReason     `gorm:"size:20;not null" json:"close_reason"`
	IsWinner       bool            `gorm:"not null" json:"is_winner"`
	ClosedAt       time.Time       `gorm:"not null;index" json:"closed_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (TradeHistoryRecord) TableName() string {
	return "trade_history_records"
}
