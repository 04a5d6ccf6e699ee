package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Instrument is a tradable symbol. ContractMultiplier converts a one-point
// price move on one unit of quantity into credits.
type Instrument struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	Symbol             string          `gorm:"size:20;uniqueIndex;not null" json:"symbol"`
	DisplayName        string          `gorm:"size:100;not null" json:"display_name"`
	ContractMultiplier decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"contract_multiplier"`
	MaxLeverage        int             `gorm:"not null;default:100" json:"max_leverage"`
	IsActive           bool            `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (Instrument) TableName() string {
	return "instruments"
}

// DefaultInstruments returns the seed set created on first migration.
func DefaultInstruments() []Instrument {
	return []Instrument{
		{Symbol: "EUR/USD", DisplayName: "Euro / US Dollar", ContractMultiplier: decimal.NewFromInt(100000), MaxLeverage: 100},
		{Symbol: "GBP/USD", DisplayName: "British Pound / US Dollar", ContractMultiplier: decimal.NewFromInt(100000), MaxLeverage: 100},
		{Symbol: "BTC/USD", DisplayName: "Bitcoin / US Dollar", ContractMultiplier: decimal.NewFromInt(1), MaxLeverage: 20},
		{Symbol: "XAU/USD", DisplayName: "Gold / US Dollar", ContractMultiplier: decimal.NewFromInt(100), MaxLeverage: 50},
	}
}
