package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ContestType string

const (
	ContestTypeCompetition ContestType = "COMPETITION"
	ContestTypeChallenge   ContestType = "CHALLENGE" // 1v1, always MaxParticipants=2
)

type ContestStatus string

const (
	ContestStatusDraft     ContestStatus = "DRAFT"
	ContestStatusUpcoming  ContestStatus = "UPCOMING"
	ContestStatusActive    ContestStatus = "ACTIVE"
	ContestStatusCompleted ContestStatus = "COMPLETED"
	ContestStatusCancelled ContestStatus = "CANCELLED"
)

// IsTerminal reports whether no further lifecycle transition is allowed.
func (s ContestStatus) IsTerminal() bool {
	return s == ContestStatusCompleted || s == ContestStatusCancelled
}

type ParticipantStatus string

const (
	ParticipantStatusActive       ParticipantStatus = "ACTIVE"
	ParticipantStatusCompleted    ParticipantStatus = "COMPLETED"
	ParticipantStatusLiquidated   ParticipantStatus = "LIQUIDATED"
	ParticipantStatusDisqualified ParticipantStatus = "DISQUALIFIED"
	ParticipantStatusRefunded     ParticipantStatus = "REFUNDED"
)

type RankingMethod string

const (
	RankingMethodPnL          RankingMethod = "pnl"
	RankingMethodROI          RankingMethod = "roi"
	RankingMethodTotalCapital RankingMethod = "total_capital"
	RankingMethodWinRate      RankingMethod = "win_rate"
	RankingMethodTotalWins    RankingMethod = "total_wins"
	RankingMethodProfitFactor RankingMethod = "profit_factor"
)

type TieBreak string

const (
	TieBreakTradesCount  TieBreak = "trades_count"
	TieBreakWinRate      TieBreak = "win_rate"
	TieBreakTotalCapital TieBreak = "total_capital"
	TieBreakROI          TieBreak = "roi"
	TieBreakJoinTime     TieBreak = "join_time"
)

type TiePrizePolicy string

const (
	TiePrizeSplitEqually  TiePrizePolicy = "split_equally"
	TiePrizeSplitWeighted TiePrizePolicy = "split_weighted"
	TiePrizeFirstGetsAll  TiePrizePolicy = "first_gets_all"
)

// PrizeTier maps a final rank to its percentage of the prize pool.
type PrizeTier struct {
	Rank       int             `json:"rank"`
	Percentage decimal.Decimal `json:"percentage"`
}

// PrizeDistribution is stored as a JSON column.
type PrizeDistribution []PrizeTier

func (d PrizeDistribution) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

func (d *PrizeDistribution) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported type for PrizeDistribution: %T", value)
	}
}

// Contest represents a time-boxed trading contest: a multi-entrant
// competition or a 1v1 challenge.
type Contest struct {
	ID                  uint              `gorm:"primaryKey" json:"id"`
	Name                string            `gorm:"size:255;not null" json:"name"`
	Description         string            `gorm:"type:text" json:"description"`
	Type                ContestType       `gorm:"size:20;not null;default:COMPETITION" json:"type"`
	EntryFee            decimal.Decimal   `gorm:"type:decimal(18,2);not null" json:"entry_fee"`
	StartingCapital     decimal.Decimal   `gorm:"type:decimal(18,2);not null" json:"starting_capital"`
	StartTime           time.Time         `gorm:"not null;index" json:"start_time"`
	EndTime             time.Time         `gorm:"not null;index" json:"end_time"`
	Status              ContestStatus     `gorm:"size:20;not null;default:DRAFT;index" json:"status"`
	PrizePool           decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0" json:"prize_pool"`
	PlatformFeePct      decimal.Decimal   `gorm:"type:decimal(5,2);not null;default:0" json:"platform_fee_pct"`
	PrizeDistribution   PrizeDistribution `gorm:"type:jsonb" json:"prize_distribution"`
	RankingMethod       RankingMethod     `gorm:"size:30;not null;default:pnl" json:"ranking_method"`
	TieBreak1           TieBreak          `gorm:"size:30;not null;default:trades_count" json:"tie_break_1"`
	TieBreak2           TieBreak          `gorm:"size:30;not null;default:join_time" json:"tie_break_2"`
	TiePrizePolicy      TiePrizePolicy    `gorm:"size:30;not null;default:split_equally" json:"tie_prize_policy"`
	MaxParticipants     int               `gorm:"not null" json:"max_participants"`
	CurrentParticipants int               `gorm:"not null;default:0" json:"current_participants"`
	// When true, a liquidated participant is excluded from the prize ranking.
	LiquidatedIneligible bool      `gorm:"not null;default:true" json:"liquidated_ineligible"`
	CancelReason         *string   `gorm:"type:text" json:"cancel_reason,omitempty"`
	CreatedBy            uint      `json:"created_by"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (Contest) TableName() string {
	return "contests"
}

// ContestParticipant represents a user's entry in a contest. A user may join
// a contest at most once (unique compound index).
type ContestParticipant struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	ContestID          uint              `gorm:"not null;uniqueIndex:idx_contest_user" json:"contest_id"`
	Contest            *Contest          `gorm:"foreignKey:ContestID" json:"contest,omitempty"`
	UserID             uint              `gorm:"not null;uniqueIndex:idx_contest_user;index" json:"user_id"`
	User               *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	StartingCapital    decimal.Decimal   `gorm:"type:decimal(18,2);not null" json:"starting_capital"`
	CurrentCapital     decimal.Decimal   `gorm:"type:decimal(18,2);not null" json:"current_capital"`
	AvailableCapital   decimal.Decimal   `gorm:"type:decimal(18,2);not null" json:"available_capital"`
	UsedMargin         decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0" json:"used_margin"`
	RealizedPnL        decimal.Decimal   `gorm:"column:realized_pnl;type:decimal(18,2);not null;default:0" json:"realized_pnl"`
	UnrealizedPnL      decimal.Decimal   `gorm:"column:unrealized_pnl;type:decimal(18,2);not null;default:0" json:"unrealized_pnl"`
	TotalTrades        int               `gorm:"not null;default:0" json:"total_trades"`
	WinningTrades      int               `gorm:"not null;default:0" json:"winning_trades"`
	CurrentRank        *int              `json:"current_rank"`
	PrizeAmount        decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0" json:"prize_amount"`
	Status             ParticipantStatus `gorm:"size:20;not null;default:ACTIVE;index" json:"status"`
	MarginCallWarnings int               `gorm:"not null;default:0" json:"margin_call_warnings"`
	Version            int64             `gorm:"not null;default:0" json:"-"` // optimistic lock
	JoinedAt           time.Time         `gorm:"autoCreateTime" json:"joined_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func (ContestParticipant) TableName() string {
	return "contest_participants"
}

// IsTerminal reports whether the participant can no longer trade or be
// refunded again.
func (s ParticipantStatus) IsTerminal() bool {
	return s != ParticipantStatusActive
}

// LeaderboardSnapshot stores the final standings of a finalized contest.
// Finalize writes it exactly once; repeated finalize calls return it as-is.
type LeaderboardSnapshot struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ContestID    uint      `gorm:"not null;uniqueIndex" json:"contest_id"`
	Contest      *Contest  `gorm:"foreignKey:ContestID" json:"contest,omitempty"`
	SnapshotData []byte    `gorm:"type:jsonb;not null" json:"snapshot_data"`
	CreatedAt    time.Time `json:"created_at"`
}

func (LeaderboardSnapshot) TableName() string {
	return "contest_leaderboard_snapshots"
}
