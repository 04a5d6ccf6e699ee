package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"trading-contests/internal/database"
	"trading-contests/internal/metrics"
	"trading-contests/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContestService owns the contest lifecycle: creation, joining, cancel with
// refunds, and finalization with prize payout. All money moves through the
// ledger so every operation stays idempotent under retries.
type ContestService struct {
	db       *gorm.DB
	ledger   *LedgerService
	risk     *RiskService
	ranking  *RankingService
	notifier NotificationSink
}

func NewContestService(db *gorm.DB, ledger *LedgerService, risk *RiskService, ranking *RankingService, notifier NotificationSink) *ContestService {
	return &ContestService{
		db:       db,
		ledger:   ledger,
		risk:     risk,
		ranking:  ranking,
		notifier: notifier,
	}
}

func entryCorrelation(contestID uint) string {
	return fmt.Sprintf("contest:%d:entry", contestID)
}

func refundCorrelation(contestID uint) string {
	return fmt.Sprintf("contest:%d:refund", contestID)
}

func prizeCorrelation(contestID uint) string {
	return fmt.Sprintf("contest:%d:prize", contestID)
}

// CreateContestRequest carries organizer input for a new contest.
type CreateContestRequest struct {
	Name              string                   `json:"name" binding:"required"`
	Description       string                   `json:"description"`
	Type              models.ContestType       `json:"type"`
	EntryFee          decimal.Decimal          `json:"entry_fee"`
	StartingCapital   decimal.Decimal          `json:"starting_capital" binding:"required"`
	StartTime         time.Time                `json:"start_time" binding:"required"`
	EndTime           time.Time                `json:"end_time" binding:"required"`
	PlatformFeePct    decimal.Decimal          `json:"platform_fee_pct"`
	PrizeDistribution models.PrizeDistribution `json:"prize_distribution"`
	RankingMethod     models.RankingMethod     `json:"ranking_method"`
	TieBreak1         models.TieBreak          `json:"tie_break_1"`
	TieBreak2         models.TieBreak          `json:"tie_break_2"`
	TiePrizePolicy    models.TiePrizePolicy    `json:"tie_prize_policy"`
	MaxParticipants   int                      `json:"max_participants"`
}

// CreateContest validates and stores a new contest in DRAFT status.
func (s *ContestService) CreateContest(req CreateContestRequest, createdBy uint) (*models.Contest, error) {
	if req.Type == "" {
		req.Type = models.ContestTypeCompetition
	}
	if req.Type == models.ContestTypeChallenge {
		req.MaxParticipants = 2
	}
	if req.MaxParticipants < 2 {
		return nil, NewValidationError("max_participants", "must be at least 2")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, NewValidationError("end_time", "must be after start_time")
	}
	if req.EntryFee.IsNegative() {
		return nil, NewValidationError("entry_fee", "must not be negative")
	}
	if !req.StartingCapital.IsPositive() {
		return nil, NewValidationError("starting_capital", "must be positive")
	}
	if req.PlatformFeePct.IsNegative() || req.PlatformFeePct.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return nil, NewValidationError("platform_fee_pct", "must be in [0, 100)")
	}

	totalPct := decimal.Zero
	for _, tier := range req.PrizeDistribution {
		if tier.Rank < 1 || tier.Percentage.IsNegative() {
			return nil, NewValidationError("prize_distribution", "ranks start at 1 and percentages must not be negative")
		}
		totalPct = totalPct.Add(tier.Percentage)
	}
	if totalPct.GreaterThan(decimal.NewFromInt(100)) {
		return nil, NewValidationError("prize_distribution", "percentages must not exceed 100")
	}

	if req.RankingMethod == "" {
		req.RankingMethod = models.RankingMethodPnL
	}
	if req.TieBreak1 == "" {
		req.TieBreak1 = models.TieBreakTradesCount
	}
	if req.TieBreak2 == "" {
		req.TieBreak2 = models.TieBreakJoinTime
	}
	if req.TiePrizePolicy == "" {
		req.TiePrizePolicy = models.TiePrizeSplitEqually
	}

	contest := &models.Contest{
		Name:              req.Name,
		Description:       req.Description,
		Type:              req.Type,
		EntryFee:          req.EntryFee,
		StartingCapital:   req.StartingCapital,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		Status:            models.ContestStatusDraft,
		PrizePool:         decimal.Zero,
		PlatformFeePct:    req.PlatformFeePct,
		PrizeDistribution: req.PrizeDistribution,
		RankingMethod:     req.RankingMethod,
		TieBreak1:         req.TieBreak1,
		TieBreak2:         req.TieBreak2,
		TiePrizePolicy:    req.TiePrizePolicy,
		MaxParticipants:   req.MaxParticipants,
		CreatedBy:         createdBy,
	}
	if err := s.db.Create(contest).Error; err != nil {
		return nil, fmt.Errorf("failed to create contest: %w", err)
	}
	log.Printf("[Contest] Created contest %d (%s), entry fee %s", contest.ID, contest.Name, contest.EntryFee)
	return contest, nil
}

// Publish moves a draft contest to UPCOMING so users can join.
func (s *ContestService) Publish(contestID uint) (*models.Contest, error) {
	res := s.db.Model(&models.Contest{}).
		Where("id = ? AND status = ?", contestID, models.ContestStatusDraft).
		Update("status", models.ContestStatusUpcoming)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to publish contest: %w", res.Error)
	}
	contest, err := s.GetContest(contestID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 && contest.Status != models.ContestStatusUpcoming {
		return nil, NewValidationError("status", fmt.Sprintf("cannot publish contest in status %s", contest.Status))
	}
	return contest, nil
}

// Join enters the user into the contest: entry fee debit, participant row,
// counter increment and prize pool accrual commit together. A user who is
// already in returns their existing entry without being charged again.
func (s *ContestService) Join(ctx context.Context, contestID, userID uint) (*models.ContestParticipant, error) {
	var participant *models.ContestParticipant

	err := database.RunInTransaction(s.db, func(tx *gorm.DB) error {
		var existing models.ContestParticipant
		err := tx.Where("contest_id = ? AND user_id = ?", contestID, userID).First(&existing).Error
		if err == nil {
			participant = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check membership: %w", err)
		}

		var contest models.Contest
		if err := tx.First(&contest, contestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("contest", fmt.Sprintf("%d", contestID))
			}
			return fmt.Errorf("failed to load contest: %w", err)
		}
		if contest.Status != models.ContestStatusUpcoming && contest.Status != models.ContestStatusActive {
			return NewValidationError("contest", fmt.Sprintf("status %s is not joinable", contest.Status))
		}
		if contest.CurrentParticipants >= contest.MaxParticipants {
			return NewValidationError("contest", "is full")
		}

		if contest.EntryFee.IsPositive() {
			_, err := s.ledger.DebitTx(tx, userID, contest.EntryFee, models.TransactionTypeEntry,
				entryCorrelation(contestID), fmt.Sprintf("Entry fee for contest %q", contest.Name))
			if err != nil {
				return err
			}
		}

		poolShare := contest.EntryFee.
			Mul(decimal.NewFromInt(100).Sub(contest.PlatformFeePct)).
			Div(decimal.NewFromInt(100)).
			RoundDown(2)

		// Guarded by the counter value so two racing joins cannot both take
		// the last slot.
		res := tx.Model(&models.Contest{}).
			Where("id = ? AND current_participants = ?", contestID, contest.CurrentParticipants).
			Updates(map[string]interface{}{
				"current_participants": contest.CurrentParticipants + 1,
				"prize_pool":           contest.PrizePool.Add(poolShare),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update contest counters: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return NewConflictError("contest", "participant count changed during join")
		}

		participant = &models.ContestParticipant{
			ContestID:        contestID,
			UserID:           userID,
			StartingCapital:  contest.StartingCapital,
			CurrentCapital:   contest.StartingCapital,
			AvailableCapital: contest.StartingCapital,
			UsedMargin:       decimal.Zero,
			Status:           models.ParticipantStatusActive,
			JoinedAt:         time.Now(),
		}
		if err := tx.Create(participant).Error; err != nil {
			return fmt.Errorf("failed to create participant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return participant, nil
}

// RefundOutcome reports one participant's refund during cancellation.
type RefundOutcome struct {
	UserID   uint   `json:"user_id"`
	Refunded bool   `json:"refunded"`
	Error    string `json:"error,omitempty"`
}

// CancelResult is the per-item report of a contest cancellation.
type CancelResult struct {
	ContestID uint            `json:"contest_id"`
	Outcomes  []RefundOutcome `json:"outcomes"`
	Failed    int             `json:"failed"`
}

// CancelAndRefund cancels the contest and returns every participant's entry
// fee. One participant's failure never blocks the others; re-running retries
// only the failed ones, since each refund is a single idempotent ledger
// credit paired with the participant's status flip.
func (s *ContestService) CancelAndRefund(ctx context.Context, contestID uint, reason string) (*CancelResult, error) {
	wasActive := false
	err := database.RunInTransaction(s.db, func(tx *gorm.DB) error {
		var contest models.Contest
		if err := tx.First(&contest, contestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("contest", fmt.Sprintf("%d", contestID))
			}
			return fmt.Errorf("failed to load contest: %w", err)
		}
		switch contest.Status {
		case models.ContestStatusCompleted:
			return NewValidationError("contest", "already completed, cannot cancel")
		case models.ContestStatusCancelled:
			// Re-run: fall through to refund whoever is still unrefunded.
			return nil
		}
		wasActive = contest.Status == models.ContestStatusActive

		res := tx.Model(&models.Contest{}).
			Where("id = ? AND status IN ?", contestID,
				[]models.ContestStatus{models.ContestStatusDraft, models.ContestStatusUpcoming, models.ContestStatusActive}).
			Updates(map[string]interface{}{
				"status":        models.ContestStatusCancelled,
				"prize_pool":    decimal.Zero,
				"cancel_reason": reason,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to cancel contest: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return NewConflictError("contest", "status changed during cancel")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if wasActive {
		metrics.ActiveContests.Dec()
	}

	var contest models.Contest
	if err := s.db.First(&contest, contestID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload contest: %w", err)
	}

	var participants []models.ContestParticipant
	if err := s.db.Where("contest_id = ?", contestID).Order("id").Find(&participants).Error; err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	result := &CancelResult{ContestID: contestID}
	for _, p := range participants {
		outcome := RefundOutcome{UserID: p.UserID}

		if p.Status == models.ParticipantStatusRefunded {
			outcome.Refunded = true
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}

		err := database.RunInTransaction(s.db, func(tx *gorm.DB) error {
			if contest.EntryFee.IsPositive() {
				_, err := s.ledger.CreditTx(tx, p.UserID, contest.EntryFee, models.TransactionTypeRefund,
					refundCorrelation(contestID), fmt.Sprintf("Refund for cancelled contest %q", contest.Name))
				if err != nil {
					return err
				}
			}
			return tx.Model(&models.ContestParticipant{}).
				Where("id = ?", p.ID).
				Update("status", models.ParticipantStatusRefunded).Error
		})
		if err != nil {
			outcome.Error = err.Error()
			result.Failed++
			log.Printf("[Contest] Refund failed for user %d in contest %d: %v", p.UserID, contestID, err)
		} else {
			outcome.Refunded = true
			metrics.RefundsTotal.Inc()
			if err := s.notifier.Notify(p.UserID, "contest_cancelled",
				fmt.Sprintf("contest %q cancelled, entry fee refunded", contest.Name)); err != nil {
				log.Printf("[Contest] Notify failed for user %d: %v", p.UserID, err)
			}
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	log.Printf("[Contest] Cancelled contest %d: %d refunds, %d failed",
		contestID, len(result.Outcomes)-result.Failed, result.Failed)
	return result, nil
}

// FinalizeResult is what a contest settles into.
type FinalizeResult struct {
	ContestID uint             `json:"contest_id"`
	Standings []RankedStanding `json:"standings"`
	Replayed  bool             `json:"replayed"`
}

// Finalize ends an active contest: closes every remaining position at
// market, ranks the eligible participants, pays prizes and stores the final
// leaderboard. Finalizing a completed contest returns the stored snapshot
// and moves no money.
func (s *ContestService) Finalize(ctx context.Context, contestID uint) (*FinalizeResult, error) {
	var contest models.Contest
	if err := s.db.First(&contest, contestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("contest", fmt.Sprintf("%d", contestID))
		}
		return nil, fmt.Errorf("failed to load contest: %w", err)
	}

	switch contest.Status {
	case models.ContestStatusCompleted:
		return s.replaySnapshot(contestID)
	case models.ContestStatusCancelled:
		return nil, NewValidationError("contest", "is cancelled, cannot finalize")
	case models.ContestStatusActive:
	default:
		return nil, NewValidationError("contest", fmt.Sprintf("status %s cannot finalize", contest.Status))
	}

	var result *FinalizeResult
	for pass := 1; ; pass++ {
		// Positions settle before ranking. If any quote is unavailable the
		// finalize aborts and the sweep retries; standings never use stale or
		// invented prices.
		stillOpen, err := s.risk.CloseAllForContest(ctx, contestID)
		if err != nil {
			return nil, err
		}
		if len(stillOpen) > 0 {
			return nil, NewExternalDependencyError("price feed",
				fmt.Errorf("%d positions could not be closed, finalize postponed", len(stillOpen)))
		}

		result, err = s.finalizeTx(contestID, contest)
		if errors.Is(err, errPositionsStillOpen) {
			// A trade committed behind the close pass. The gate rolled back;
			// close again and retake it.
			if pass >= finalizeClosePasses {
				return nil, NewConflictError("contest", "positions kept opening during finalize")
			}
			continue
		}
		if err != nil {
			// The loser of the status gate replays the winner's snapshot.
			if IsConflict(err) {
				if err := s.db.First(&contest, contestID).Error; err == nil &&
					contest.Status == models.ContestStatusCompleted {
					return s.replaySnapshot(contestID)
				}
			}
			return nil, err
		}
		break
	}

	for _, r := range result.Standings {
		if r.PrizeAmount.IsPositive() {
			if err := s.notifier.Notify(r.UserID, "prize_paid",
				fmt.Sprintf("rank %d in contest %q: %s credits", r.Rank, contest.Name, r.PrizeAmount)); err != nil {
				log.Printf("[Contest] Notify failed for user %d: %v", r.UserID, err)
			}
		}
	}
	metrics.ContestsFinalizedTotal.Inc()
	metrics.ActiveContests.Dec()
	log.Printf("[Contest] Finalized contest %d with %d ranked participants", contestID, len(result.Standings))
	return result, nil
}

// errPositionsStillOpen makes the finalize loop redo its close pass.
var errPositionsStillOpen = errors.New("contest has open positions")

const finalizeClosePasses = 3

// finalizeTx is the transactional tail of Finalize: status gate, ranking,
// prize payout and the leaderboard snapshot.
func (s *ContestService) finalizeTx(contestID uint, contest models.Contest) (*FinalizeResult, error) {
	var result *FinalizeResult
	err := database.RunInTransaction(s.db, func(tx *gorm.DB) error {
		// Status gate: exactly one finalizer wins against concurrent
		// finalize or cancel.
		res := tx.Model(&models.Contest{}).
			Where("id = ? AND status = ?", contestID, models.ContestStatusActive).
			Update("status", models.ContestStatusCompleted)
		if res.Error != nil {
			return fmt.Errorf("failed to complete contest: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return NewConflictError("contest", "status changed during finalize")
		}

		// The close pass ran outside this transaction; a trade handler that
		// still saw the contest as active may have slipped a position in.
		var open int64
		if err := tx.Model(&models.Position{}).
			Where("contest_id = ? AND status = ?", contestID, models.PositionStatusOpen).
			Count(&open).Error; err != nil {
			return fmt.Errorf("failed to count open positions: %w", err)
		}
		if open > 0 {
			return errPositionsStillOpen
		}

		var participants []models.ContestParticipant
		if err := tx.Where("contest_id = ?", contestID).Order("id").Find(&participants).Error; err != nil {
			return fmt.Errorf("failed to list participants: %w", err)
		}

		standings, err := s.buildStandings(tx, contest, participants)
		if err != nil {
			return err
		}

		ranked := s.ranking.Rank(standings, contest.RankingMethod,
			contest.TieBreak1, contest.TieBreak2, contest.TiePrizePolicy,
			contest.PrizePool, contest.PrizeDistribution)

		for i := range ranked {
			r := &ranked[i]
			if r.PrizeAmount.IsPositive() {
				_, err := s.ledger.CreditTx(tx, r.UserID, r.PrizeAmount, models.TransactionTypeWin,
					prizeCorrelation(contestID), fmt.Sprintf("Prize for rank %d in contest %q", r.Rank, contest.Name))
				if err != nil {
					return err
				}
			}
			if err := tx.Model(&models.ContestParticipant{}).
				Where("id = ?", r.ParticipantID).
				Updates(map[string]interface{}{
					"current_rank": r.Rank,
					"prize_amount": r.PrizeAmount,
				}).Error; err != nil {
				return fmt.Errorf("failed to store rank for participant %d: %w", r.ParticipantID, err)
			}
		}

		// Active participants settle to completed; liquidated and
		// disqualified keep their status.
		if err := tx.Model(&models.ContestParticipant{}).
			Where("contest_id = ? AND status = ?", contestID, models.ParticipantStatusActive).
			Update("status", models.ParticipantStatusCompleted).Error; err != nil {
			return fmt.Errorf("failed to complete participants: %w", err)
		}

		snapshotData, err := json.Marshal(ranked)
		if err != nil {
			return fmt.Errorf("failed to encode leaderboard snapshot: %w", err)
		}
		snapshot := models.LeaderboardSnapshot{
			ContestID:    contestID,
			SnapshotData: snapshotData,
		}
		if err := tx.Create(&snapshot).Error; err != nil {
			return fmt.Errorf("failed to store leaderboard snapshot: %w", err)
		}

		result = &FinalizeResult{ContestID: contestID, Standings: ranked}
		return nil
	})
	return result, err
}

// buildStandings converts participants into ranking input. Disqualified
// participants never rank; liquidated ones only when the contest allows it.
func (s *ContestService) buildStandings(tx *gorm.DB, contest models.Contest, participants []models.ContestParticipant) ([]Standing, error) {
	var standings []Standing
	for _, p := range participants {
		switch p.Status {
		case models.ParticipantStatusDisqualified, models.ParticipantStatusRefunded:
			continue
		case models.ParticipantStatusLiquidated:
			if contest.LiquidatedIneligible {
				continue
			}
		}

		grossProfit, grossLoss := decimal.Zero, decimal.Zero
		var records []models.TradeHistoryRecord
		if err := tx.Where("participant_id = ?", p.ID).Find(&records).Error; err != nil {
			return nil, fmt.Errorf("failed to load trades for participant %d: %w", p.ID, err)
		}
		for _, r := range records {
			if r.RealizedPnL.IsPositive() {
				grossProfit = grossProfit.Add(r.RealizedPnL)
			} else {
				grossLoss = grossLoss.Add(r.RealizedPnL)
			}
		}

		standings = append(standings, Standing{
			ParticipantID:   p.ID,
			UserID:          p.UserID,
			StartingCapital: p.StartingCapital,
			CurrentCapital:  p.CurrentCapital,
			PnL:             p.CurrentCapital.Sub(p.StartingCapital),
			GrossProfit:     grossProfit,
			GrossLoss:       grossLoss,
			TotalTrades:     p.TotalTrades,
			WinningTrades:   p.WinningTrades,
			JoinedAt:        p.JoinedAt,
		})
	}
	return standings, nil
}

func (s *ContestService) replaySnapshot(contestID uint) (*FinalizeResult, error) {
	var snapshot models.LeaderboardSnapshot
	if err := s.db.Where("contest_id = ?", contestID).First(&snapshot).Error; err != nil {
		return nil, fmt.Errorf("contest %d is completed but has no snapshot: %w", contestID, err)
	}
	var ranked []RankedStanding
	if err := json.Unmarshal(snapshot.SnapshotData, &ranked); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard snapshot: %w", err)
	}
	return &FinalizeResult{ContestID: contestID, Standings: ranked, Replayed: true}, nil
}

// ActivateDue flips upcoming contests whose start time passed to active.
// Returns the ids it activated.
func (s *ContestService) ActivateDue(now time.Time) ([]uint, error) {
	var due []models.Contest
	if err := s.db.Where("status = ? AND start_time <= ?", models.ContestStatusUpcoming, now).
		Find(&due).Error; err != nil {
		return nil, fmt.Errorf("failed to list due contests: %w", err)
	}

	var activated []uint
	for _, contest := range due {
		res := s.db.Model(&models.Contest{}).
			Where("id = ? AND status = ?", contest.ID, models.ContestStatusUpcoming).
			Update("status", models.ContestStatusActive)
		if res.Error != nil {
			log.Printf("[Contest] Failed to activate contest %d: %v", contest.ID, res.Error)
			continue
		}
		if res.RowsAffected > 0 {
			activated = append(activated, contest.ID)
			metrics.ActiveContests.Inc()
			log.Printf("[Contest] Activated contest %d (%s)", contest.ID, contest.Name)
		}
	}
	return activated, nil
}

// ListEnded returns active contests whose end time passed.
func (s *ContestService) ListEnded(now time.Time) ([]models.Contest, error) {
	var ended []models.Contest
	if err := s.db.Where("status = ? AND end_time <= ?", models.ContestStatusActive, now).
		Find(&ended).Error; err != nil {
		return nil, fmt.Errorf("failed to list ended contests: %w", err)
	}
	return ended, nil
}

// GetContest loads one contest.
func (s *ContestService) GetContest(contestID uint) (*models.Contest, error) {
	var contest models.Contest
	if err := s.db.First(&contest, contestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("contest", fmt.Sprintf("%d", contestID))
		}
		return nil, fmt.Errorf("failed to load contest: %w", err)
	}
	return &contest, nil
}

// ListContests returns contests filtered by status, newest first.
func (s *ContestService) ListContests(status models.ContestStatus, limit int) ([]models.Contest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := s.db.Order("start_time DESC").Limit(limit)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var contests []models.Contest
	if err := query.Find(&contests).Error; err != nil {
		return nil, fmt.Errorf("failed to list contests: %w", err)
	}
	return contests, nil
}

// GetLeaderboard returns live standings for an ongoing contest, or the
// stored snapshot for a completed one.
func (s *ContestService) GetLeaderboard(contestID uint) ([]RankedStanding, error) {
	contest, err := s.GetContest(contestID)
	if err != nil {
		return nil, err
	}
	if contest.Status == models.ContestStatusCompleted {
		result, err := s.replaySnapshot(contestID)
		if err != nil {
			return nil, err
		}
		return result.Standings, nil
	}

	var participants []models.ContestParticipant
	if err := s.db.Where("contest_id = ?", contestID).Order("id").Find(&participants).Error; err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	standings, err := s.buildStandings(s.db, *contest, participants)
	if err != nil {
		return nil, err
	}
	return s.ranking.Rank(standings, contest.RankingMethod,
		contest.TieBreak1, contest.TieBreak2, contest.TiePrizePolicy,
		decimal.Zero, nil), nil
}
