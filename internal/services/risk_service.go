package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"trading-contests/internal/config"
	"trading-contests/internal/database"
	"trading-contests/internal/metrics"
	"trading-contests/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	forcedCloseAttempts = 3
	forcedCloseBackoff  = 200 * time.Millisecond
)

// RiskService owns positions: opening, closing, margin evaluation and
// forced liquidation. Positions trade contest capital; wallet credits are
// never touched here.
type RiskService struct {
	db        *gorm.DB
	priceFeed PriceFeed
	risk      config.RiskConfig
	notifier  NotificationSink
}

func NewRiskService(db *gorm.DB, priceFeed PriceFeed, risk config.RiskConfig, notifier NotificationSink) *RiskService {
	return &RiskService{
		db:        db,
		priceFeed: priceFeed,
		risk:      risk,
		notifier:  notifier,
	}
}

// OpenPositionRequest carries the user's order.
type OpenPositionRequest struct {
	ContestID       uint                `json:"contest_id" binding:"required"`
	Symbol          string              `json:"symbol" binding:"required"`
	Side            models.PositionSide `json:"side" binding:"required"`
	Quantity        decimal.Decimal     `json:"quantity" binding:"required"`
	Leverage        int                 `json:"leverage" binding:"required"`
	StopLossPrice   *decimal.Decimal    `json:"stop_loss_price,omitempty"`
	TakeProfitPrice *decimal.Decimal    `json:"take_profit_price,omitempty"`
}

// OpenPosition opens a leveraged position at the current market quote.
// Longs fill at the ask, shorts at the bid. The margin requirement must fit
// inside the participant's current capital including the new position.
func (s *RiskService) OpenPosition(ctx context.Context, userID uint, req OpenPositionRequest) (*models.Position, error) {
	if req.Side != models.PositionSideLong && req.Side != models.PositionSideShort {
		return nil, NewValidationError("side", "must be LONG or SHORT")
	}
	if !req.Quantity.IsPositive() {
		return nil, NewValidationError("quantity", "must be positive")
	}

	var instrument models.Instrument
	if err := s.db.Where("symbol = ? AND is_active = ?", req.Symbol, true).First(&instrument).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("instrument", req.Symbol)
		}
		return nil, fmt.Errorf("failed to load instrument: %w", err)
	}
	if req.Leverage < 1 || req.Leverage > instrument.MaxLeverage {
		return nil, NewValidationError("leverage", fmt.Sprintf("must be between 1 and %d", instrument.MaxLeverage))
	}

	quote, err := s.priceFeed.GetPrice(ctx, req.Symbol)
	if err != nil {
		return nil, err
	}
	entryPrice := quote.Ask
	if req.Side == models.PositionSideShort {
		entryPrice = quote.Bid
	}

	notional := req.Quantity.Mul(entryPrice).Mul(instrument.ContractMultiplier)
	marginUsed := notional.Div(decimal.NewFromInt(int64(req.Leverage))).RoundDown(2)
	if !marginUsed.IsPositive() {
		return nil, NewValidationError("quantity", "position too small")
	}

	now := time.Now()
	position := &models.Position{
		ID:              uuid.New(),
		ContestID:       req.ContestID,
		UserID:          userID,
		Symbol:          req.Symbol,
		Side:            req.Side,
		Quantity:        req.Quantity,
		EntryPrice:      entryPrice,
		Leverage:        req.Leverage,
		MarginUsed:      marginUsed,
		StopLossPrice:   req.StopLossPrice,
		TakeProfitPrice: req.TakeProfitPrice,
		Status:          models.PositionStatusOpen,
		OpenedAt:        now,
	}

	err = database.RunInTransaction(s.db, func(tx *gorm.DB) error {
		var participant models.ContestParticipant
		err := tx.Where("contest_id = ? AND user_id = ?", req.ContestID, userID).First(&participant).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewNotFoundError("participant", fmt.Sprintf("contest %d user %d", req.ContestID, userID))
			}
			return fmt.Errorf("failed to load participant: %w", err)
		}
		if participant.Status != models.ParticipantStatusActive {
			return NewValidationError("participant", fmt.Sprintf("status %s cannot trade", participant.Status))
		}

		var contest models.Contest
		if err := tx.First(&contest, participant.ContestID).Error; err != nil {
			return fmt.Errorf("failed to load contest: %w", err)
		}
		if contest.Status != models.ContestStatusActive {
			return NewValidationError("contest", fmt.Sprintf("status %s is not tradable", contest.Status))
		}

		newUsedMargin := participant.UsedMargin.Add(marginUsed)
		if newUsedMargin.GreaterThan(participant.CurrentCapital) {
			return NewValidationError("margin", fmt.Sprintf(
				"required margin %s exceeds capital %s", newUsedMargin, participant.CurrentCapital))
		}

		position.ParticipantID = participant.ID
		if err := tx.Create(position).Error; err != nil {
			return fmt.Errorf("failed to create position: %w", err)
		}

		// Version-guarded like the wallet: a concurrent writer makes this
		// touch zero rows and the whole transaction reruns, so the margin
		// check above always sees the committed used margin.
		res := tx.Model(&models.ContestParticipant{}).
			Where("id = ? AND status = ? AND version = ?",
				participant.ID, models.ParticipantStatusActive, participant.Version).
			Updates(map[string]interface{}{
				"used_margin":       newUsedMargin,
				"available_capital": participant.CurrentCapital.Sub(newUsedMargin),
				"version":           participant.Version + 1,
				"updated_at":        now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update participant margin: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return NewConflictError("participant", "changed while opening position")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PositionsOpenedTotal.WithLabelValues(string(req.Side)).Inc()
	log.Printf("[Risk] Opened position %s: contest=%d user=%d %s %s x%s lev=%d margin=%s",
		position.ID, req.ContestID, userID, req.Side, req.Symbol, req.Quantity, req.Leverage, marginUsed)

	// Opening at the spread can already put thin accounts under water.
	if _, err := s.EvaluateParticipant(ctx, position.ParticipantID); err != nil {
		log.Printf("[Risk] Post-open evaluation failed for participant %d: %v", position.ParticipantID, err)
	}

	return position, nil
}

// ClosePosition closes the user's open position at the current quote.
func (s *RiskService) ClosePosition(ctx context.Context, userID uint, positionID uuid.UUID) (*models.Position, error) {
	var position models.Position
	if err := s.db.First(&position, "id = ?", positionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("position", positionID.String())
		}
		return nil, fmt.Errorf("failed to load position: %w", err)
	}
	if position.UserID != userID {
		return nil, NewNotFoundError("position", positionID.String())
	}
	if position.Status == models.PositionStatusClosed {
		return &position, nil
	}

	quote, err := s.priceFeed.GetPrice(ctx, position.Symbol)
	if err != nil {
		return nil, err
	}

	err = database.RunInTransaction(s.db, func(tx *gorm.DB) error {
		return s.settlePositionTx(tx, position.ID, exitPriceFor(position.Side, quote), models.CloseReasonUser, time.Now())
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.First(&position, "id = ?", positionID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload position: %w", err)
	}
	return &position, nil
}

// exitPriceFor picks the side of the spread a close fills at.
func exitPriceFor(side models.PositionSide, quote Quote) decimal.Decimal {
	if side == models.PositionSideLong {
		return quote.Bid
	}
	return quote.Ask
}

// settlePositionTx settles one position: flips it to closed, writes the
// single trade history record and folds the realized pnl into the
// participant. Already-closed positions settle as a no-op, so retries and
// overlapping sweeps are safe.
func (s *RiskService) settlePositionTx(tx *gorm.DB, positionID uuid.UUID, exitPrice decimal.Decimal, reason models.CloseReason, now time.Time) error {
	var position models.Position
	if err := tx.First(&position, "id = ?", positionID).Error; err != nil {
		return fmt.Errorf("failed to load position for settlement: %w", err)
	}
	if position.Status == models.PositionStatusClosed {
		return nil
	}

	var instrument models.Instrument
	if err := tx.Where("symbol = ?", position.Symbol).First(&instrument).Error; err != nil {
		return fmt.Errorf("failed to load instrument for settlement: %w", err)
	}

	pnl := realizedPnL(position, exitPrice, instrument.ContractMultiplier)

	res := tx.Model(&models.Position{}).
		Where("id = ? AND status = ?", position.ID, models.PositionStatusOpen).
		Updates(map[string]interface{}{
			"status":       models.PositionStatusClosed,
			"exit_price":   exitPrice,
			"close_reason": reason,
			"closed_at":    now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to close position: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Another settler got here first.
		return nil
	}

	record := models.TradeHistoryRecord{
		ID:             uuid.New(),
		PositionID:     position.ID,
		ContestID:      position.ContestID,
		ParticipantID:  position.ParticipantID,
		UserID:         position.UserID,
		Symbol:         position.Symbol,
		Side:           position.Side,
		Quantity:       position.Quantity,
		EntryPrice:     position.EntryPrice,
		ExitPrice:      exitPrice,
		Leverage:       position.Leverage,
		RealizedPnL:    pnl,
		HoldingSeconds: int64(now.Sub(position.OpenedAt).Seconds()),
		CloseReason:    reason,
		IsWinner:       pnl.IsPositive(),
		ClosedAt:       now,
		CreatedAt:      now,
	}
	if err := tx.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to write trade history: %w", err)
	}

	var participant models.ContestParticipant
	if err := tx.First(&participant, position.ParticipantID).Error; err != nil {
		return fmt.Errorf("failed to load participant for settlement: %w", err)
	}

	newCapital := participant.CurrentCapital.Add(pnl)
	newUsedMargin := participant.UsedMargin.Sub(position.MarginUsed)
	if newUsedMargin.IsNegative() {
		newUsedMargin = decimal.Zero
	}
	winning := participant.WinningTrades
	if pnl.IsPositive() {
		winning++
	}

	res = tx.Model(&models.ContestParticipant{}).
		Where("id = ? AND version = ?", participant.ID, participant.Version).
		Updates(map[string]interface{}{
			"current_capital":   newCapital,
			"used_margin":       newUsedMargin,
			"available_capital": newCapital.Sub(newUsedMargin),
			"realized_pnl":      participant.RealizedPnL.Add(pnl),
			"total_trades":      participant.TotalTrades + 1,
			"winning_trades":    winning,
			"version":           participant.Version + 1,
			"updated_at":        now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update participant after settlement: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return NewConflictError("participant", "changed during settlement")
	}

	metrics.PositionsClosedTotal.WithLabelValues(string(reason)).Inc()
	log.Printf("[Risk] Settled position %s: %s pnl=%s reason=%s", position.ID, position.Symbol, pnl, reason)
	return nil
}

// realizedPnL converts the price move into credits.
func realizedPnL(position models.Position, exitPrice, multiplier decimal.Decimal) decimal.Decimal {
	diff := exitPrice.Sub(position.EntryPrice)
	if position.Side == models.PositionSideShort {
		diff = diff.Neg()
	}
	return diff.Mul(position.Quantity).Mul(multiplier).RoundDown(2)
}

// MarginStatus is the outcome of one margin evaluation.
type MarginStatus struct {
	ParticipantID uint
	Equity        decimal.Decimal
	UsedMargin    decimal.Decimal
	MarginLevel   decimal.Decimal // percent; zero used margin reports as safe
	Liquidated    bool
}

// EvaluateParticipant recomputes unrealized pnl over the participant's open
// positions and acts on the margin level: warn, margin-call, or liquidate.
// At or below the liquidation threshold every open position is force-closed
// at the live quote.
func (s *RiskService) EvaluateParticipant(ctx context.Context, participantID uint) (*MarginStatus, error) {
	var participant models.ContestParticipant
	if err := s.db.First(&participant, participantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("participant", fmt.Sprintf("%d", participantID))
		}
		return nil, fmt.Errorf("failed to load participant: %w", err)
	}
	if participant.Status != models.ParticipantStatusActive {
		return &MarginStatus{ParticipantID: participantID, Equity: participant.CurrentCapital}, nil
	}

	var positions []models.Position
	if err := s.db.Where("participant_id = ? AND status = ?", participantID, models.PositionStatusOpen).
		Find(&positions).Error; err != nil {
		return nil, fmt.Errorf("failed to load open positions: %w", err)
	}

	status := &MarginStatus{
		ParticipantID: participantID,
		Equity:        participant.CurrentCapital,
		UsedMargin:    participant.UsedMargin,
	}
	if len(positions) == 0 || participant.UsedMargin.IsZero() {
		_ = s.db.Model(&models.ContestParticipant{}).Where("id = ?", participantID).
			Update("unrealized_pnl", decimal.Zero).Error
		return status, nil
	}

	unrealized := decimal.Zero
	for _, position := range positions {
		quote, err := s.priceFeed.GetPrice(ctx, position.Symbol)
		if err != nil {
			// Without a full set of quotes the margin level is unknowable;
			// skip this round rather than act on stale numbers.
			return nil, err
		}
		var instrument models.Instrument
		if err := s.db.Where("symbol = ?", position.Symbol).First(&instrument).Error; err != nil {
			return nil, fmt.Errorf("failed to load instrument %s: %w", position.Symbol, err)
		}
		unrealized = unrealized.Add(realizedPnL(position, exitPriceFor(position.Side, quote), instrument.ContractMultiplier))
	}

	equity := participant.CurrentCapital.Add(unrealized)
	marginLevel := equity.Div(participant.UsedMargin).Mul(decimal.NewFromInt(100))
	status.Equity = equity
	status.MarginLevel = marginLevel

	if err := s.db.Model(&models.ContestParticipant{}).Where("id = ?", participantID).
		Update("unrealized_pnl", unrealized).Error; err != nil {
		return nil, fmt.Errorf("failed to store unrealized pnl: %w", err)
	}

	switch {
	case marginLevel.LessThanOrEqual(s.risk.LiquidationLevel):
		if err := s.Liquidate(ctx, participantID); err != nil {
			return status, err
		}
		status.Liquidated = true

	case marginLevel.LessThanOrEqual(s.risk.MarginCallLevel):
		_ = s.db.Model(&models.ContestParticipant{}).Where("id = ?", participantID).
			Update("margin_call_warnings", gorm.Expr("margin_call_warnings + 1")).Error
		if err := s.notifier.Notify(participant.UserID, "margin_call",
			fmt.Sprintf("margin level %s%%, positions will be liquidated at %s%%",
				marginLevel.RoundDown(2), s.risk.LiquidationLevel)); err != nil {
			log.Printf("[Risk] Notify failed for user %d: %v", participant.UserID, err)
		}

	case marginLevel.LessThan(s.risk.WarningLevel):
		if err := s.notifier.Notify(participant.UserID, "margin_warning",
			fmt.Sprintf("margin level %s%%", marginLevel.RoundDown(2))); err != nil {
			log.Printf("[Risk] Notify failed for user %d: %v", participant.UserID, err)
		}

	case marginLevel.GreaterThanOrEqual(s.risk.SafeLevel):
		// Fully recovered; the warning counter starts over.
		if participant.MarginCallWarnings > 0 {
			_ = s.db.Model(&models.ContestParticipant{}).Where("id = ?", participantID).
				Update("margin_call_warnings", 0).Error
		}
	}

	return status, nil
}

// Liquidate force-closes every open position of the participant at the live
// quote and marks the participant liquidated. If a quote cannot be fetched
// after retries the position stays open and the next sweep tries again; a
// price is never invented.
func (s *RiskService) Liquidate(ctx context.Context, participantID uint) error {
	var positions []models.Position
	if err := s.db.Where("participant_id = ? AND status = ?", participantID, models.PositionStatusOpen).
		Find(&positions).Error; err != nil {
		return fmt.Errorf("failed to load positions for liquidation: %w", err)
	}

	allClosed := true
	for _, position := range positions {
		if err := s.forceClose(ctx, position, models.CloseReasonMarginCall); err != nil {
			log.Printf("[Risk] ALERT: could not liquidate position %s (%s): %v",
				position.ID, position.Symbol, err)
			allClosed = false
		}
	}
	if !allClosed {
		return NewExternalDependencyError("price feed",
			fmt.Errorf("liquidation of participant %d incomplete, will retry on next sweep", participantID))
	}

	now := time.Now()
	res := s.db.Model(&models.ContestParticipant{}).
		Where("id = ? AND status = ?", participantID, models.ParticipantStatusActive).
		Updates(map[string]interface{}{
			"status":         models.ParticipantStatusLiquidated,
			"unrealized_pnl": decimal.Zero,
			"updated_at":     now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark participant liquidated: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		metrics.LiquidationsTotal.Inc()
		var participant models.ContestParticipant
		if err := s.db.First(&participant, participantID).Error; err == nil {
			log.Printf("[Risk] Liquidated participant %d (user %d), capital=%s",
				participantID, participant.UserID, participant.CurrentCapital)
			if err := s.notifier.Notify(participant.UserID, "liquidated",
				"all positions closed by margin call"); err != nil {
				log.Printf("[Risk] Notify failed for user %d: %v", participant.UserID, err)
			}
		}
	}
	return nil
}

// forceClose retries the quote fetch with backoff before giving up.
func (s *RiskService) forceClose(ctx context.Context, position models.Position, reason models.CloseReason) error {
	var lastErr error
	for attempt := 1; attempt <= forcedCloseAttempts; attempt++ {
		quote, err := s.priceFeed.GetPrice(ctx, position.Symbol)
		if err == nil {
			return database.RunInTransaction(s.db, func(tx *gorm.DB) error {
				return s.settlePositionTx(tx, position.ID, exitPriceFor(position.Side, quote), reason, time.Now())
			})
		}
		lastErr = err
		if attempt < forcedCloseAttempts {
			select {
			case <-time.After(time.Duration(attempt) * forcedCloseBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}

// CheckProtectiveStops closes positions whose stop-loss or take-profit level
// has been reached. Called from the risk sweep.
func (s *RiskService) CheckProtectiveStops(ctx context.Context, contestID uint) error {
	var positions []models.Position
	query := s.db.Where("status = ? AND (stop_loss_price IS NOT NULL OR take_profit_price IS NOT NULL)",
		models.PositionStatusOpen)
	if contestID != 0 {
		query = query.Where("contest_id = ?", contestID)
	}
	if err := query.Find(&positions).Error; err != nil {
		return fmt.Errorf("failed to load positions for stop check: %w", err)
	}

	for _, position := range positions {
		quote, err := s.priceFeed.GetPrice(ctx, position.Symbol)
		if err != nil {
			log.Printf("[Risk] Stop check skipped for %s: %v", position.Symbol, err)
			continue
		}
		exitPrice := exitPriceFor(position.Side, quote)

		reason, triggered := stopTriggered(position, exitPrice)
		if !triggered {
			continue
		}

		err = database.RunInTransaction(s.db, func(tx *gorm.DB) error {
			return s.settlePositionTx(tx, position.ID, exitPrice, reason, time.Now())
		})
		if err != nil {
			log.Printf("[Risk] Failed to close position %s on %s: %v", position.ID, reason, err)
		}
	}
	return nil
}

// stopTriggered checks the exit price against the position's protective
// levels. Stop-loss wins when both trigger on the same tick.
func stopTriggered(position models.Position, exitPrice decimal.Decimal) (models.CloseReason, bool) {
	long := position.Side == models.PositionSideLong
	if position.StopLossPrice != nil {
		if (long && exitPrice.LessThanOrEqual(*position.StopLossPrice)) ||
			(!long && exitPrice.GreaterThanOrEqual(*position.StopLossPrice)) {
			return models.CloseReasonStopLoss, true
		}
	}
	if position.TakeProfitPrice != nil {
		if (long && exitPrice.GreaterThanOrEqual(*position.TakeProfitPrice)) ||
			(!long && exitPrice.LessThanOrEqual(*position.TakeProfitPrice)) {
			return models.CloseReasonTakeProfit, true
		}
	}
	return "", false
}

// EvaluateAll runs a margin evaluation for every active participant holding
// open positions. Backup for the synchronous per-trade checks.
func (s *RiskService) EvaluateAll(ctx context.Context) error {
	var participantIDs []uint
	err := s.db.Model(&models.Position{}).
		Where("status = ?", models.PositionStatusOpen).
		Distinct("participant_id").
		Pluck("participant_id", &participantIDs).Error
	if err != nil {
		return fmt.Errorf("failed to list participants with open positions: %w", err)
	}

	for _, id := range participantIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.EvaluateParticipant(ctx, id); err != nil {
			log.Printf("[Risk] Evaluation failed for participant %d: %v", id, err)
		}
	}
	return nil
}

// CloseAllForContest force-closes every open position in the contest, used
// when a contest ends. Returns the ids of positions left open because no
// quote was available.
func (s *RiskService) CloseAllForContest(ctx context.Context, contestID uint) ([]uuid.UUID, error) {
	var positions []models.Position
	if err := s.db.Where("contest_id = ? AND status = ?", contestID, models.PositionStatusOpen).
		Find(&positions).Error; err != nil {
		return nil, fmt.Errorf("failed to load contest positions: %w", err)
	}

	var stillOpen []uuid.UUID
	for _, position := range positions {
		if err := s.forceClose(ctx, position, models.CloseReasonContestEnd); err != nil {
			log.Printf("[Risk] ALERT: could not close position %s at contest end: %v", position.ID, err)
			stillOpen = append(stillOpen, position.ID)
		}
	}
	return stillOpen, nil
}

// CloseOrphanedPositions settles open positions whose contest already reached
// a terminal status. A trade committed in the narrow window between the
// finalize close pass and the status flip lands here on the next sweep.
func (s *RiskService) CloseOrphanedPositions(ctx context.Context) error {
	var positions []models.Position
	err := s.db.
		Joins("JOIN contests ON contests.id = positions.contest_id").
		Where("positions.status = ? AND contests.status IN ?",
			models.PositionStatusOpen,
			[]models.ContestStatus{models.ContestStatusCompleted, models.ContestStatusCancelled}).
		Find(&positions).Error
	if err != nil {
		return fmt.Errorf("failed to list orphaned positions: %w", err)
	}

	for _, position := range positions {
		log.Printf("[Risk] Settling orphaned position %s in finished contest %d", position.ID, position.ContestID)
		if err := s.forceClose(ctx, position, models.CloseReasonContestEnd); err != nil {
			log.Printf("[Risk] ALERT: could not settle orphaned position %s: %v", position.ID, err)
		}
	}
	return nil
}

// GetOpenPositions lists the user's open positions in a contest.
func (s *RiskService) GetOpenPositions(contestID, userID uint) ([]models.Position, error) {
	var positions []models.Position
	err := s.db.Where("contest_id = ? AND user_id = ? AND status = ?",
		contestID, userID, models.PositionStatusOpen).
		Order("opened_at DESC").
		Find(&positions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list open positions: %w", err)
	}
	return positions, nil
}

// GetTradeHistory lists the user's settled trades in a contest.
func (s *RiskService) GetTradeHistory(contestID, userID uint, limit int) ([]models.TradeHistoryRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var records []models.TradeHistoryRecord
	err := s.db.Where("contest_id = ? AND user_id = ?", contestID, userID).
		Order("closed_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list trade history: %w", err)
	}
	return records, nil
}
