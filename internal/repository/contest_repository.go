package repository

import (
	"context"

	"trading-contests/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetContestByID retrieves a contest by ID
func (r *Repository) GetContestByID(ctx context.Context, contestID uint) (*models.Contest, error) {
	var contest models.Contest
	err := r.db.WithContext(ctx).Where("id = ?", contestID).First(&contest).Error
	if err != nil {
		return nil, err
	}
	return &contest, nil
}

// GetContestsByStatus retrieves contests in a status with total count
func (r *Repository) GetContestsByStatus(ctx context.Context, status models.ContestStatus, limit, offset int) ([]*models.Contest, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Contest{}).
		Where("status = ?", status).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var contests []*models.Contest
	err = r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("start_time DESC").
		Limit(limit).
		Offset(offset).
		Find(&contests).Error
	if err != nil {
		return nil, 0, err
	}

	return contests, total, nil
}

// GetParticipant retrieves a user's entry in a contest
func (r *Repository) GetParticipant(ctx context.Context, contestID, userID uint) (*models.ContestParticipant, error) {
	var participant models.ContestParticipant
	err := r.db.WithContext(ctx).
		Where("contest_id = ? AND user_id = ?", contestID, userID).
		First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// GetParticipants retrieves all participants of a contest
func (r *Repository) GetParticipants(ctx context.Context, contestID uint) ([]*models.ContestParticipant, error) {
	var participants []*models.ContestParticipant
	err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Order("id ASC").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

// GetUserContests retrieves all contests a user has entered with total count
func (r *Repository) GetUserContests(ctx context.Context, userID uint, limit, offset int) ([]*models.ContestParticipant, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.ContestParticipant{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var entries []*models.ContestParticipant
	err = r.db.WithContext(ctx).
		Preload("Contest").
		Where("user_id = ?", userID).
		Order("joined_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// CountActiveParticipants counts participants still trading in a contest
func (r *Repository) CountActiveParticipants(ctx context.Context, contestID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ContestParticipant{}).
		Where("contest_id = ? AND status = ?", contestID, models.ParticipantStatusActive).
		Count(&count).Error
	return count, err
}

// GetPositionByID retrieves a position by ID
func (r *Repository) GetPositionByID(ctx context.Context, positionID uuid.UUID) (*models.Position, error) {
	var position models.Position
	err := r.db.WithContext(ctx).Where("id = ?", positionID).First(&position).Error
	if err != nil {
		return nil, err
	}
	return &position, nil
}

// GetOpenPositionsByContest retrieves all open positions in a contest
func (r *Repository) GetOpenPositionsByContest(ctx context.Context, contestID uint) ([]*models.Position, error) {
	var positions []*models.Position
	err := r.db.WithContext(ctx).
		Where("contest_id = ? AND status = ?", contestID, models.PositionStatusOpen).
		Order("opened_at ASC").
		Find(&positions).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}

// GetTradeHistory retrieves settled trades for a participant
func (r *Repository) GetTradeHistory(ctx context.Context, participantID uint, limit, offset int) ([]*models.TradeHistoryRecord, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.TradeHistoryRecord{}).
		Where("participant_id = ?", participantID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var records []*models.TradeHistoryRecord
	err = r.db.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Order("closed_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// GetSnapshot retrieves the final leaderboard of a completed contest
func (r *Repository) GetSnapshot(ctx context.Context, contestID uint) (*models.LeaderboardSnapshot, error) {
	var snapshot models.LeaderboardSnapshot
	err := r.db.WithContext(ctx).Where("contest_id = ?", contestID).First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetActiveInstruments retrieves the tradable instrument list
func (r *Repository) GetActiveInstruments(ctx context.Context) ([]*models.Instrument, error) {
	var instruments []*models.Instrument
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("symbol ASC").
		Find(&instruments).Error
	if err != nil {
		return nil, err
	}
	return instruments, nil
}
