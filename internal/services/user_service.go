package services

import (
	"errors"
	"fmt"

	"trading-contests/internal/cache"
	"trading-contests/internal/models"
	"trading-contests/internal/utils"

	"gorm.io/gorm"
)

// UserService manages accounts. Reads go through a short TTL cache since
// profile lookups vastly outnumber changes.
type UserService struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewUserService(db *gorm.DB, userCache *cache.Cache) *UserService {
	return &UserService{db: db, cache: userCache}
}

func userCacheKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// Register creates a user. An empty nickname gets a generated one; retries
// on the rare generated collision.
func (s *UserService) Register(nickname string) (*models.User, error) {
	if nickname != "" {
		user := &models.User{Nickname: nickname, IsActive: true}
		if err := s.db.Create(user).Error; err != nil {
			return nil, NewConflictError("user", fmt.Sprintf("nickname %q is taken", nickname))
		}
		return user, nil
	}

	for attempt := 0; attempt < 3; attempt++ {
		generated, err := utils.GenerateNickname()
		if err != nil {
			return nil, fmt.Errorf("failed to generate nickname: %w", err)
		}
		user := &models.User{Nickname: generated, IsActive: true}
		if err := s.db.Create(user).Error; err == nil {
			return user, nil
		}
	}
	return nil, NewConflictError("user", "could not allocate a nickname")
}

// GetByNickname looks a user up for login.
func (s *UserService) GetByNickname(nickname string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("nickname = ?", nickname).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("user", nickname)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// GetUser returns a user by id, served from cache when fresh.
func (s *UserService) GetUser(userID uint) (*models.User, error) {
	if cached, ok := s.cache.Get(userCacheKey(userID)); ok {
		if user, ok := cached.(*models.User); ok {
			return user, nil
		}
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("user", fmt.Sprintf("%d", userID))
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	s.cache.Set(userCacheKey(userID), &user)
	return &user, nil
}

// UpdateAvatar stores a new avatar URL and drops the cached profile.
func (s *UserService) UpdateAvatar(userID uint, avatarURL string) error {
	res := s.db.Model(&models.User{}).Where("id = ?", userID).Update("avatar_url", avatarURL)
	if res.Error != nil {
		return fmt.Errorf("failed to update avatar: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return NewNotFoundError("user", fmt.Sprintf("%d", userID))
	}
	s.cache.Invalidate(userCacheKey(userID))
	return nil
}

// IsAdmin reports whether the user has an admin record.
func (s *UserService) IsAdmin(userID uint) (*models.AdminUser, bool) {
	var admin models.AdminUser
	if err := s.db.Where("user_id = ?", userID).First(&admin).Error; err != nil {
		return nil, false
	}
	return &admin, true
}
