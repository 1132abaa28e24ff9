package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/Smear6uard/CloseOut/internal/dto"
	"github.com/Smear6uard/CloseOut/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// billingPeriod is the rolling window for the monthly usage counter.
const billingPeriod = 30 * 24 * time.Hour

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Sync upserts the user record on login. New users start on the free plan
// with a fresh billing period; existing users only get their profile fields
// refreshed — billing fields are owned by the webhook path.
func (s *UserService) Sync(tokenIdentifier string, req *dto.SyncUserRequest) (*models.User, error) {
	if tokenIdentifier == "" {
		return nil, ErrNotAuthenticated
	}

	var existing models.User
	err := s.db.Where("token_identifier = ?", tokenIdentifier).First(&existing).Error
	if err == nil {
		updates := map[string]interface{}{
			"email":      req.Email,
			"name":       req.Name,
			"image_url":  req.ImageURL,
			"updated_at": time.Now(),
		}
		if err := s.db.Model(&models.User{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update user profile: %w", err)
		}
		return s.byID(existing.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user := models.User{
		ID:                 uuid.New(),
		TokenIdentifier:    tokenIdentifier,
		Email:              req.Email,
		Name:               req.Name,
		ImageURL:           req.ImageURL,
		Plan:               models.PlanFree,
		PunchItemLimit:     models.PlanLimitTable[models.PlanFree].PunchItemsPerMonth,
		CurrentPeriodStart: time.Now(),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Usage reports the monthly counter against the plan quota. If the stored
// period has lapsed the reported count resets to zero; the stored counter is
// rolled over lazily on the next item creation.
func (s *UserService) Usage(user *models.User) *dto.UsageResponse {
	count := user.PunchItemsCreatedThisMonth
	if time.Since(user.CurrentPeriodStart) > billingPeriod {
		count = 0
	}
	return &dto.UsageResponse{
		PunchItemsCreatedThisMonth: count,
		PunchItemLimit:             user.PunchItemLimit,
	}
}

func (s *UserService) byID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	return &user, nil
}
