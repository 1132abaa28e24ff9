package services

import (
	"fmt"
	"time"

	"github.com/Smear6uard/CloseOut/internal/config"
	"github.com/Smear6uard/CloseOut/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BillingService applies Polar subscription events to user billing state.
// Applying the same event twice leaves the row unchanged after the first
// application, which is the only replay protection the webhook relies on.
type BillingService struct {
	db           *gorm.DB
	productPlans map[string]string
}

func NewBillingService(db *gorm.DB, cfg *config.Config) *BillingService {
	productPlans := make(map[string]string, 2)
	if cfg.PolarProProductID != "" {
		productPlans[cfg.PolarProProductID] = models.PlanPro
	}
	if cfg.PolarTeamProductID != "" {
		productPlans[cfg.PolarTeamProductID] = models.PlanTeam
	}
	return &BillingService{db: db, productPlans: productPlans}
}

// PlanFromProduct maps a Polar product id to a plan; unknown products fall
// back to free.
func (s *BillingService) PlanFromProduct(productID string) string {
	if plan, ok := s.productPlans[productID]; ok {
		return plan
	}
	return models.PlanFree
}

// ApplySubscriptionChange sets the user's plan, quota, and Polar identifiers.
// A nil subscriptionID clears the stored subscription (cancel/revoke); the
// customer id is always retained.
func (s *BillingService) ApplySubscriptionChange(userID uuid.UUID, plan, customerID string, subscriptionID *string) error {
	limits, ok := models.PlanLimitTable[plan]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidPlan, plan)
	}

	updates := map[string]interface{}{
		"plan":                  plan,
		"punch_item_limit":      limits.PunchItemsPerMonth,
		"polar_customer_id":     customerID,
		"polar_subscription_id": subscriptionID,
		"updated_at":            time.Now(),
	}

	result := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("apply billing update: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
