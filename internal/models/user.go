package models

import (
	"time"

	"github.com/google/uuid"
)

// User is keyed by the identity provider's stable token identifier.
// Billing fields are written only by the Polar webhook path; the monthly
// counter only by punch item creation.
type User struct {
	ID                         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TokenIdentifier            string    `gorm:"size:255;not null;uniqueIndex:idx_users_token" json:"-"`
	Email                      string    `gorm:"size:255;not null;index:idx_users_email" json:"email"`
	Name                       string    `gorm:"size:255" json:"name,omitempty"`
	ImageURL                   string    `gorm:"type:text" json:"image_url,omitempty"`
	Plan                       string    `gorm:"size:20;not null;default:'free'" json:"plan"`
	PunchItemLimit             int       `gorm:"not null;default:25" json:"punch_item_limit"`
	PunchItemsCreatedThisMonth int       `gorm:"not null;default:0" json:"punch_items_created_this_month"`
	CurrentPeriodStart         time.Time `gorm:"not null" json:"current_period_start"`
	PolarCustomerID            *string   `gorm:"size:255;index:idx_users_polar_customer" json:"polar_customer_id,omitempty"`
	PolarSubscriptionID        *string   `gorm:"size:255" json:"polar_subscription_id,omitempty"`
	CreatedAt                  time.Time `json:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at"`
}
