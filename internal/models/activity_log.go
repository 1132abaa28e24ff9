package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreated              = "created"
	ActionUpdated              = "updated"
	ActionStatusChanged        = "status_changed"
	ActionAssigned             = "assigned"
	ActionCompletionPhotoAdded = "completion_photo_added"
)

// ActivityLog is append-only: rows are never updated and are deleted only
// when their project or punch item is deleted.
type ActivityLog struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_activity_project" json:"project_id"`
	PunchItemID *uuid.UUID `gorm:"type:uuid;index:idx_activity_punch_item" json:"punch_item_id,omitempty"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_activity_user" json:"user_id"`
	Action      string     `gorm:"size:50;not null" json:"action"`
	Details     string     `gorm:"type:text" json:"details,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
