package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Trades is the fixed vocabulary for the construction discipline field.
var Trades = []string{
	"General", "Electrical", "Plumbing", "HVAC", "Painting", "Flooring",
	"Drywall", "Roofing", "Landscaping", "Carpentry", "Masonry",
	"Fire Protection", "Elevator", "Other",
}

// AIComparison is the before/after verdict written by the annotation worker.
type AIComparison struct {
	Match      bool    `json:"match"`
	Confidence float64 `json:"confidence"`
	Summary    string  `json:"summary"`
}

// PunchItem is a tracked defect within a project. CompletedAt/VerifiedAt are
// set only by the matching status transition and cleared on reopen; the two
// AI columns are patched asynchronously by the annotation worker.
type PunchItem struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID          uuid.UUID      `gorm:"type:uuid;not null;index:idx_punch_items_project" json:"project_id"`
	UserID             uuid.UUID      `gorm:"type:uuid;not null;index:idx_punch_items_user" json:"user_id"`
	Title              string         `gorm:"size:255;not null" json:"title"`
	Description        string         `gorm:"type:text" json:"description,omitempty"`
	Status             string         `gorm:"size:20;not null;default:'open';index:idx_punch_items_project_status" json:"status"`
	Priority           string         `gorm:"size:20;not null;default:'medium'" json:"priority"`
	Trade              string         `gorm:"size:50;not null;index:idx_punch_items_project_trade" json:"trade"`
	Location           string         `gorm:"size:255" json:"location,omitempty"`
	AssignedTo         string         `gorm:"size:255" json:"assigned_to,omitempty"`
	DueDate            *time.Time     `json:"due_date,omitempty"`
	DefectPhotoURL     string         `gorm:"type:text" json:"defect_photo_url,omitempty"`
	CompletionPhotoURL string         `gorm:"type:text" json:"completion_photo_url,omitempty"`
	AITags             datatypes.JSON `gorm:"type:jsonb" json:"ai_tags,omitempty"`
	AIComparisonResult datatypes.JSON `gorm:"type:jsonb" json:"ai_comparison_result,omitempty"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	VerifiedAt         *time.Time     `json:"verified_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}
