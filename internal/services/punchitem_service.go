package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Smear6uard/CloseOut/internal/dto"
	"github.com/Smear6uard/CloseOut/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Annotator schedules fire-and-forget AI annotation work. Dispatch calls must
// never block and never fail the triggering request.
type Annotator interface {
	DispatchClassify(punchItemID uuid.UUID, defectPhotoURL string)
	DispatchCompare(punchItemID uuid.UUID, defectPhotoURL, completionPhotoURL string)
}

// PunchItemService orchestrates the punch item lifecycle: every mutation
// verifies project ownership, runs in a single transaction, appends an audit
// entry, and stamps updated_at.
type PunchItemService struct {
	db        *gorm.DB
	authz     *AuthzService
	annotator Annotator
}

func NewPunchItemService(db *gorm.DB, authz *AuthzService, annotator Annotator) *PunchItemService {
	return &PunchItemService{db: db, authz: authz, annotator: annotator}
}

// ListByProject returns a project's punch items, newest first, optionally
// filtered by status, trade, priority, or assignee.
func (s *PunchItemService) ListByProject(projectID, userID uuid.UUID, filter *dto.PunchItemFilter) ([]models.PunchItem, error) {
	if _, err := s.authz.VerifyProjectOwnership(projectID, userID); err != nil {
		return nil, err
	}

	query := s.db.Where("project_id = ?", projectID)
	if filter != nil {
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.Trade != "" {
			query = query.Where("trade = ?", filter.Trade)
		}
		if filter.Priority != "" {
			query = query.Where("priority = ?", filter.Priority)
		}
		if filter.AssignedTo != "" {
			query = query.Where("assigned_to = ?", filter.AssignedTo)
		}
	}

	var items []models.PunchItem
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list punch items: %w", err)
	}
	return items, nil
}

func (s *PunchItemService) Get(punchItemID, userID uuid.UUID) (*models.PunchItem, error) {
	item, err := s.load(punchItemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.VerifyProjectOwnership(item.ProjectID, userID); err != nil {
		return nil, err
	}
	return item, nil
}

// Recent returns the caller's 10 most recently created items across all
// projects.
func (s *PunchItemService) Recent(userID uuid.UUID) ([]models.PunchItem, error) {
	var items []models.PunchItem
	err := s.db.Scopes(models.OwnedBy(userID)).Order("created_at DESC").Limit(10).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list recent punch items: %w", err)
	}
	return items, nil
}

// Create inserts a new item with status open, logs the creation, and bumps
// the owner's monthly counter (rolling the stored period over when lapsed).
// No quota check happens here; the limit is surfaced by the usage endpoint.
func (s *PunchItemService) Create(user *models.User, projectID uuid.UUID, req *dto.CreatePunchItemRequest) (*models.PunchItem, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, errors.New("title is required")
	}
	if _, err := s.authz.VerifyProjectOwnership(projectID, user.ID); err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	trade := req.Trade
	if trade == "" {
		trade = "General"
	}

	now := time.Now()
	item := models.PunchItem{
		ID:             uuid.New(),
		ProjectID:      projectID,
		UserID:         user.ID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         models.StatusOpen,
		Priority:       priority,
		Trade:          trade,
		Location:       req.Location,
		AssignedTo:     req.AssignedTo,
		DueDate:        req.DueDate,
		DefectPhotoURL: req.DefectPhotoURL,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("create punch item: %w", err)
		}
		if err := s.appendActivity(tx, projectID, &item.ID, user.ID, models.ActionCreated,
			"Created punch item: "+req.Title, now); err != nil {
			return err
		}

		counterUpdates := map[string]interface{}{
			"punch_items_created_this_month": user.PunchItemsCreatedThisMonth + 1,
			"updated_at":                     now,
		}
		if now.Sub(user.CurrentPeriodStart) > billingPeriod {
			counterUpdates["punch_items_created_this_month"] = 1
			counterUpdates["current_period_start"] = now
		}
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(counterUpdates).Error; err != nil {
			return fmt.Errorf("increment usage counter: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if item.DefectPhotoURL != "" {
		s.annotator.DispatchClassify(item.ID, item.DefectPhotoURL)
	}
	return &item, nil
}

// Update patches only the fields present in the request and logs which ones
// changed.
func (s *PunchItemService) Update(punchItemID, userID uuid.UUID, req *dto.UpdatePunchItemRequest) (*models.PunchItem, error) {
	item, err := s.load(punchItemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.VerifyProjectOwnership(item.ProjectID, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{"updated_at": now}
	var changed []string

	if req.Title != nil {
		updates["title"] = *req.Title
		changed = append(changed, "title")
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		changed = append(changed, "description")
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
		changed = append(changed, "priority")
	}
	if req.Trade != nil {
		updates["trade"] = *req.Trade
		changed = append(changed, "trade")
	}
	if req.Location != nil {
		updates["location"] = *req.Location
		changed = append(changed, "location")
	}
	if req.AssignedTo != nil {
		updates["assigned_to"] = *req.AssignedTo
		changed = append(changed, "assigned_to")
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
		changed = append(changed, "due_date")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PunchItem{}).Where("id = ?", punchItemID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update punch item: %w", err)
		}
		return s.appendActivity(tx, item.ProjectID, &item.ID, userID, models.ActionUpdated,
			"Updated fields: "+strings.Join(changed, ", "), now)
	})
	if err != nil {
		return nil, err
	}
	return s.load(punchItemID)
}

// UpdateStatus applies a lifecycle transition. Entering complete stamps
// completed_at, entering verified stamps verified_at, and reopening clears
// both.
func (s *PunchItemService) UpdateStatus(punchItemID, userID uuid.UUID, status string) (*models.PunchItem, error) {
	item, err := s.load(punchItemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.VerifyProjectOwnership(item.ProjectID, userID); err != nil {
		return nil, err
	}

	if !models.IsValidTransition(item.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, item.Status, status)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	switch status {
	case models.StatusComplete:
		updates["completed_at"] = now
	case models.StatusVerified:
		updates["verified_at"] = now
	case models.StatusOpen:
		updates["completed_at"] = nil
		updates["verified_at"] = nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PunchItem{}).Where("id = ?", punchItemID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update punch item status: %w", err)
		}
		return s.appendActivity(tx, item.ProjectID, &item.ID, userID, models.ActionStatusChanged,
			fmt.Sprintf("Status changed: %s -> %s", item.Status, status), now)
	})
	if err != nil {
		return nil, err
	}
	return s.load(punchItemID)
}

func (s *PunchItemService) Assign(punchItemID, userID uuid.UUID, assignedTo string) (*models.PunchItem, error) {
	item, err := s.load(punchItemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.VerifyProjectOwnership(item.ProjectID, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"assigned_to": assignedTo, "updated_at": now}
		if err := tx.Model(&models.PunchItem{}).Where("id = ?", punchItemID).Updates(updates).Error; err != nil {
			return fmt.Errorf("assign punch item: %w", err)
		}
		return s.appendActivity(tx, item.ProjectID, &item.ID, userID, models.ActionAssigned,
			"Assigned to: "+assignedTo, now)
	})
	if err != nil {
		return nil, err
	}
	return s.load(punchItemID)
}

// AddCompletionPhoto records the repair photo and, when a defect photo is on
// file, schedules the before/after comparison after the write commits. The
// caller never waits on the AI result.
func (s *PunchItemService) AddCompletionPhoto(punchItemID, userID uuid.UUID, photoURL string) (*models.PunchItem, error) {
	item, err := s.load(punchItemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.VerifyProjectOwnership(item.ProjectID, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"completion_photo_url": photoURL, "updated_at": now}
		if err := tx.Model(&models.PunchItem{}).Where("id = ?", punchItemID).Updates(updates).Error; err != nil {
			return fmt.Errorf("set completion photo: %w", err)
		}
		return s.appendActivity(tx, item.ProjectID, &item.ID, userID, models.ActionCompletionPhotoAdded,
			"Completion photo uploaded", now)
	})
	if err != nil {
		return nil, err
	}

	if item.DefectPhotoURL != "" {
		s.annotator.DispatchCompare(item.ID, item.DefectPhotoURL, photoURL)
	}
	return s.load(punchItemID)
}

// Remove deletes the item together with its audit entries.
func (s *PunchItemService) Remove(punchItemID, userID uuid.UUID) error {
	item, err := s.load(punchItemID)
	if err != nil {
		return err
	}
	if _, err := s.authz.VerifyProjectOwnership(item.ProjectID, userID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("punch_item_id = ?", punchItemID).Delete(&models.ActivityLog{}).Error; err != nil {
			return fmt.Errorf("delete punch item activity: %w", err)
		}
		if err := tx.Where("id = ?", punchItemID).Delete(&models.PunchItem{}).Error; err != nil {
			return fmt.Errorf("delete punch item: %w", err)
		}
		return nil
	})
}

func (s *PunchItemService) load(punchItemID uuid.UUID) (*models.PunchItem, error) {
	var item models.PunchItem
	err := s.db.Where("id = ?", punchItemID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load punch item: %w", err)
	}
	return &item, nil
}

func (s *PunchItemService) appendActivity(tx *gorm.DB, projectID uuid.UUID, punchItemID *uuid.UUID, userID uuid.UUID, action, details string, at time.Time) error {
	entry := models.ActivityLog{
		ID:          uuid.New(),
		ProjectID:   projectID,
		PunchItemID: punchItemID,
		UserID:      userID,
		Action:      action,
		Details:     details,
		CreatedAt:   at,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("append activity log: %w", err)
	}
	return nil
}
