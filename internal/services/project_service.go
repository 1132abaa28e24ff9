package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/Smear6uard/CloseOut/internal/dto"
	"github.com/Smear6uard/CloseOut/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectService struct {
	db    *gorm.DB
	authz *AuthzService
}

func NewProjectService(db *gorm.DB, authz *AuthzService) *ProjectService {
	return &ProjectService{db: db, authz: authz}
}

// List returns the caller's projects with punch item counts, newest first.
func (s *ProjectService) List(userID uuid.UUID) ([]dto.ProjectWithCounts, error) {
	var projects []models.Project
	if err := s.db.Scopes(models.OwnedBy(userID)).Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	result := make([]dto.ProjectWithCounts, 0, len(projects))
	for _, project := range projects {
		var items []models.PunchItem
		if err := s.db.Where("project_id = ?", project.ID).Find(&items).Error; err != nil {
			return nil, fmt.Errorf("count project items: %w", err)
		}

		entry := dto.ProjectWithCounts{Project: project, Total: len(items)}
		for _, item := range items {
			switch item.Status {
			case models.StatusOpen:
				entry.Open++
			case models.StatusInProgress:
				entry.InProgress++
			case models.StatusComplete, models.StatusVerified:
				entry.Completed++
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *ProjectService) Get(projectID, userID uuid.UUID) (*models.Project, error) {
	return s.authz.VerifyProjectOwnership(projectID, userID)
}

func (s *ProjectService) Stats(projectID, userID uuid.UUID) (*dto.ProjectStatsResponse, error) {
	if _, err := s.authz.VerifyProjectOwnership(projectID, userID); err != nil {
		return nil, err
	}

	var items []models.PunchItem
	if err := s.db.Where("project_id = ?", projectID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load project items: %w", err)
	}

	stats := &dto.ProjectStatsResponse{
		Total:      len(items),
		ByStatus:   make(map[string]int),
		ByTrade:    make(map[string]int),
		ByPriority: make(map[string]int),
	}
	for _, item := range items {
		stats.ByStatus[item.Status]++
		stats.ByTrade[item.Trade]++
		stats.ByPriority[item.Priority]++
	}
	return stats, nil
}

// Report assembles the closeout report data: summary counts, items grouped by
// status and trade, and the project audit trail newest first.
func (s *ProjectService) Report(projectID, userID uuid.UUID) (*dto.ProjectReportResponse, error) {
	project, err := s.authz.VerifyProjectOwnership(projectID, userID)
	if err != nil {
		return nil, err
	}

	var items []models.PunchItem
	if err := s.db.Where("project_id = ?", projectID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load project items: %w", err)
	}

	var logs []models.ActivityLog
	if err := s.db.Where("project_id = ?", projectID).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("load activity log: %w", err)
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].CreatedAt.After(logs[j].CreatedAt) })

	report := &dto.ProjectReportResponse{
		Project:       *project,
		ItemsByStatus: make(map[string][]models.PunchItem),
		ItemsByTrade:  make(map[string][]models.PunchItem),
		ActivityLog:   logs,
	}
	for _, item := range items {
		report.ItemsByStatus[item.Status] = append(report.ItemsByStatus[item.Status], item)
		report.ItemsByTrade[item.Trade] = append(report.ItemsByTrade[item.Trade], item)

		switch item.Status {
		case models.StatusOpen:
			report.Summary.Open++
		case models.StatusInProgress:
			report.Summary.InProgress++
		case models.StatusComplete:
			report.Summary.Complete++
		case models.StatusVerified:
			report.Summary.Verified++
		}
	}
	report.Summary.Total = len(items)
	if report.Summary.Total > 0 {
		done := report.Summary.Complete + report.Summary.Verified
		report.Summary.CompletionPercentage = int(float64(done)/float64(report.Summary.Total)*100 + 0.5)
	}
	return report, nil
}

func (s *ProjectService) Create(userID uuid.UUID, req *dto.CreateProjectRequest) (*models.Project, error) {
	project := models.Project{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		Status:      models.ProjectActive,
	}
	if err := s.db.Create(&project).Error; err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &project, nil
}

func (s *ProjectService) Update(projectID, userID uuid.UUID, req *dto.UpdateProjectRequest) (*models.Project, error) {
	if _, err := s.authz.VerifyProjectOwnership(projectID, userID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if err := s.db.Model(&models.Project{}).Where("id = ?", projectID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	var project models.Project
	if err := s.db.Where("id = ?", projectID).First(&project).Error; err != nil {
		return nil, fmt.Errorf("reload project: %w", err)
	}
	return &project, nil
}

// Remove deletes the project with all its punch items and activity entries in
// one transaction, so no orphaned rows can survive a partial failure.
func (s *ProjectService) Remove(projectID, userID uuid.UUID) error {
	if _, err := s.authz.VerifyProjectOwnership(projectID, userID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.PunchItem{}).Error; err != nil {
			return fmt.Errorf("delete project items: %w", err)
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ActivityLog{}).Error; err != nil {
			return fmt.Errorf("delete project activity: %w", err)
		}
		if err := tx.Where("id = ?", projectID).Delete(&models.Project{}).Error; err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
}

// Activity returns the project audit trail, newest first.
func (s *ProjectService) Activity(projectID, userID uuid.UUID) ([]models.ActivityLog, error) {
	if _, err := s.authz.VerifyProjectOwnership(projectID, userID); err != nil {
		return nil, err
	}

	var logs []models.ActivityLog
	if err := s.db.Where("project_id = ?", projectID).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("load activity log: %w", err)
	}
	return logs, nil
}
