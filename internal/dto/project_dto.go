package dto

import "github.com/Smear6uard/CloseOut/internal/models"

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address,omitempty"`
	Description string `json:"description,omitempty"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Address     *string `json:"address,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// ProjectWithCounts is the list view: the project plus punch item counts.
type ProjectWithCounts struct {
	models.Project
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

type ProjectStatsResponse struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByTrade    map[string]int `json:"by_trade"`
	ByPriority map[string]int `json:"by_priority"`
}

type ReportSummary struct {
	Total                int `json:"total"`
	Open                 int `json:"open"`
	InProgress           int `json:"in_progress"`
	Complete             int `json:"complete"`
	Verified             int `json:"verified"`
	CompletionPercentage int `json:"completion_percentage"`
}

type ProjectReportResponse struct {
	Project       models.Project                `json:"project"`
	Summary       ReportSummary                 `json:"summary"`
	ItemsByStatus map[string][]models.PunchItem `json:"items_by_status"`
	ItemsByTrade  map[string][]models.PunchItem `json:"items_by_trade"`
	ActivityLog   []models.ActivityLog          `json:"activity_log"`
}
