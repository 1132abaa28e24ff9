package dto

import "time"

type CreatePunchItemRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Priority       string     `json:"priority"`
	Trade          string     `json:"trade"`
	Location       string     `json:"location,omitempty"`
	AssignedTo     string     `json:"assigned_to,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	DefectPhotoURL string     `json:"defect_photo_url,omitempty"`
}

// UpdatePunchItemRequest patches only the fields that are present; nil means
// "leave unchanged". Status has its own endpoint.
type UpdatePunchItemRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Trade       *string    `json:"trade,omitempty"`
	Location    *string    `json:"location,omitempty"`
	AssignedTo  *string    `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type AssignRequest struct {
	AssignedTo string `json:"assigned_to"`
}

type CompletionPhotoRequest struct {
	CompletionPhotoURL string `json:"completion_photo_url"`
}

// PunchItemFilter narrows a project listing; zero values mean "no filter".
type PunchItemFilter struct {
	Status     string
	Trade      string
	Priority   string
	AssignedTo string
}
