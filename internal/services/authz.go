package services

import (
	"errors"
	"fmt"

	"github.com/Smear6uard/CloseOut/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthzService resolves identities to tenant users and verifies resource
// ownership. Every read and mutation on a project, punch item, or activity
// entry goes through it; decisions are never cached across requests.
type AuthzService struct {
	db *gorm.DB
}

func NewAuthzService(db *gorm.DB) *AuthzService {
	return &AuthzService{db: db}
}

// ResolveUser maps an identity token to its User record.
func (s *AuthzService) ResolveUser(tokenIdentifier string) (*models.User, error) {
	if tokenIdentifier == "" {
		return nil, ErrNotAuthenticated
	}

	var user models.User
	err := s.db.Where("token_identifier = ?", tokenIdentifier).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	return &user, nil
}

// VerifyProjectOwnership loads the project and checks it belongs to userID.
func (s *AuthzService) VerifyProjectOwnership(projectID, userID uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := s.db.Where("id = ?", projectID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project.UserID != userID {
		return nil, ErrForbidden
	}
	return &project, nil
}
