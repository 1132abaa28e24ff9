package services

import "errors"

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrUserNotFound      = errors.New("user not found")
	ErrProjectNotFound   = errors.New("project not found")
	ErrItemNotFound      = errors.New("punch item not found")
	ErrForbidden         = errors.New("not authorized")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidPlan       = errors.New("invalid plan")
)
