package service

import "github.com/taskflow/taskflow-go/internal/apperror"

var (
	ErrEmailTaken          = apperror.Conflict("user already exists")
	ErrInvalidCredentials  = apperror.Unauthorized("invalid credentials")
	ErrMissingRefreshToken = apperror.Unauthorized("refresh token required")
	ErrInvalidRefreshToken = apperror.Unauthorized("invalid refresh token")
	ErrTaskNotFound        = apperror.NotFound("task not found")
	ErrCategoryNotFound    = apperror.NotFound("category not found")
	ErrCategoryExists      = apperror.Conflict("category already exists")
	ErrInvalidDueDate      = apperror.Validation("invalid due date")
	ErrInvalidPage         = apperror.Validation("invalid page")
)
