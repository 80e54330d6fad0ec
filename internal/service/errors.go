package service

import "github.com/kingrain94/clinic-access-core/internal/apperror"

var (
	// Auth errors. Login never says which half of the credentials was wrong.
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthenticated, "invalid email or password")
	ErrInvalidRecovery    = apperror.New(apperror.KindUnauthenticated, "invalid email or recovery secret")
	ErrAccountDisabled    = apperror.New(apperror.KindForbidden, "account is disabled")
	ErrTenantInactive     = apperror.New(apperror.KindForbidden, "clinic is inactive")

	// User errors
	ErrEmailAlreadyExists = apperror.New(apperror.KindConflict, "email already exists")
	ErrInvalidRole        = apperror.New(apperror.KindInvalidInput, "invalid role")
	ErrUnknownPlan        = apperror.New(apperror.KindInvalidInput, "unknown plan")

	// AI errors
	ErrAIUnavailable = apperror.New(apperror.KindPersistenceUnavailable, "AI provider unavailable")
)
