package auth

import "filesmanager/internal/domain"

var (
	ErrNotAuthenticated     = domain.NewError(domain.ErrNotAuthenticated, "you must be logged in")
	ErrNotAuthorized        = domain.NewError(domain.ErrNotAuthorized, "you are not authorized to perform this action")
	ErrInvalidCredentials   = domain.NewError(domain.ErrNotAuthenticated, "invalid username or password")
	ErrAlreadyAuthenticated = domain.NewError(domain.ErrConflict, "you are already logged in")
	ErrMissingCredentials   = domain.NewError(domain.ErrValidation, "username and password are required")
)
