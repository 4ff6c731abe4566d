package users

import (
	"strings"

	"filesmanager/internal/domain"
)

var (
	ErrUserNotFound     = domain.NewError(domain.ErrNotFound, "user not found")
	ErrWrongPassword    = domain.NewError(domain.ErrValidation, "current password is incorrect")
	ErrInvalidRole      = domain.NewError(domain.ErrValidation, "role must be one of: user, admin")
	ErrOwnRole          = domain.NewError(domain.ErrValidation, "admins cannot change their own role")
	ErrInvalidEmail     = domain.NewError(domain.ErrValidation, "invalid email address")
	ErrPasswordTooShort = domain.NewError(domain.ErrValidation, "password must be at least 6 characters")
)

// FieldError is a validation failure with per-field messages.
type FieldError struct {
	Message string
	Fields  map[string]string
}

func (e *FieldError) Error() string               { return e.Message }
func (e *FieldError) Unwrap() error               { return domain.ErrValidation }
func (e *FieldError) Details() map[string]string { return e.Fields }

func duplicateError(usernameTaken, emailTaken bool) error {
	fields := map[string]string{}
	var parts []string
	if usernameTaken {
		fields["username"] = "username is already taken"
		parts = append(parts, "username")
	}
	if emailTaken {
		fields["email"] = "email is already registered"
		parts = append(parts, "email")
	}
	return &FieldError{
		Message: strings.Join(parts, " and ") + " already in use",
		Fields:  fields,
	}
}
