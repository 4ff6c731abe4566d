package files

import "filesmanager/internal/domain"

var (
	ErrFileNotFound    = domain.NewError(domain.ErrNotFound, "file not found")
	ErrUserNotFound    = domain.NewError(domain.ErrNotFound, "user not found")
	ErrContentMissing  = domain.NewError(domain.ErrNotFound, "file content not found")
	ErrNameConflict    = domain.NewError(domain.ErrConflict, "a file with this name already exists")
	ErrTooLarge        = domain.NewError(domain.ErrValidation, "file is too large")
	ErrUnsupportedType = domain.NewError(domain.ErrValidation, "only jpeg, png and pdf files are allowed")
	ErrEmptyFile       = domain.NewError(domain.ErrValidation, "file is empty")
	ErrInvalidName     = domain.NewError(domain.ErrValidation, "invalid file name")
	ErrNoFile          = domain.NewError(domain.ErrValidation, "file is required")
)
