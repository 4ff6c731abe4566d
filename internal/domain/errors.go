package domain

import "errors"

// Error kinds. Module errors wrap one of these so the HTTP layer can map
// any error to a status without knowing the module.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrStore            = errors.New("store error")
)

// Error is a module error: a human-readable message classified by one of
// the kinds above.
type Error struct {
	Kind    error
	Message string
}

func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }
