package auth

import (
	"context"

	"filesmanager/internal/domain"
)

// SessionStore is the part of the session store the auth module uses.
type SessionStore interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// UserReader resolves the user behind a session or a login.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
