package cascade

import (
	"context"

	"filesmanager/internal/domain"
)

// SessionStore is the part of the session store the coordinator cleans up.
type SessionStore interface {
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
	List(ctx context.Context) ([]domain.Session, error)
	Delete(ctx context.Context, id string) (bool, error)
}
