package users

import (
	"context"

	"filesmanager/internal/domain"
	"filesmanager/internal/modules/auth"
)

type Authorizer interface {
	Authorize(ctx context.Context, sessionID string, req auth.Requirement) (*domain.User, error)
}

type Cascade interface {
	DeleteUser(ctx context.Context, userID int64) error
	DeleteUsersExcept(ctx context.Context, keepID int64) (int64, error)
}

// FileLists loads the enumerable file list of a user.
type FileLists interface {
	ListFileIDs(ctx context.Context, userID int64) ([]string, error)
}
