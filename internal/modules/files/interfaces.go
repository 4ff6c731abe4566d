package files

import (
	"context"

	"filesmanager/internal/domain"
	"filesmanager/internal/modules/auth"
)

type Authorizer interface {
	Authorize(ctx context.Context, sessionID string, req auth.Requirement) (*domain.User, error)
	Check(user *domain.User, req auth.Requirement) error
}

// Cascade removes files together with their owner-list entries and blobs.
type Cascade interface {
	DeleteFile(ctx context.Context, f *domain.File) error
	DeleteFilesOwnedBy(ctx context.Context, userID int64) (int64, error)
	DeleteAllFiles(ctx context.Context) (int64, error)
}

// NameIndex answers the namer's existence lookups.
type NameIndex interface {
	GetByName(ctx context.Context, name string) (*domain.File, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}
