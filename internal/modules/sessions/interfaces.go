package sessions

import (
	"context"

	"filesmanager/internal/domain"
	"filesmanager/internal/modules/auth"
)

type Authorizer interface {
	Authorize(ctx context.Context, sessionID string, req auth.Requirement) (*domain.User, error)
	Check(user *domain.User, req auth.Requirement) error
}
