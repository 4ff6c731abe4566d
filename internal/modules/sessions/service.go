package sessions

import (
	"context"
	"errors"

	"filesmanager/internal/domain"
	"filesmanager/internal/modules/auth"
	"filesmanager/internal/sessionstore"
)

type Service struct {
	authorizer Authorizer
	store      sessionstore.Store
}

func NewService(authorizer Authorizer, store sessionstore.Store) *Service {
	return &Service{authorizer: authorizer, store: store}
}

func (s *Service) ListAll(ctx context.Context, sessionID string) ([]domain.Session, error) {
	if _, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAdmin()); err != nil {
		return nil, err
	}
	return s.store.List(ctx)
}

// ListByUser returns the sessions of userID to that user or an admin.
func (s *Service) ListByUser(ctx context.Context, sessionID string, userID int64) ([]domain.Session, error) {
	if _, err := s.authorizer.Authorize(ctx, sessionID, auth.MustOwn(userID)); err != nil {
		return nil, err
	}
	return s.store.ListByUser(ctx, userID)
}

// Revoke destroys a session. Users may revoke their own sessions, admins
// any session.
func (s *Service) Revoke(ctx context.Context, sessionID, targetID string) error {
	user, err := s.authorizer.Authorize(ctx, sessionID, auth.MustBeAuthenticated())
	if err != nil {
		return err
	}

	target, err := s.store.Get(ctx, targetID)
	if errors.Is(err, domain.ErrNotFound) {
		return ErrSessionNotFound
	}
	if err != nil {
		return err
	}

	if err := s.authorizer.Check(user, auth.MustOwn(target.UserID)); err != nil {
		return err
	}

	deleted, err := s.store.Delete(ctx, targetID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrSessionNotFound
	}
	return nil
}
