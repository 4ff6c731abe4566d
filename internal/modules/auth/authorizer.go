package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"filesmanager/internal/domain"
	"filesmanager/internal/metrics"
)

// Authorizer is the only authorization path of the service. Every listing
// and mutation on users, files and sessions goes through Authorize.
type Authorizer struct {
	sessions SessionStore
	users    UserReader
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewAuthorizer(sessions SessionStore, users UserReader, m *metrics.Metrics) *Authorizer {
	return &Authorizer{
		sessions: sessions,
		users:    users,
		metrics:  m,
		now:      time.Now,
	}
}

// Principal is a resolved, live session together with its user.
type Principal struct {
	Session *domain.Session
	User    *domain.User
}

// Resolve loads the session and its user. Missing, expired and dangling
// sessions all yield ErrNotAuthenticated; the latter two are removed.
func (a *Authorizer) Resolve(ctx context.Context, sessionID string) (*Principal, error) {
	if sessionID == "" {
		return nil, ErrNotAuthenticated
	}

	sess, err := a.sessions.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}

	if sess.IsExpired(a.now()) {
		a.discard(ctx, sess.ID, "expired")
		return nil, ErrNotAuthenticated
	}

	user, err := a.users.GetByID(ctx, sess.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		a.discard(ctx, sess.ID, "user_deleted")
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}

	return &Principal{Session: sess, User: user}, nil
}

func (a *Authorizer) discard(ctx context.Context, sessionID, reason string) {
	if _, err := a.sessions.Delete(context.WithoutCancel(ctx), sessionID); err != nil {
		slog.Warn("failed to discard stale session", "session_id", sessionID, "reason", reason, "error", err)
	}
}

// Authorize resolves the session and checks req against its user.
// On success it returns the resolved user.
func (a *Authorizer) Authorize(ctx context.Context, sessionID string, req Requirement) (*domain.User, error) {
	p, err := a.Resolve(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			a.metrics.AuthzDecision(req.Name(), false)
		}
		return nil, err
	}

	if err := a.Check(p.User, req); err != nil {
		return nil, err
	}
	return p.User, nil
}

// Check applies req to a user already returned by Authorize. Operations
// that must load a resource before they know its owner use it for the
// ownership step.
func (a *Authorizer) Check(user *domain.User, req Requirement) error {
	err := Decide(user, req)
	a.metrics.AuthzDecision(req.Name(), err == nil)
	return err
}

// Decide applies req to an already resolved user. Admins satisfy every
// ownership requirement.
func Decide(user *domain.User, req Requirement) error {
	if user == nil {
		return ErrNotAuthenticated
	}

	switch req.kind {
	case kindAdmin:
		if !user.IsAdmin() {
			return ErrNotAuthorized
		}
	case kindOwner:
		if user.ID != req.ownerID && !user.IsAdmin() {
			return ErrNotAuthorized
		}
	}
	return nil
}
