package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"filesmanager/internal/domain"
)

// Authenticator opens and closes sessions.
type Authenticator struct {
	authorizer *Authorizer
	sessions   SessionStore
	users      UserReader
	now        func() time.Time
}

func NewAuthenticator(authorizer *Authorizer, sessions SessionStore, users UserReader) *Authenticator {
	return &Authenticator{
		authorizer: authorizer,
		sessions:   sessions,
		users:      users,
		now:        time.Now,
	}
}

// Authenticate verifies the credentials and persists a new session.
// A caller that already holds a live session is rejected.
func (a *Authenticator) Authenticate(ctx context.Context, currentSessionID string, in LoginInput) (*domain.Session, *domain.User, error) {
	if currentSessionID != "" {
		_, err := a.authorizer.Resolve(ctx, currentSessionID)
		if err == nil {
			return nil, nil, ErrAlreadyAuthenticated
		}
		if !errors.Is(err, domain.ErrNotAuthenticated) {
			return nil, nil, err
		}
	}

	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, nil, ErrMissingCredentials
	}

	user, err := a.users.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		CheckPassword("", in.Password)
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}

	if !CheckPassword(user.PasswordHash, in.Password) {
		return nil, nil, ErrInvalidCredentials
	}

	now := a.now()
	sess := &domain.Session{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		CookiePath:     in.Cookie.Path,
		OriginalMaxAge: in.Cookie.MaxAge.Milliseconds(),
		HTTPOnly:       in.Cookie.HTTPOnly,
		Secure:         in.Cookie.Secure,
		SameSite:       in.Cookie.SameSite,
		UserAgent:      in.UserAgent,
		IP:             in.IP,
		ExpiresAt:      now.Add(in.Cookie.MaxAge),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := a.sessions.Create(ctx, sess); err != nil {
		return nil, nil, err
	}

	return sess, user, nil
}

// Terminate destroys the caller's session. A second call with the same id
// fails with ErrNotAuthenticated.
func (a *Authenticator) Terminate(ctx context.Context, sessionID string) error {
	p, err := a.authorizer.Resolve(ctx, sessionID)
	if err != nil {
		return err
	}

	deleted, err := a.sessions.Delete(ctx, p.Session.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotAuthenticated
	}
	return nil
}
