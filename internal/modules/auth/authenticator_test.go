package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filesmanager/internal/domain"
	"filesmanager/internal/repository"
	"filesmanager/internal/testutil"
)

type authFixture struct {
	authenticator *Authenticator
	authorizer    *Authorizer
	sessions      *repository.SessionRepository
	users         *repository.UserRepository
}

func newAuthFixture(t *testing.T) (*authFixture, *domain.User) {
	t.Helper()

	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "alice", domain.RoleUser)

	sessions := repository.NewSessionRepository(db)
	users := repository.NewUserRepository(db)
	authorizer := NewAuthorizer(sessions, users, nil)

	return &authFixture{
		authenticator: NewAuthenticator(authorizer, sessions, users),
		authorizer:    authorizer,
		sessions:      sessions,
		users:         users,
	}, user
}

func loginInput(username, password string) LoginInput {
	return LoginInput{
		Username: username,
		Password: password,
		Cookie: domain.CookieMeta{
			Path:     "/",
			MaxAge:   time.Hour,
			HTTPOnly: true,
			SameSite: "Lax",
		},
		UserAgent: "go-test",
		IP:        "127.0.0.1",
	}
}

func TestAuthenticate_Success(t *testing.T) {
	f, alice := newAuthFixture(t)
	ctx := context.Background()

	sess, user, err := f.authenticator.Authenticate(ctx, "", loginInput("alice", "password123"))
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)
	assert.Equal(t, alice.ID, sess.UserID)
	assert.Equal(t, "/", sess.CookiePath)
	assert.Equal(t, time.Hour.Milliseconds(), sess.OriginalMaxAge)
	assert.True(t, sess.HTTPOnly)

	stored, err := f.sessions.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, stored.UserID)
}

func TestAuthenticate_EachLoginCreatesSession(t *testing.T) {
	f, alice := newAuthFixture(t)
	ctx := context.Background()

	s1, _, err := f.authenticator.Authenticate(ctx, "", loginInput("alice", "password123"))
	require.NoError(t, err)
	s2, _, err := f.authenticator.Authenticate(ctx, "", loginInput("alice", "password123"))
	require.NoError(t, err)
	assert.NotEqual(t, s1.ID, s2.ID)

	list, err := f.sessions.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	f, _ := newAuthFixture(t)
	ctx := context.Background()

	_, _, err := f.authenticator.Authenticate(ctx, "", loginInput("alice", "wrong"))
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = f.authenticator.Authenticate(ctx, "", loginInput("nobody", "password123"))
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestAuthenticate_MissingCredentials(t *testing.T) {
	f, _ := newAuthFixture(t)

	_, _, err := f.authenticator.Authenticate(context.Background(), "", loginInput("  ", ""))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthenticate_AlreadyAuthenticated(t *testing.T) {
	f, _ := newAuthFixture(t)
	ctx := context.Background()

	sess, _, err := f.authenticator.Authenticate(ctx, "", loginInput("alice", "password123"))
	require.NoError(t, err)

	_, _, err = f.authenticator.Authenticate(ctx, sess.ID, loginInput("alice", "password123"))
	assert.ErrorIs(t, err, ErrAlreadyAuthenticated)
}

func TestAuthenticate_StaleSessionDoesNotBlockLogin(t *testing.T) {
	f, _ := newAuthFixture(t)

	_, _, err := f.authenticator.Authenticate(context.Background(), "revoked-id", loginInput("alice", "password123"))
	assert.NoError(t, err)
}

func TestTerminate_TwiceYieldsNotAuthenticated(t *testing.T) {
	f, _ := newAuthFixture(t)
	ctx := context.Background()

	sess, _, err := f.authenticator.Authenticate(ctx, "", loginInput("alice", "password123"))
	require.NoError(t, err)

	require.NoError(t, f.authenticator.Terminate(ctx, sess.ID))
	assert.ErrorIs(t, f.authenticator.Terminate(ctx, sess.ID), ErrNotAuthenticated)

	_, err = f.authorizer.Authorize(ctx, sess.ID, MustBeAuthenticated())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestTerminate_NoSession(t *testing.T) {
	f, _ := newAuthFixture(t)
	assert.ErrorIs(t, f.authenticator.Terminate(context.Background(), ""), ErrNotAuthenticated)
}

func TestAuthorize_SessionOfDeletedUser(t *testing.T) {
	f, alice := newAuthFixture(t)
	ctx := context.Background()

	sess, _, err := f.authenticator.Authenticate(ctx, "", loginInput("alice", "password123"))
	require.NoError(t, err)
	require.NoError(t, f.users.Delete(ctx, alice.ID))

	_, err = f.authorizer.Authorize(ctx, sess.ID, MustBeAuthenticated())
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = f.sessions.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
