package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"filesmanager/internal/domain"
	"filesmanager/internal/modules/auth"
	"filesmanager/internal/modules/cascade"
	"filesmanager/internal/pkg/response"
	"filesmanager/internal/repository"
	"filesmanager/internal/storage"
	"filesmanager/internal/testutil"
)

type fixture struct {
	db       *gorm.DB
	svc      *Service
	users    *repository.UserRepository
	sessions *repository.SessionRepository
	files    *repository.FileRepository

	alice, admin       *domain.User
	aliceSID, adminSID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	blobs, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	users := repository.NewUserRepository(db)
	files := repository.NewFileRepository(db)
	lists := repository.NewUserFileRepository(db)
	sessions := repository.NewSessionRepository(db)
	authorizer := auth.NewAuthorizer(sessions, users, nil)
	coordinator := cascade.NewCoordinator(users, files, lists, sessions, blobs, nil)

	f := &fixture{
		db:       db,
		svc:      NewService(authorizer, users, lists, coordinator),
		users:    users,
		sessions: sessions,
		files:    files,
	}
	f.alice = testutil.CreateUser(t, db, "alice", domain.RoleUser)
	f.admin = testutil.CreateUser(t, db, "root", domain.RoleAdmin)
	f.aliceSID = testutil.CreateSession(t, db, f.alice.ID).ID
	f.adminSID = testutil.CreateSession(t, db, f.admin.ID).ID
	return f
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, RegisterRequest{Username: " carol ", Email: "Carol@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "carol", user.Username)
	assert.Equal(t, "carol@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "secret1"))
}

func TestRegister_Duplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Fields, "username")
	assert.Contains(t, fe.Fields, "email")

	_, err = f.svc.Register(ctx, RegisterRequest{Username: "alice2", Email: "alice@example.com", Password: "secret1"})
	require.ErrorAs(t, err, &fe)
	assert.NotContains(t, fe.Fields, "username")
	assert.Contains(t, fe.Fields, "email")

	status, _ := response.Classify(err)
	assert.Equal(t, 400, status)
}

func TestRegister_Invalid(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), RegisterRequest{Username: "x", Email: "nope", Password: "1"})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Len(t, fe.Fields, 3)
}

func TestGetAndList_AdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	file := testutil.CreateFile(t, f.db, f.alice.ID, "a.pdf")

	_, err := f.svc.Get(ctx, f.aliceSID, f.alice.ID)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	user, err := f.svc.Get(ctx, f.adminSID, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{file.ID}, user.Files)

	_, err = f.svc.Get(ctx, f.adminSID, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.svc.List(ctx, f.aliceSID)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	list, err := f.svc.List(ctx, f.adminSID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.svc.List(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.UpdateProfile(ctx, f.aliceSID, UpdateProfileRequest{Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)

	_, err = f.svc.UpdateProfile(ctx, f.aliceSID, UpdateProfileRequest{Email: "root@example.com"})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Fields, "email")

	_, err = f.svc.UpdateProfile(ctx, f.aliceSID, UpdateProfileRequest{Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = f.svc.UpdateProfile(ctx, "", UpdateProfileRequest{Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.ChangePassword(ctx, f.aliceSID, ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "newpass1"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = f.svc.ChangePassword(ctx, f.aliceSID, ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "123"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	require.NoError(t, f.svc.ChangePassword(ctx, f.aliceSID, ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "newpass1"}))

	stored, err := f.users.GetByID(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "newpass1"))
}

func TestUpdateRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdateRole(ctx, f.aliceSID, f.alice.ID, "admin")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	user, err := f.svc.UpdateRole(ctx, f.adminSID, f.alice.ID, "admin")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())

	_, err = f.svc.UpdateRole(ctx, f.adminSID, f.alice.ID, "superuser")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = f.svc.UpdateRole(ctx, f.adminSID, f.admin.ID, "user")
	assert.ErrorIs(t, err, ErrOwnRole)

	_, err = f.svc.UpdateRole(ctx, f.adminSID, 9999, "user")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUser_AdminCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f1 := testutil.CreateFile(t, f.db, f.alice.ID, "f1.pdf")
	f2 := testutil.CreateFile(t, f.db, f.alice.ID, "f2.pdf")

	assert.ErrorIs(t, f.svc.DeleteUser(ctx, f.aliceSID, f.admin.ID), domain.ErrNotAuthorized)

	require.NoError(t, f.svc.DeleteUser(ctx, f.adminSID, f.alice.ID))

	for _, id := range []string{f1.ID, f2.ID} {
		_, err := f.files.GetByID(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
	_, err := f.sessions.Get(ctx, f.aliceSID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Me(ctx, f.aliceSID)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	assert.ErrorIs(t, f.svc.DeleteUser(ctx, f.adminSID, f.alice.ID), ErrUserNotFound)
}

func TestDeleteMyAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.DeleteMyAccount(ctx, f.aliceSID))

	_, err := f.users.GetByID(ctx, f.alice.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteMyAccount(ctx, f.aliceSID), domain.ErrNotAuthenticated)
}

func TestDeleteAllUsers_KeepsCaller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "bob", domain.RoleUser)

	_, err := f.svc.DeleteAllUsers(ctx, f.aliceSID)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	n, err := f.svc.DeleteAllUsers(ctx, f.adminSID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	list, err := f.svc.List(ctx, f.adminSID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.admin.ID, list[0].ID)
}
