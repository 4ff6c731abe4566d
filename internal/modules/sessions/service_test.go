package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filesmanager/internal/domain"
	"filesmanager/internal/metrics"
	"filesmanager/internal/modules/auth"
	"filesmanager/internal/repository"
	"filesmanager/internal/sessionstore"
	"filesmanager/internal/testutil"
)

type fixture struct {
	svc   *Service
	store sessionstore.Store

	alice, bob, admin          *domain.User
	aliceSID, bobSID, adminSID string
}

func newFixture(t *testing.T, store func(t *testing.T, repo *repository.SessionRepository) sessionstore.Store) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	users := repository.NewUserRepository(db)
	s := store(t, repository.NewSessionRepository(db))

	f := &fixture{
		svc:   NewService(auth.NewAuthorizer(s, users, nil), s),
		store: s,
	}
	f.alice = testutil.CreateUser(t, db, "alice", domain.RoleUser)
	f.bob = testutil.CreateUser(t, db, "bob", domain.RoleUser)
	f.admin = testutil.CreateUser(t, db, "root", domain.RoleAdmin)
	f.aliceSID = f.newSession(t, f.alice.ID, time.Hour)
	f.bobSID = f.newSession(t, f.bob.ID, time.Hour)
	f.adminSID = f.newSession(t, f.admin.ID, time.Hour)
	return f
}

func (f *fixture) newSession(t *testing.T, userID int64, ttl time.Duration) string {
	t.Helper()
	s := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
	}
	require.NoError(t, f.store.Create(context.Background(), s))
	return s.ID
}

func sqlStore(_ *testing.T, repo *repository.SessionRepository) sessionstore.Store {
	return repo
}

func badgerStore(t *testing.T, _ *repository.SessionRepository) sessionstore.Store {
	s, err := sessionstore.OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var backends = map[string]func(t *testing.T, repo *repository.SessionRepository) sessionstore.Store{
	"sql":    sqlStore,
	"badger": badgerStore,
}

func TestListAll(t *testing.T) {
	for name, store := range backends {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, store)
			ctx := context.Background()

			_, err := f.svc.ListAll(ctx, f.aliceSID)
			assert.ErrorIs(t, err, domain.ErrNotAuthorized)

			list, err := f.svc.ListAll(ctx, f.adminSID)
			require.NoError(t, err)
			assert.Len(t, list, 3)
		})
	}
}

func TestListByUser(t *testing.T) {
	for name, store := range backends {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, store)
			ctx := context.Background()
			f.newSession(t, f.alice.ID, time.Hour)

			list, err := f.svc.ListByUser(ctx, f.aliceSID, f.alice.ID)
			require.NoError(t, err)
			assert.Len(t, list, 2)

			_, err = f.svc.ListByUser(ctx, f.bobSID, f.alice.ID)
			assert.ErrorIs(t, err, domain.ErrNotAuthorized)

			list, err = f.svc.ListByUser(ctx, f.adminSID, f.alice.ID)
			require.NoError(t, err)
			assert.Len(t, list, 2)
		})
	}
}

func TestRevoke(t *testing.T) {
	for name, store := range backends {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, store)
			ctx := context.Background()
			second := f.newSession(t, f.alice.ID, time.Hour)

			assert.ErrorIs(t, f.svc.Revoke(ctx, f.bobSID, second), domain.ErrNotAuthorized)
			require.NoError(t, f.svc.Revoke(ctx, f.aliceSID, second))
			assert.ErrorIs(t, f.svc.Revoke(ctx, f.aliceSID, second), ErrSessionNotFound)

			require.NoError(t, f.svc.Revoke(ctx, f.adminSID, f.bobSID))
			_, err := f.svc.ListByUser(ctx, f.bobSID, f.bob.ID)
			assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
		})
	}
}

func TestReaper_Sweep(t *testing.T) {
	for name, store := range backends {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, store)
			ctx := context.Background()
			expired := f.newSession(t, f.alice.ID, time.Minute)

			r := NewReaper(f.store, time.Minute, metrics.New())
			r.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

			n, err := r.Sweep(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			_, err = f.store.Get(ctx, expired)
			assert.ErrorIs(t, err, domain.ErrNotFound)
			_, err = f.store.Get(ctx, f.aliceSID)
			assert.NoError(t, err)
		})
	}
}

func TestReaper_RunStopsOnCancel(t *testing.T) {
	f := newFixture(t, sqlStore)
	r := NewReaper(f.store, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop")
	}
}
