package sessionstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filesmanager/internal/domain"
	"filesmanager/internal/testutil"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()

	sqlStore, closeSQL, err := Open(BackendSQL, testutil.NewDB(t), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeSQL() })

	badgerStore, closeBadger, err := Open(BackendBadger, nil, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeBadger() })

	return map[string]Store{BackendSQL: sqlStore, BackendBadger: badgerStore}
}

func session(id string, userID int64, expiresIn time.Duration, created time.Time) *domain.Session {
	return &domain.Session{
		ID:             id,
		UserID:         userID,
		CookiePath:     "/",
		OriginalMaxAge: expiresIn.Milliseconds(),
		HTTPOnly:       true,
		SameSite:       "Lax",
		ExpiresAt:      time.Now().Add(expiresIn),
		CreatedAt:      created,
	}
}

func TestStore_Contract(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().Add(-time.Hour)

			require.NoError(t, store.Create(ctx, session("a1", 1, time.Hour, base)))
			require.NoError(t, store.Create(ctx, session("a2", 1, time.Hour, base.Add(time.Second))))
			require.NoError(t, store.Create(ctx, session("b1", 2, time.Hour, base.Add(2*time.Second))))

			got, err := store.Get(ctx, "a1")
			require.NoError(t, err)
			assert.Equal(t, int64(1), got.UserID)
			assert.Equal(t, "/", got.CookiePath)
			assert.True(t, got.HTTPOnly)

			_, err = store.Get(ctx, "nope")
			assert.ErrorIs(t, err, domain.ErrNotFound)

			all, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "a1", all[0].ID)

			mine, err := store.ListByUser(ctx, 1)
			require.NoError(t, err)
			assert.Len(t, mine, 2)

			deleted, err := store.Delete(ctx, "a1")
			require.NoError(t, err)
			assert.True(t, deleted)
			deleted, err = store.Delete(ctx, "a1")
			require.NoError(t, err)
			assert.False(t, deleted)

			n, err := store.DeleteByUser(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
			n, err = store.DeleteByUser(ctx, 1)
			require.NoError(t, err)
			assert.Zero(t, n)

			empty, err := store.ListByUser(ctx, 1)
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func TestStore_DeleteExpired(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now()
			require.NoError(t, store.Create(ctx, session("short", 1, time.Minute, now)))
			require.NoError(t, store.Create(ctx, session("long", 1, time.Hour, now)))

			n, err := store.DeleteExpired(ctx, now.Add(10*time.Minute))
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			_, err = store.Get(ctx, "short")
			assert.ErrorIs(t, err, domain.ErrNotFound)
			_, err = store.Get(ctx, "long")
			assert.NoError(t, err)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, _, err := Open("memcached", nil, "")
	assert.Error(t, err)
}
