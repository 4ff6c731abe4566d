package files

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filesmanager/internal/domain"
	"filesmanager/internal/metrics"
	"filesmanager/internal/repository"
	"filesmanager/internal/testutil"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		in, stem, ext string
	}{
		{"report.pdf", "report", ".pdf"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{"README", "README", ""},
		{".env", ".env", ""},
		{"trailing.", "trailing.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			stem, ext := SplitName(tt.in)
			assert.Equal(t, tt.stem, stem)
			assert.Equal(t, tt.ext, ext)
		})
	}
}

func TestNamer_Resolve(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "alice", domain.RoleUser)
	files := repository.NewFileRepository(db)
	namer := NewNamer(files, metrics.New())

	name, counter, err := namer.Resolve(ctx, "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", name)
	assert.Equal(t, 0, counter)

	testutil.CreateFile(t, db, owner.ID, "report.pdf")
	name, counter, err = namer.Resolve(ctx, "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "report(1).pdf", name)
	assert.Equal(t, 1, counter)

	testutil.CreateFile(t, db, owner.ID, "report(1).pdf")
	testutil.CreateFile(t, db, owner.ID, "report(2).pdf")
	name, counter, err = namer.Resolve(ctx, "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "report(3).pdf", name)
	assert.Equal(t, 3, counter)
}

func TestNamer_StartsFromStoredCounter(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "alice", domain.RoleUser)
	files := repository.NewFileRepository(db)
	namer := NewNamer(files, nil)

	testutil.CreateFile(t, db, owner.ID, "photo.png")
	require.NoError(t, files.BumpNameCounter(ctx, "photo.png", 7))

	name, counter, err := namer.Resolve(ctx, "photo.png")
	require.NoError(t, err)
	assert.Equal(t, "photo(7).png", name)
	assert.Equal(t, 7, counter)
}

func TestNamer_NeverReturnsExistingName(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "alice", domain.RoleUser)
	files := repository.NewFileRepository(db)
	namer := NewNamer(files, nil)

	candidates := []string{"a.pdf", "a.pdf", "a.pdf", "b", "b", ".hidden", ".hidden"}
	seen := map[string]bool{}
	for _, c := range candidates {
		name, counter, err := namer.Resolve(ctx, c)
		require.NoError(t, err)
		assert.False(t, seen[name], "duplicate name %q", name)
		seen[name] = true

		exists, err := files.ExistsByName(ctx, name)
		require.NoError(t, err)
		assert.False(t, exists)

		testutil.CreateFile(t, db, owner.ID, name)
		if counter > 0 {
			require.NoError(t, files.BumpNameCounter(ctx, c, counter))
		}
	}
	assert.True(t, seen["a(2).pdf"])
	assert.True(t, seen["b(1)"])
	assert.True(t, seen[".hidden(1)"])
}

func TestNamer_AttemptCeiling(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "alice", domain.RoleUser)
	files := repository.NewFileRepository(db)
	namer := NewNamer(files, nil)
	namer.maxAttempts = 2

	testutil.CreateFile(t, db, owner.ID, "x.pdf")
	testutil.CreateFile(t, db, owner.ID, "x(1).pdf")
	testutil.CreateFile(t, db, owner.ID, "x(2).pdf")

	_, _, err := namer.Resolve(ctx, "x.pdf")
	assert.ErrorIs(t, err, ErrNameConflict)
}
