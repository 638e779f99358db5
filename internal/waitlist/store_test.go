package waitlist

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_InsertAndList(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	a, err := s.Insert(ctx, "ada@example.com", "Travel")
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	_, err = s.Insert(ctx, "bob@example.com", "")
	require.NoError(t, err)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ada@example.com", entries[0].Email)
	assert.Equal(t, "Travel", entries[0].UseCase)
	assert.Equal(t, a.ID, entries[0].ID)
	assert.Equal(t, "", entries[1].UseCase)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStore_Duplicate(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "ada@example.com", "")
	require.NoError(t, err)
	_, err = s.Insert(ctx, "ada@example.com", "Just curious")
	assert.ErrorIs(t, err, ErrDuplicate)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_RejectsEmptyEmail(t *testing.T) {
	s := openMemory(t)
	_, err := s.Insert(context.Background(), "  ", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestStore_FileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "waitlist.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Insert(context.Background(), "ada@example.com", "")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	n, err := reopened.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_NormalizesEmail(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	e, err := s.Insert(ctx, "  Ada@Example.COM ", "")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", e.Email)

	_, err = s.Insert(ctx, "ada@example.com", "")
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestIsUniqueViolation(t *testing.T) {
	s := openMemory(t)
	now := time.Now().UTC()

	_, err := s.db.Exec(`INSERT INTO waitlist (id, email, created_at) VALUES ('a', 'ada@example.com', ?)`, now)
	require.NoError(t, err)

	_, err = s.db.Exec(`INSERT INTO waitlist (id, email, created_at) VALUES ('b', 'ada@example.com', ?)`, now)
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err), "unique email")

	_, err = s.db.Exec(`INSERT INTO waitlist (id, email, created_at) VALUES ('a', 'bob@example.com', ?)`, now)
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err), "primary key")

	_, err = s.db.Exec(`INSERT INTO waitlist (id, email, created_at) VALUES ('c', NULL, ?)`, now)
	require.Error(t, err)
	assert.False(t, isUniqueViolation(err), "NOT NULL is not a duplicate")
}
