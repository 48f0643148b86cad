package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hasibdev/portfeed/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestLocalStoreRoundTrip(t *testing.T) {
	s := newTestLocalStore(t)

	posts := []model.Post{
		{Id: "p1", Title: "first", Content: "<p>one</p>", Created: 100},
		{Id: "p2", Title: "second", External: "https://example.com", Created: 200},
	}
	require.NoError(t, s.PersistAll(posts))

	// Insertion order is preserved, the store does not sort.
	assert.Equal(t, posts, s.ListAll())
}

func TestLocalStoreEmptyWhenMissing(t *testing.T) {
	s := newTestLocalStore(t)

	assert.Equal(t, []model.Post{}, s.ListAll())
}

func TestLocalStoreMalformedContentFailsSoft(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, postsFileName), []byte("{not json"), 0o644))

	assert.Equal(t, []model.Post{}, s.ListAll())
}

func TestLocalStoreAppend(t *testing.T) {
	s := newTestLocalStore(t)

	require.NoError(t, s.Append(model.Post{Id: "p1", Title: "a", Created: 1}))
	require.NoError(t, s.Append(model.Post{Id: "p2", Title: "b", Created: 2}))

	posts := s.ListAll()
	require.Len(t, posts, 2)
	assert.Equal(t, "p1", posts[0].Id)
	assert.Equal(t, "p2", posts[1].Id)
}

func TestLocalStoreRemove(t *testing.T) {
	s := newTestLocalStore(t)
	require.NoError(t, s.PersistAll([]model.Post{
		{Id: "p1", Title: "a"},
		{Id: "p2", Title: "b"},
		{Id: "p3", Title: "c"},
	}))

	require.NoError(t, s.Remove("p2"))

	posts := s.ListAll()
	require.Len(t, posts, 2)
	assert.Equal(t, "p1", posts[0].Id)
	assert.Equal(t, "p3", posts[1].Id)
}

func TestLocalStoreRemoveUnknownId(t *testing.T) {
	s := newTestLocalStore(t)
	require.NoError(t, s.PersistAll([]model.Post{{Id: "p1", Title: "a"}}))

	assert.ErrorIs(t, s.Remove("nope"), ErrNotFound)
	assert.Len(t, s.ListAll(), 1)
}

func TestLocalStoreMigrationFlag(t *testing.T) {
	s := newTestLocalStore(t)

	assert.False(t, s.MigrationDone())
	require.NoError(t, s.MarkMigrationDone())
	assert.True(t, s.MigrationDone())

	// Idempotent.
	require.NoError(t, s.MarkMigrationDone())
	assert.True(t, s.MigrationDone())
}

func TestLocalStoreFlagSurvivesListRewrite(t *testing.T) {
	s := newTestLocalStore(t)
	require.NoError(t, s.MarkMigrationDone())

	require.NoError(t, s.PersistAll([]model.Post{{Id: "p1", Title: "a"}}))
	require.NoError(t, s.PersistAll([]model.Post{}))

	assert.True(t, s.MigrationDone())
}
