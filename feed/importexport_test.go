package feed

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hasibdev/portfeed/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportIsIndentedJSON(t *testing.T) {
	local := newTestLocalStore(t)
	require.NoError(t, local.PersistAll([]model.Post{
		{Id: "p1", Title: "a", Content: "<p>one</p>", Created: 100},
	}))
	ie := NewImportExport(local)

	raw, err := ie.Export()
	require.NoError(t, err)

	assert.True(t, json.Valid(raw))
	assert.Contains(t, string(raw), "\n  {")

	var posts []model.Post
	require.NoError(t, json.Unmarshal(raw, &posts))
	assert.Equal(t, local.ListAll(), posts)
}

func TestImportMergesIntoExistingList(t *testing.T) {
	local := newTestLocalStore(t)
	require.NoError(t, local.PersistAll([]model.Post{
		{Id: "p1", Title: "existing one", Created: 100},
		{Id: "p2", Title: "existing two", Created: 200},
	}))
	ie := NewImportExport(local)
	now := time.Unix(1700000000, 0)
	ie.now = func() time.Time { return now }

	count, err := ie.Import([]byte(`[{"title":"A"}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	posts := local.ListAll()
	require.Len(t, posts, 3)

	// The merged entry is appended with every missing field defaulted.
	merged := posts[2]
	assert.Equal(t, "A", merged.Title)
	assert.Equal(t, "", merged.External)
	assert.Equal(t, "", merged.Content)
	assert.NotEmpty(t, merged.Id)
	assert.Equal(t, model.Timestamp(now), merged.Created)
}

func TestImportRejectsNonArray(t *testing.T) {
	local := newTestLocalStore(t)
	require.NoError(t, local.PersistAll([]model.Post{{Id: "p1", Title: "keep"}}))
	ie := NewImportExport(local)

	for _, payload := range []string{`{"title":"A"}`, `"hello"`, `42`, `not json at all`} {
		count, err := ie.Import([]byte(payload))
		assert.ErrorIs(t, err, ErrNotArray, payload)
		assert.Zero(t, count)
	}

	// A rejected import merges nothing.
	assert.Len(t, local.ListAll(), 1)
}

func TestImportGeneratesDistinctIds(t *testing.T) {
	local := newTestLocalStore(t)
	ie := NewImportExport(local)

	count, err := ie.Import([]byte(`[{"title":"A"},{"title":"B"},{"title":"C"}]`))
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	seen := map[string]bool{}
	for _, p := range local.ListAll() {
		assert.False(t, seen[p.Id], "duplicate generated id %s", p.Id)
		seen[p.Id] = true
	}
}

func TestImportPreservesExplicitFields(t *testing.T) {
	local := newTestLocalStore(t)
	ie := NewImportExport(local)

	count, err := ie.Import([]byte(`[{"id":"keep-me","title":"T","external":"https://example.com","created":123}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	posts := local.ListAll()
	require.Len(t, posts, 1)
	assert.Equal(t, "keep-me", posts[0].Id)
	assert.Equal(t, int64(123), posts[0].Created)
	assert.Equal(t, "https://example.com", posts[0].External)
}

func TestExportImportRoundTrip(t *testing.T) {
	source := newTestLocalStore(t)
	require.NoError(t, source.PersistAll([]model.Post{
		{Id: "p1", Title: "first", External: "https://example.com", Image: "data:image/jpeg;base64,AAA", Thumb: "data:image/jpeg;base64,BBB", Content: "<p>one</p>", Created: 100},
		{Id: "p2", Title: "second", Content: "<p>two</p>", Created: 200},
	}))

	raw, err := NewImportExport(source).Export()
	require.NoError(t, err)

	target := newTestLocalStore(t)
	count, err := NewImportExport(target).Import(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Entries carrying ids and timestamps come back exactly as exported.
	if diff := cmp.Diff(source.ListAll(), target.ListAll()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
