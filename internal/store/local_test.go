package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLocal(t *testing.T) *LocalStore {
	t.Helper()
	s, err := OpenLocal(LocalConfig{Path: filepath.Join(t.TempDir(), "test.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLocalStore_CreateAndGet(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	id, err := s.Create(ctx, CollectionProjects, Fields{"name": "Wanderwise", "status": "active"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "project_"), "local ids carry a kind prefix, got %s", id)

	doc, err := s.Get(ctx, CollectionProjects, id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "Wanderwise", doc.Fields["name"])
	assert.Equal(t, "active", doc.Fields["status"])
}

func TestLocalStore_GetNotFound(t *testing.T) {
	s := newTestLocal(t)

	_, err := s.Get(context.Background(), CollectionProjects, "project_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_UnknownCollection(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	_, err := s.List(ctx, "widgets")
	assert.ErrorIs(t, err, ErrUnknownCollection)

	_, err = s.Create(ctx, "widgets", Fields{"name": "x"})
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestLocalStore_List(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	docs, err := s.List(ctx, CollectionTimeLogs)
	require.NoError(t, err)
	assert.Empty(t, docs)

	for i := 0; i < 3; i++ {
		_, err := s.Create(ctx, CollectionTimeLogs, Fields{"duration": float64(i + 1)})
		require.NoError(t, err)
	}

	docs, err = s.List(ctx, CollectionTimeLogs)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestLocalStore_UpdateMergesPatch(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	id, err := s.Create(ctx, CollectionProjects, Fields{
		"name":   "RetireWise",
		"status": "planning",
		"color":  "#f59e0b",
	})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, CollectionProjects, id, Fields{"status": "active"}))

	doc, err := s.Get(ctx, CollectionProjects, id)
	require.NoError(t, err)
	assert.Equal(t, "active", doc.Fields["status"])
	assert.Equal(t, "RetireWise", doc.Fields["name"], "untouched keys survive a patch")
	assert.Equal(t, "#f59e0b", doc.Fields["color"])
}

func TestLocalStore_UpdateNotFound(t *testing.T) {
	s := newTestLocal(t)

	err := s.Update(context.Background(), CollectionProjects, "project_missing", Fields{"status": "active"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_PutPreservesID(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, CollectionProjects, "project_123_abc", Fields{"name": "Restored"}))

	doc, err := s.Get(ctx, CollectionProjects, "project_123_abc")
	require.NoError(t, err)
	assert.Equal(t, "Restored", doc.Fields["name"])

	// Put replaces, it does not merge.
	require.NoError(t, s.Put(ctx, CollectionProjects, "project_123_abc", Fields{"status": "active"}))
	doc, err = s.Get(ctx, CollectionProjects, "project_123_abc")
	require.NoError(t, err)
	assert.Equal(t, "active", doc.Fields["status"])
	assert.NotContains(t, doc.Fields, "name")
}

func TestLocalStore_DeleteIsIdempotent(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	id, err := s.Create(ctx, CollectionInsights, Fields{"title": "t"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, CollectionInsights, id))
	require.NoError(t, s.Delete(ctx, CollectionInsights, id), "deleting an absent document is not an error")

	_, err = s.Get(ctx, CollectionInsights, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_Clear(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.Create(ctx, CollectionJournalEntries, Fields{"content": "note"})
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, CollectionProjects, Fields{"name": "survivor"})
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx, CollectionJournalEntries))

	docs, err := s.List(ctx, CollectionJournalEntries)
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = s.List(ctx, CollectionProjects)
	require.NoError(t, err)
	assert.Len(t, docs, 1, "clearing one collection leaves the others alone")
}

func TestLocalStore_SubscribeDeliversSnapshot(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	_, err := s.Create(ctx, CollectionProjects, Fields{"name": "p1"})
	require.NoError(t, err)

	var got []Document
	unsub, err := s.Subscribe(ctx, CollectionProjects, func(docs []Document) { got = docs })
	require.NoError(t, err)
	defer unsub()

	assert.Len(t, got, 1)
}

func TestNewLocalID_Format(t *testing.T) {
	id := NewLocalID(CollectionTimeLogs)
	parts := strings.SplitN(id, "_", 3)
	require.Len(t, parts, 3)
	assert.Equal(t, "timelog", parts[0])
	assert.Len(t, parts[2], 9)

	other := NewLocalID(CollectionTimeLogs)
	assert.NotEqual(t, id, other)
}

func TestLocalStore_TimeValuesRoundTrip(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	id, err := s.Create(ctx, CollectionTimeLogs, Fields{"date": at.Format(time.RFC3339)})
	require.NoError(t, err)

	doc, err := s.Get(ctx, CollectionTimeLogs, id)
	require.NoError(t, err)

	parsed, err := time.Parse(time.RFC3339, doc.Fields["date"].(string))
	require.NoError(t, err)
	assert.True(t, at.Equal(parsed))
}
