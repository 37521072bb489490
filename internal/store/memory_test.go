package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_OwnedFailsClosed(t *testing.T) {
	s := NewOwnedMemoryStore()
	ctx := context.Background()

	_, err := s.List(ctx, CollectionProjects)
	assert.ErrorIs(t, err, ErrMissingOwner)

	_, err = s.Create(ctx, CollectionProjects, Fields{"name": "x"})
	assert.ErrorIs(t, err, ErrMissingOwner)
}

func TestMemoryStore_OwnedPartitionsPerUser(t *testing.T) {
	s := NewOwnedMemoryStore()
	alice := ContextWithOwner(context.Background(), &OwnerInfo{UserID: "alice"})
	bob := ContextWithOwner(context.Background(), &OwnerInfo{UserID: "bob"})

	id, err := s.Create(alice, CollectionProjects, Fields{"name": "alice's"})
	require.NoError(t, err)

	docs, err := s.List(alice, CollectionProjects)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	docs, err = s.List(bob, CollectionProjects)
	require.NoError(t, err)
	assert.Empty(t, docs, "owners never see each other's data")

	_, err = s.Get(bob, CollectionProjects, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_NoAliasing(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	fields := Fields{"name": "original"}
	id, err := s.Create(ctx, CollectionProjects, fields)
	require.NoError(t, err)

	// Mutating the caller's map after the fact must not leak into the store.
	fields["name"] = "mutated"

	doc, err := s.Get(ctx, CollectionProjects, id)
	require.NoError(t, err)
	assert.Equal(t, "original", doc.Fields["name"])

	// Nor does mutating a returned document.
	doc.Fields["name"] = "mutated again"
	doc2, err := s.Get(ctx, CollectionProjects, id)
	require.NoError(t, err)
	assert.Equal(t, "original", doc2.Fields["name"])
}

func TestMemoryStore_UpdateAndDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Create(ctx, CollectionInsights, Fields{"title": "t", "dismissed": false})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, CollectionInsights, id, Fields{"dismissed": true}))
	doc, err := s.Get(ctx, CollectionInsights, id)
	require.NoError(t, err)
	assert.Equal(t, true, doc.Fields["dismissed"])
	assert.Equal(t, "t", doc.Fields["title"])

	assert.ErrorIs(t, s.Update(ctx, CollectionInsights, "missing", Fields{"x": 1}), ErrNotFound)

	require.NoError(t, s.Delete(ctx, CollectionInsights, id))
	require.NoError(t, s.Delete(ctx, CollectionInsights, id))
	_, err = s.Get(ctx, CollectionInsights, id)
	assert.ErrorIs(t, err, ErrNotFound)
}
