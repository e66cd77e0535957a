package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedStore_ServesFromCache(t *testing.T) {
	inner := newTestStore(t)
	store := NewCachedStore(inner, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleGraph(t, "go-book")))

	loaded, err := store.Load(ctx, "go-book")
	require.NoError(t, err)

	// Remove the backing file; a cached load must still succeed.
	removed, err := inner.Delete(ctx, "go-book")
	require.NoError(t, err)
	require.True(t, removed)

	cached, err := store.Load(ctx, "go-book")
	require.NoError(t, err)
	assert.Equal(t, loaded.ID(), cached.ID())
}

func TestCachedStore_DeleteInvalidates(t *testing.T) {
	inner := newTestStore(t)
	store := NewCachedStore(inner, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleGraph(t, "go-book")))
	_, err := store.Load(ctx, "go-book")
	require.NoError(t, err)

	removed, err := store.Delete(ctx, "go-book")
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = store.Load(ctx, "go-book")
	require.Error(t, err)

	ok, err := store.Exists(ctx, "go-book")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCachedStore_ZeroTTLDisablesCaching(t *testing.T) {
	inner := newTestStore(t)
	store := NewCachedStore(inner, 0)

	assert.Same(t, inner, store)
}
