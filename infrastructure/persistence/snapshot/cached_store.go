package snapshot

import (
	"context"
	"sync"
	"time"

	"kgraph/application/ports"
	"kgraph/domain/core/aggregates"
)

// CachedStore is a read-through cache in front of a GraphStore.
// Graphs are immutable after a build, so a cached Load stays valid
// until the corpus is saved over or deleted.
type CachedStore struct {
	inner ports.GraphStore
	ttl   time.Duration

	mu    sync.RWMutex
	items map[string]cachedGraph
}

type cachedGraph struct {
	graph     *aggregates.Graph
	expiresAt time.Time
}

// NewCachedStore wraps a store with an in-memory cache. A
// non-positive ttl returns the inner store untouched.
func NewCachedStore(inner ports.GraphStore, ttl time.Duration) ports.GraphStore {
	if ttl <= 0 {
		return inner
	}
	return &CachedStore{
		inner: inner,
		ttl:   ttl,
		items: make(map[string]cachedGraph),
	}
}

// Save writes through and replaces any cached entry for the corpus
func (c *CachedStore) Save(ctx context.Context, graph *aggregates.Graph) error {
	if err := c.inner.Save(ctx, graph); err != nil {
		return err
	}
	c.mu.Lock()
	c.items[graph.CorpusID()] = cachedGraph{graph: graph, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

// Load returns the cached graph when fresh, falling back to the
// inner store.
func (c *CachedStore) Load(ctx context.Context, corpusID string) (*aggregates.Graph, error) {
	c.mu.RLock()
	item, ok := c.items[corpusID]
	c.mu.RUnlock()
	if ok && time.Now().Before(item.expiresAt) {
		return item.graph, nil
	}

	graph, err := c.inner.Load(ctx, corpusID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.items[corpusID] = cachedGraph{graph: graph, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return graph, nil
}

// Exists checks the cache before asking the inner store
func (c *CachedStore) Exists(ctx context.Context, corpusID string) (bool, error) {
	c.mu.RLock()
	item, ok := c.items[corpusID]
	c.mu.RUnlock()
	if ok && time.Now().Before(item.expiresAt) {
		return true, nil
	}
	return c.inner.Exists(ctx, corpusID)
}

// Delete removes the corpus from the inner store and the cache
func (c *CachedStore) Delete(ctx context.Context, corpusID string) (bool, error) {
	removed, err := c.inner.Delete(ctx, corpusID)
	c.mu.Lock()
	delete(c.items, corpusID)
	c.mu.Unlock()
	return removed, err
}

// ListKeys always hits the inner store; the cache holds no authority
// over the full key set.
func (c *CachedStore) ListKeys(ctx context.Context) ([]string, error) {
	return c.inner.ListKeys(ctx)
}
