package embed

import (
	"container/list"
	"context"
	"sync"
)

type cacheEntry struct {
	key       string
	embedding Embedding
}

// CachedAdapter wraps an adapter with an LRU cache keyed by model and text.
type CachedAdapter struct {
	adapter Adapter
	entries map[string]*list.Element
	lruList *list.List
	maxSize int
	mu      sync.Mutex
}

// NewCachedAdapter keeps at most maxSize embeddings (default 1000).
func NewCachedAdapter(adapter Adapter, maxSize int) *CachedAdapter {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &CachedAdapter{
		adapter: adapter,
		entries: make(map[string]*list.Element),
		lruList: list.New(),
		maxSize: maxSize,
	}
}

func cacheKey(req Request) string {
	return req.Model + "\x00" + req.Text
}

func (c *CachedAdapter) Embed(ctx context.Context, req Request) (Embedding, error) {
	key := cacheKey(req)

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		c.lruList.MoveToFront(el)
		e := el.Value.(*cacheEntry).embedding
		c.mu.Unlock()
		return copyEmbedding(e), nil
	}
	c.mu.Unlock()

	e, err := c.adapter.Embed(ctx, req)
	if err != nil {
		return Embedding{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.lruList.MoveToFront(el)
		el.Value.(*cacheEntry).embedding = copyEmbedding(e)
		return e, nil
	}
	if c.lruList.Len() >= c.maxSize {
		if oldest := c.lruList.Back(); oldest != nil {
			delete(c.entries, oldest.Value.(*cacheEntry).key)
			c.lruList.Remove(oldest)
		}
	}
	c.entries[key] = c.lruList.PushFront(&cacheEntry{key: key, embedding: copyEmbedding(e)})

	return e, nil
}

func (c *CachedAdapter) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.lruList.Init()
}

func (c *CachedAdapter) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lruList.Len()
}

func (c *CachedAdapter) MaxSize() int {
	return c.maxSize
}

func copyEmbedding(e Embedding) Embedding {
	v := make([]float32, len(e.Vector))
	copy(v, e.Vector)
	e.Vector = v
	return e
}

var _ Adapter = (*CachedAdapter)(nil)
