package dataset

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"

	"charselect/pkg/models"
)

// Entry is the indexed form of one dataset.
type Entry struct {
	Index *Index
	List  []string
}

// EmptyEntry is what a failed or rejected dataset resolves to.
func EmptyEntry() Entry {
	return Entry{Index: EmptyIndex(), List: []string{models.NoDataSentinel}}
}

// Cache keeps one Entry per normalized dataset name for the life of the
// process. Concurrent misses for the same name share a single load.
type Cache struct {
	loader Loader
	logger *log.Logger

	mu      sync.RWMutex
	entries map[string]Entry
	group   singleflight.Group
}

func NewCache(loader Loader, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.Default()
	}
	return &Cache{
		loader:  loader,
		logger:  logger,
		entries: make(map[string]Entry),
	}
}

// GetOrLoad returns the cached entry for name, loading it on first use.
// Load failures are stored as the empty entry so a bad name is fetched once.
func (c *Cache) GetOrLoad(ctx context.Context, name string) Entry {
	key, err := NormalizeName(name)
	if err != nil {
		c.logger.Printf("[dataset] rejected name %q", name)
		return EmptyEntry()
	}

	if e, ok := c.lookup(key); ok {
		return e
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		if e, ok := c.lookup(key); ok {
			return e, nil
		}
		e, ok := c.fill(ctx, key)
		if ok {
			c.mu.Lock()
			c.entries[key] = e
			c.mu.Unlock()
		}
		return e, nil
	})
	return v.(Entry)
}

// fill loads and indexes key. The returned flag is false when the caller's
// context ended, in which case the fallback must not be cached.
func (c *Cache) fill(ctx context.Context, key string) (Entry, bool) {
	records, err := c.loader.Load(ctx, key)
	if err != nil {
		c.logger.Printf("[dataset] load failed, using empty dataset: %v", err)
		return EmptyEntry(), ctx.Err() == nil
	}
	idx, list := build(records, c.logger)
	c.logger.Printf("[dataset] loaded %s (%d characters)", key, len(records))
	return Entry{Index: idx, List: list}, true
}

func (c *Cache) lookup(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
