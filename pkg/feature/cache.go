package feature

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Cache is the process-wide snapshot of all flag records. It is rebuilt
// wholesale from the Store on every refresh and patched in place by local
// writes. Readers never observe a partially rebuilt snapshot: Refresh
// assembles a new map off to the side and swaps the reference under the
// write lock.
//
// The cache reflects the most recent successful refresh or the most recent
// local write, whichever is later. It does not see writes made by other
// processes between refresh ticks; those reconcile on the next tick.
type Cache struct {
	store Store
	log   *slog.Logger

	mu    sync.RWMutex
	flags map[string]*FeatureFlag

	// onReplace fires after every successful wholesale refresh, before
	// Refresh returns. The service hooks subscription re-evaluation here.
	onReplace func()
}

// NewCache creates an empty cache over the given store. Call Refresh (or
// Run) to populate it.
func NewCache(store Store, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{
		store: store,
		log:   log,
		flags: make(map[string]*FeatureFlag),
	}
}

// OnReplace registers the hook invoked after each wholesale refresh.
func (c *Cache) OnReplace(fn func()) {
	c.mu.Lock()
	c.onReplace = fn
	c.mu.Unlock()
}

// Refresh fetches the complete flag set and atomically replaces the prior
// snapshot, dropping stale entries for deleted flags. A fetch failure
// leaves the existing snapshot untouched; the next tick retries.
func (c *Cache) Refresh(ctx context.Context) error {
	flags, err := c.store.FindAll(ctx)
	if err != nil {
		c.log.ErrorContext(ctx, "flag cache refresh failed", slog.Any("error", err))
		return err
	}

	next := make(map[string]*FeatureFlag, len(flags))
	for _, flag := range flags {
		if flag.DeletedAt != nil {
			continue
		}
		next[flag.Key] = flag
	}

	c.mu.Lock()
	c.flags = next
	hook := c.onReplace
	c.mu.Unlock()

	c.log.DebugContext(ctx, "flag cache refreshed", slog.Int("flags", len(next)))
	if hook != nil {
		hook()
	}
	return nil
}

// Get returns the cached record for a key. Callers falling through a miss
// should read the store directly and Put the result back.
func (c *Cache) Get(key string) (*FeatureFlag, bool) {
	c.mu.RLock()
	flag, ok := c.flags[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return flag.Clone(), true
}

// Put applies a freshly committed write immediately, without waiting for
// the next scheduled refresh.
func (c *Cache) Put(flag *FeatureFlag) {
	if flag == nil {
		return
	}
	c.mu.Lock()
	c.flags[flag.Key] = flag.Clone()
	c.mu.Unlock()
}

// Remove drops a key after deletion.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	delete(c.flags, key)
	c.mu.Unlock()
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.flags)
}

// Keys returns the cached flag keys.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.flags))
	for k := range c.flags {
		keys = append(keys, k)
	}
	return keys
}

// Run refreshes the cache on the given interval until the context is
// cancelled. Refresh errors are logged and retried on the next tick.
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.Refresh(ctx)
		}
	}
}
