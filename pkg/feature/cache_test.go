package feature_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxori-systems/fluxori-sub012/pkg/feature"
)

// failingStore wraps a Store and fails FindAll on demand.
type failingStore struct {
	feature.Store
	fail bool
}

func (s *failingStore) FindAll(ctx context.Context) ([]*feature.FeatureFlag, error) {
	if s.fail {
		return nil, errors.New("backend down")
	}
	return s.Store.FindAll(ctx)
}

func TestCache_Refresh(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := feature.NewMemoryStore(newFlag("a"), newFlag("b"))
	require.NoError(t, err)

	cache := feature.NewCache(store, nil)
	assert.Equal(t, 0, cache.Len())

	require.NoError(t, cache.Refresh(ctx))
	assert.Equal(t, 2, cache.Len())
	assert.ElementsMatch(t, []string{"a", "b"}, cache.Keys())

	_, ok := cache.Get("a")
	assert.True(t, ok)
}

func TestCache_RefreshDropsRemovedFlags(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	flag := newFlag("short-lived")
	store, err := feature.NewMemoryStore(flag, newFlag("survivor"))
	require.NoError(t, err)

	cache := feature.NewCache(store, nil)
	require.NoError(t, cache.Refresh(ctx))
	assert.Equal(t, 2, cache.Len())

	require.NoError(t, store.Delete(ctx, flag.ID))
	require.NoError(t, cache.Refresh(ctx))

	assert.Equal(t, 1, cache.Len())
	_, ok := cache.Get("short-lived")
	assert.False(t, ok)
}

func TestCache_RefreshSkipsSoftDeleted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	deleted := newFlag("soft-deleted")
	now := time.Now().UTC()
	deleted.DeletedAt = &now

	store, err := feature.NewMemoryStore(deleted, newFlag("live"))
	require.NoError(t, err)

	cache := feature.NewCache(store, nil)
	require.NoError(t, cache.Refresh(ctx))

	assert.Equal(t, 1, cache.Len())
	_, ok := cache.Get("soft-deleted")
	assert.False(t, ok)
}

func TestCache_RefreshFailureKeepsSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner, err := feature.NewMemoryStore(newFlag("steady"))
	require.NoError(t, err)
	store := &failingStore{Store: inner}

	cache := feature.NewCache(store, nil)
	require.NoError(t, cache.Refresh(ctx))
	assert.Equal(t, 1, cache.Len())

	store.fail = true
	require.Error(t, cache.Refresh(ctx))

	// The previous snapshot must survive the failed refresh.
	got, ok := cache.Get("steady")
	assert.True(t, ok)
	assert.Equal(t, "steady", got.Key)
}

func TestCache_OnReplaceHook(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner, err := feature.NewMemoryStore(newFlag("hooked"))
	require.NoError(t, err)
	store := &failingStore{Store: inner}

	cache := feature.NewCache(store, nil)

	calls := 0
	cache.OnReplace(func() { calls++ })

	require.NoError(t, cache.Refresh(ctx))
	assert.Equal(t, 1, calls)

	store.fail = true
	_ = cache.Refresh(ctx)
	assert.Equal(t, 1, calls, "failed refresh must not fire the hook")
}

func TestCache_PutGetRemove(t *testing.T) {
	t.Parallel()

	store, err := feature.NewMemoryStore()
	require.NoError(t, err)
	cache := feature.NewCache(store, nil)

	flag := newFlag("local-write")
	cache.Put(flag)

	got, ok := cache.Get("local-write")
	require.True(t, ok)
	assert.Equal(t, flag.ID, got.ID)

	// Cached records are isolated from caller mutation.
	got.Name = "mutated"
	again, _ := cache.Get("local-write")
	assert.Equal(t, "local-write", again.Name)

	cache.Remove("local-write")
	_, ok = cache.Get("local-write")
	assert.False(t, ok)

	cache.Put(nil)
	assert.Equal(t, 0, cache.Len())

	_, ok = cache.Get("never-seen")
	assert.False(t, ok)
}

func TestCache_RunRefreshesOnInterval(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := feature.NewMemoryStore()
	require.NoError(t, err)
	cache := feature.NewCache(store, nil)

	done := make(chan struct{})
	go func() {
		cache.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.NoError(t, store.Create(ctx, newFlag("late-arrival")))

	assert.Eventually(t, func() bool {
		_, ok := cache.Get("late-arrival")
		return ok
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := feature.NewMemoryStore(newFlag("contended"))
	require.NoError(t, err)
	cache := feature.NewCache(store, nil)
	require.NoError(t, cache.Refresh(ctx))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for n := 0; n < 100; n++ {
			_ = cache.Refresh(ctx)
			cache.Put(&feature.FeatureFlag{ID: uuid.New(), Key: "contended", Name: "c", Type: feature.TypeBoolean})
		}
	}()

	for n := 0; n < 100; n++ {
		cache.Get("contended")
		cache.Len()
		cache.Keys()
	}
	<-done
}
