package customer

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditline/pkg/platform/circuit"
	"creditline/pkg/platform/sentinel"
)

type recordingObserver struct {
	mu      sync.Mutex
	results []string
}

func (o *recordingObserver) ObserveCacheLookup(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, result)
}

// unreachableRedis points at a port nothing listens on, so every command fails fast.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewCached(t *testing.T) {
	_, err := NewCached(nil, unreachableRedis(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "customer store is required")

	_, err = NewCached(NewInMemory(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis client is required")
}

func TestCachedStoreFallsBackWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	backing := NewInMemory()
	observer := &recordingObserver{}
	breaker := circuit.New("test-cache", circuit.WithFailureThreshold(2))
	clock := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	store, err := NewCached(backing, unreachableRedis(t),
		WithBreaker(breaker),
		WithCacheObserver(observer),
		WithCacheLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithProbeInterval(time.Minute),
	)
	require.NoError(t, err)
	store.now = func() time.Time { return clock }

	c := newCustomer("Ada", 50000)
	require.NoError(t, store.Create(ctx, c), "create succeeds although priming the cache fails")

	found, err := store.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", found.FirstName)
	assert.True(t, breaker.IsOpen(), "two redis failures open the breaker")

	_, err = store.FindByID(ctx, c.ID)
	require.NoError(t, err)

	clock = clock.Add(2 * time.Minute)
	_, err = store.FindByID(ctx, c.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{CacheError, CacheBypassed, CacheError}, observer.results)
}

func TestCachedStorePropagatesNotFound(t *testing.T) {
	store, err := NewCached(NewInMemory(), unreachableRedis(t),
		WithCacheLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	_, err = store.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
