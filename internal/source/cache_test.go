package source

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	_, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "a", []byte("one")))
	require.NoError(t, c.Set(ctx, "b", []byte("two")))

	body, ok, _ := c.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, []byte("one"), body)

	c.Evict("a")
	_, ok, _ = c.Get(ctx, "a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Evict("nonexistent")
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_Limit(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10)

	require.NoError(t, c.Set(ctx, "big", make([]byte, 11)))
	assert.Equal(t, 0, c.Len(), "bodies over the limit are not cached")

	require.NoError(t, c.Set(ctx, "a", make([]byte, 6)))
	require.NoError(t, c.Set(ctx, "a", make([]byte, 6)))
	assert.Equal(t, 1, c.Len(), "replacing an entry does not count twice")

	require.NoError(t, c.Set(ctx, "b", make([]byte, 6)))
	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "b")
	assert.True(t, ok)
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%3)
			for j := 0; j < 10; j++ {
				c.Set(ctx, key, []byte(key))
				if body, ok, _ := c.Get(ctx, key); ok {
					assert.Equal(t, key, string(body))
				}
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 3, c.Len())
}

// fakeRedis implements the subset of redis.Cmdable the cache uses.
type fakeRedis struct {
	redis.Cmdable

	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	c := NewRedisCache(fake, "", time.Hour)

	require.NoError(t, c.Ping(ctx))

	_, ok, err := c.Get(ctx, "https://example.com/a.png")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "https://example.com/a.png", []byte{1, 2, 3}))

	body, ok, err := c.Get(ctx, "https://example.com/a.png")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, body)

	key := c.Key("https://example.com/a.png")
	assert.Contains(t, key, "imagemarker:fetch:")
	assert.Equal(t, time.Hour, fake.ttls[key])
	assert.NotEqual(t, key, c.Key("https://example.com/b.png"))
}
