package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStore_CheckAndSetExisting(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, store.prefix+"key", "cached", time.Minute).Err())

	exists, resp, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "cached", string(resp))
}

func TestIdempotencyStore_CheckAndSetLocksNewKey(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, resp, err := store.CheckAndSet(ctx, "pending", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Nil(t, resp)

	val, err := client.Get(ctx, store.prefix+"pending").Result()
	require.NoError(t, err)
	assert.Equal(t, pendingMarker, val)
	assert.Equal(t, time.Minute, mr.TTL(store.prefix+"pending"))

	exists, resp, err = store.CheckAndSet(ctx, "pending", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, pendingMarker, string(resp))
}

func TestIdempotencyStore_UpdateAndRelease(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	_, _, err := store.CheckAndSet(ctx, "k", nil, time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, "k", []byte(`{"ok":true}`), time.Hour))

	exists, resp, err := store.CheckAndSet(ctx, "k", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.JSONEq(t, `{"ok":true}`, string(resp))

	require.NoError(t, store.Release(ctx, "k"))
	assert.False(t, mr.Exists(store.prefix+"k"))

	exists, _, err = store.CheckAndSet(ctx, "k", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIdempotencyStore_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			exists, _, err := store.CheckAndSet(ctx, "race", nil, time.Minute)
			if err == nil && !exists {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestIdempotencyStore_Expiry(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	_, _, err := store.CheckAndSet(ctx, "short", nil, time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	exists, _, err := store.CheckAndSet(ctx, "short", nil, time.Second)
	require.NoError(t, err)
	assert.False(t, exists)
}
