package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r := NewRedis(RedisOptions{Addr: mr.Addr(), Timeout: time.Second, Cooldown: time.Hour})
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestRedis_PutGet(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)
	require.NoError(t, r.Ping(ctx))

	_, ok := r.Get(ctx, "k")
	assert.False(t, ok)

	r.Put(ctx, "k", []byte("v"))
	// Puts are asynchronous.
	assert.Eventually(t, func() bool { return mr.Exists("transit:k") }, time.Second, 5*time.Millisecond)

	got, ok := r.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestRedis_TTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	r := NewRedis(RedisOptions{Addr: mr.Addr(), Timeout: time.Second, TTL: time.Minute})
	defer r.Close()

	r.Put(ctx, "k", []byte("v"))
	assert.Eventually(t, func() bool { return mr.Exists("transit:k") }, time.Second, 5*time.Millisecond)
	assert.Equal(t, time.Minute, mr.TTL("transit:k"))

	mr.FastForward(2 * time.Minute)
	_, ok := r.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedis_FlushOnlyOwnPrefix(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	for i := 0; i < 1200; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("transit:k%d", i), "v"))
	}
	require.NoError(t, mr.Set("other:keep", "v"))

	r.Flush(ctx)

	assert.Equal(t, []string{"other:keep"}, mr.Keys())
	assert.False(t, r.down())
}

func TestRedis_DegradesWhenUnavailable(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)
	require.NoError(t, mr.Set("transit:k", "v"))

	mr.Close()

	start := time.Now()
	_, ok := r.Get(ctx, "k")
	assert.False(t, ok)
	assert.True(t, r.down())

	// While cooling down reads and writes skip the network.
	r.Put(ctx, "k", []byte("v"))
	_, ok = r.Get(ctx, "k")
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRedis_UnreachableAddress(t *testing.T) {
	r := NewRedis(RedisOptions{Addr: "127.0.0.1:1", Timeout: 50 * time.Millisecond})
	defer r.Close()

	assert.Error(t, r.Ping(context.Background()))
	_, ok := r.Get(context.Background(), "k")
	assert.False(t, ok)
}
