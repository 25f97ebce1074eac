package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process cache. Entries never expire unless a TTL is given,
// since the dataset only changes on an explicit reload, which flushes.
type Memory struct {
	c *gocache.Cache
}

// NewMemory builds an in-process cache. ttl <= 0 means no expiry.
func NewMemory(ttl time.Duration) *Memory {
	exp := gocache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		exp = ttl
		cleanup = 2 * ttl
	}
	return &Memory{c: gocache.New(exp, cleanup)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, true
}

func (m *Memory) Put(_ context.Context, key string, value []byte) {
	b := make([]byte, len(value))
	copy(b, value)
	m.c.SetDefault(key, b)
}

func (m *Memory) Flush(context.Context) { m.c.Flush() }

// Len reports the number of stored entries.
func (m *Memory) Len() int { return m.c.ItemCount() }
