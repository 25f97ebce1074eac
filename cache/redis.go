package cache

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const flushBatch = 500

// RedisOptions configures the Redis backing store.
type RedisOptions struct {
	Addr      string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
	// Timeout bounds every call; a slower server is treated as down.
	Timeout time.Duration
	// Cooldown is how long the cache stays bypassed after a failure.
	Cooldown time.Duration
	TTL      time.Duration
}

// Redis is a best-effort shared cache. Reads wait at most Timeout, writes
// run in the background, and any error disables the cache for Cooldown.
type Redis struct {
	client    *redis.Client
	opts      RedisOptions
	downUntil atomic.Int64
}

func NewRedis(opts RedisOptions) *Redis {
	if opts.Timeout <= 0 {
		opts.Timeout = 100 * time.Millisecond
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 30 * time.Second
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "transit:"
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.Username,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.Timeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
		MaxRetries:   -1,
	})
	return &Redis{client: client, opts: opts}
}

// Ping checks connectivity once; a failure only starts the cooldown.
func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()
	err := r.client.Ping(ctx).Err()
	if err != nil {
		r.markDown("ping", err)
	}
	return err
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	if r.down() {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()
	b, err := r.client.Get(ctx, r.opts.KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		r.markDown("get", err)
		return nil, false
	}
	return b, true
}

func (r *Redis) Put(ctx context.Context, key string, value []byte) {
	if r.down() {
		return
	}
	b := make([]byte, len(value))
	copy(b, value)
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.Timeout)
		defer cancel()
		if err := r.client.Set(ctx, r.opts.KeyPrefix+key, b, r.opts.TTL).Err(); err != nil {
			r.markDown("set", err)
		}
	}()
}

// Flush deletes the keys under KeyPrefix only, leaving the rest of the
// database alone. Keys are collected before any delete so the scan cursor
// never runs over a shrinking keyspace.
func (r *Redis) Flush(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*r.opts.Timeout)
	defer cancel()
	var keys []string
	iter := r.client.Scan(ctx, 0, r.opts.KeyPrefix+"*", flushBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.markDown("flush", err)
		return
	}
	for start := 0; start < len(keys); start += flushBatch {
		end := min(start+flushBatch, len(keys))
		if err := r.client.Del(ctx, keys[start:end]...).Err(); err != nil {
			r.markDown("flush", err)
			return
		}
	}
}

func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) down() bool {
	return time.Now().UnixNano() < r.downUntil.Load()
}

func (r *Redis) markDown(op string, err error) {
	until := time.Now().Add(r.opts.Cooldown).UnixNano()
	if prev := r.downUntil.Swap(until); time.Now().UnixNano() >= prev {
		log.Printf("cache: redis %s failed, bypassing for %s: %v", op, r.opts.Cooldown, err)
	}
}
