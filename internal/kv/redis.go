package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iksnae/docchat/internal"
	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 5 * time.Second

// RedisStore persists values in Redis, optionally under a key namespace
type RedisStore struct {
	rdb       *redis.Client
	namespace string
}

// OpenRedis connects to addr, which may be "host:port" or a redis:// URL
func OpenRedis(addr string) (*RedisStore, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	opt, err := redis.ParseURL(addr)
	if err != nil {
		opt = &redis.Options{Addr: addr}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisStore(rdb, "docchat:"), nil
}

// NewRedisStore wraps an existing client. Keys are stored as namespace+key.
func NewRedisStore(rdb *redis.Client, namespace string) *RedisStore {
	return &RedisStore{rdb: rdb, namespace: namespace}
}

func (r *RedisStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), redisOpTimeout)
}

// Get returns the value stored under key
func (r *RedisStore) Get(key string) (string, bool, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	value, err := r.rdb.Get(ctx, r.namespace+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get failed: %w", err)
	}
	return value, true, nil
}

// Set stores value under key
func (r *RedisStore) Set(key, value string) error {
	ctx, cancel := r.ctx()
	defer cancel()

	if err := r.rdb.Set(ctx, r.namespace+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// SetMany stores all pairs in a MULTI/EXEC transaction
func (r *RedisStore) SetMany(pairs []internal.KeyValuePair) error {
	ctx, cancel := r.ctx()
	defer cancel()

	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, pair := range pairs {
			pipe.Set(ctx, r.namespace+pair.Key, pair.Value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis transaction failed: %w", err)
	}
	return nil
}

// Remove deletes key
func (r *RedisStore) Remove(key string) error {
	ctx, cancel := r.ctx()
	defer cancel()

	if err := r.rdb.Del(ctx, r.namespace+key).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

// Keys returns all keys starting with prefix, sorted, without the namespace
func (r *RedisStore) Keys(prefix string) ([]string, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	var keys []string
	iter := r.rdb.Scan(ctx, 0, r.namespace+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := strings.TrimPrefix(iter.Val(), r.namespace)
		// SCAN patterns treat some characters as globs; re-check the literal prefix
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan failed: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close closes the client
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
