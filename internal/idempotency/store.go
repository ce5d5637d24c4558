// Package idempotency remembers which order a client-supplied
// Idempotency-Key produced, so a retried checkout is not charged twice.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"cashier/internal/config"

	"github.com/redis/go-redis/v9"
)

// Store locks idempotency keys and maps them to results.
type Store interface {
	// TryLock claims key within scope. It returns false when the key is
	// already claimed.
	TryLock(ctx context.Context, scope, key string) (bool, error)

	// Unlock releases a claim so the key can be retried.
	Unlock(ctx context.Context, scope, key string) error

	// Remember stores the result produced under key.
	Remember(ctx context.Context, scope, key, value string) error

	// Recall returns the result stored under key, if any.
	Recall(ctx context.Context, scope, key string) (string, bool, error)

	// Forget drops both the claim and the stored result for key.
	Forget(ctx context.Context, scope, key string) error
}

// RedisStore is a Store backed by Redis SETNX locks with a TTL.
type RedisStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewRedisStore creates a Redis-backed store. Locks and results expire after ttl.
func NewRedisStore(rdb redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func lockKey(scope, key string) string {
	return "idemp:" + scope + ":" + key
}

func resultKey(scope, key string) string {
	return "idemp:map:" + scope + ":" + key
}

func (s *RedisStore) TryLock(ctx context.Context, scope, key string) (bool, error) {
	return s.rdb.SetNX(ctx, lockKey(scope, key), "1", s.ttl).Result()
}

func (s *RedisStore) Unlock(ctx context.Context, scope, key string) error {
	return s.rdb.Del(ctx, lockKey(scope, key)).Err()
}

func (s *RedisStore) Remember(ctx context.Context, scope, key, value string) error {
	return s.rdb.Set(ctx, resultKey(scope, key), value, s.ttl).Err()
}

func (s *RedisStore) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, resultKey(scope, key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) Forget(ctx context.Context, scope, key string) error {
	return s.rdb.Del(ctx, lockKey(scope, key), resultKey(scope, key)).Err()
}

var _ Store = (*RedisStore)(nil)

// NopStore is used when Redis is disabled: every key is always free.
type NopStore struct{}

func (NopStore) TryLock(context.Context, string, string) (bool, error)        { return true, nil }
func (NopStore) Unlock(context.Context, string, string) error                 { return nil }
func (NopStore) Remember(context.Context, string, string, string) error       { return nil }
func (NopStore) Recall(context.Context, string, string) (string, bool, error) { return "", false, nil }
func (NopStore) Forget(context.Context, string, string) error                 { return nil }

var _ Store = NopStore{}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return rdb, nil
}
