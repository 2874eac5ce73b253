package session

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps session data in Redis, sharing state across processes.
// Lifetimes map directly onto Redis key expiry.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "redis get")
	}
	return value, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return errors.Wrap(s.client.Set(ctx, key, value, 0).Err(), "redis set")
}

// Expire implements Store.
func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return errors.Wrap(s.client.Expire(ctx, key, ttl).Err(), "redis expire")
}

// Remove implements Store.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	return errors.Wrap(s.client.Del(ctx, key).Err(), "redis del")
}
