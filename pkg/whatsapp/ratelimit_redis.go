package whatsapp

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimitStore persists quota blobs in Redis with a TTL slightly longer
// than the daily session window, so abandoned clients age out on their own.
type RedisLimitStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLimitStore(rdb *redis.Client, ttl time.Duration) *RedisLimitStore {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &RedisLimitStore{rdb: rdb, ttl: ttl}
}

func (s *RedisLimitStore) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *RedisLimitStore) Save(ctx context.Context, key string, data []byte) error {
	return s.rdb.Set(ctx, key, data, s.ttl).Err()
}

func (s *RedisLimitStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
