package sequence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jayasurya0007/trades-backend/internal/domain"
)

// RedisSequence keeps the counter in a Redis key advanced with INCR, which
// is atomic across concurrent callers and processes. A fresh key increments
// from 0 to 1 on the first mint.
type RedisSequence struct {
	rdb *redis.Client
	key string
}

// RedisConfig holds connection parameters for the redis sequence backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// NewRedisSequence connects to Redis, pings it to verify connectivity, and
// returns the sequence.
func NewRedisSequence(ctx context.Context, cfg RedisConfig) (*RedisSequence, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("sequence: ping redis: %w: %v", domain.ErrStoreUnavailable, err)
	}

	return &RedisSequence{rdb: rdb, key: cfg.Key}, nil
}

// Next atomically increments the counter key and returns the new value.
func (s *RedisSequence) Next(ctx context.Context) (int64, error) {
	value, err := s.rdb.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("sequence: incr %s: %w: %v", s.key, domain.ErrStoreUnavailable, err)
	}
	return value, nil
}

// Close closes the Redis connection.
func (s *RedisSequence) Close() error {
	return s.rdb.Close()
}

// Compile-time interface check.
var _ domain.Sequence = (*RedisSequence)(nil)
