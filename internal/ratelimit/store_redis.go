package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "rate_limit:"

// RedisStore keeps one sorted set per key, scored by request time in
// microseconds. Each set expires one window after its latest hit.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(key Key) string {
	return redisKeyPrefix + key.Endpoint + ":" + key.Identifier
}

func (s *RedisStore) Count(ctx context.Context, key Key, since time.Time) (int64, error) {
	count, err := s.client.ZCount(ctx, redisKey(key), strconv.FormatInt(since.UnixMicro(), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count rate limit hits: %w", err)
	}
	return count, nil
}

func (s *RedisStore) Add(ctx context.Context, key Key, at time.Time, window time.Duration) error {
	k := redisKey(key)

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, k, redis.Z{Score: float64(at.UnixMicro()), Member: uuid.NewString()})
	pipe.PExpire(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record rate limit hit: %w", err)
	}
	return nil
}

func (s *RedisStore) Prune(ctx context.Context, key Key, before time.Time) (int64, error) {
	removed, err := s.client.ZRemRangeByScore(ctx, redisKey(key), "-inf", "("+strconv.FormatInt(before.UnixMicro(), 10)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to prune rate limit hits: %w", err)
	}
	return removed, nil
}

// PruneAll is a no-op: Redis expires idle keys on its own.
func (s *RedisStore) PruneAll(context.Context, time.Time) (int64, error) {
	return 0, nil
}
