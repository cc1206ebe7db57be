package ratelimit

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	hasher := sha256.New()
	hasher.Write([]byte(key))
	hashedKey := fmt.Sprintf("rl:%x", hasher.Sum(nil))

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, hashedKey)
	pipe.ExpireNX(ctx, hashedKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		// Fail open on backend error
		return true, nil
	}

	return incr.Val() <= int64(limit), nil
}

// CleanupExpired is a no-op; Redis expires counters itself.
func (l *RedisLimiter) CleanupExpired(ctx context.Context) (int64, error) {
	return 0, nil
}
