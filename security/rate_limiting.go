package security

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter throttles admin login attempts per client IP. Allow reports
// whether the attempt may proceed and how many attempts remain in the
// window; Reset clears the counter after a successful login.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)
	Reset(ctx context.Context, key string) error
}

// RedisLimiter counts attempts in Redis with a TTL window, so the
// limit holds across instances and restarts.
type RedisLimiter struct {
	redis  *redis.Client
	max    int
	window time.Duration
}

func NewRedisLimiter(redisClient *redis.Client, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{redis: redisClient, max: max, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	k := fmt.Sprintf("login:%s", key)

	count, err := l.redis.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit: %w", err)
	}
	if count == 1 {
		l.redis.Expire(ctx, k, l.window)
	}

	if count > int64(l.max) {
		return false, 0, nil
	}
	return true, l.max - int(count), nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.redis.Del(ctx, fmt.Sprintf("login:%s", key)).Err()
}

// MemoryLimiter is the single-instance fallback when no Redis is
// configured: a sliding window of attempt timestamps per key.
type MemoryLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.attempts[key][:0]
	for _, t := range l.attempts[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.max {
		l.attempts[key] = kept
		return false, 0, nil
	}

	kept = append(kept, now)
	l.attempts[key] = kept
	return true, l.max - len(kept), nil
}

func (l *MemoryLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
	return nil
}
