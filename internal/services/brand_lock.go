package services

import (
	"context"
	"fmt"
	"time"

	"nightmarket/internal/status"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still holds our token, so a
// holder whose TTL expired cannot release someone else's lock.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

type RedisBrandLocker struct {
	redis    *redis.Client
	ttl      time.Duration
	wait     time.Duration
	interval time.Duration
	newToken func() string
}

func NewRedisBrandLocker(client *redis.Client, ttl time.Duration) *RedisBrandLocker {
	return &RedisBrandLocker{
		redis:    client,
		ttl:      ttl,
		wait:     3 * time.Second,
		interval: 50 * time.Millisecond,
		newToken: uuid.NewString,
	}
}

func brandLockKey(brandName string) string {
	return fmt.Sprintf("lock:vendor:%s", brandName)
}

func (l *RedisBrandLocker) Lock(ctx context.Context, brandName string) (func(context.Context) error, error) {
	key := brandLockKey(brandName)
	token := l.newToken()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.redis.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			break
		}
		if !time.Now().Before(deadline) {
			return nil, status.ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.interval):
		}
	}

	release := func(ctx context.Context) error {
		return l.redis.Eval(ctx, releaseScript, []string{key}, token).Err()
	}
	return release, nil
}
