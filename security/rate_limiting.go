package security

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"nightmarket/monitoring"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

// incrScript counts a hit and starts the window on the first one. Both run
// in one step so a counter can never be left without a TTL.
const incrScript = `local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n`

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// Allow counts one request for id in a fixed window. Redis errors are
// returned with allowed=true so an outage does not lock out the gate.
func (r *RateLimiter) Allow(ctx context.Context, scope, id string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", scope, id)

	count, err := r.redis.Eval(ctx, incrScript, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		return true, err
	}
	return count <= int64(limit), nil
}

// Limit returns a route middleware allowing limit requests per window.
// Authenticated requests are counted per auth record, others per client IP.
func (r *RateLimiter) Limit(scope string, limit int, window time.Duration) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.RealIP()
		if e.Auth != nil {
			id = "auth:" + e.Auth.Id
		}

		ok, err := r.Allow(e.Request.Context(), scope, id, limit, window)
		if err != nil {
			slog.Warn("Rate limiter unavailable", "scope", scope, "error", err)
		}
		if !ok {
			monitoring.TrackRateLimited(scope)
			return apis.NewTooManyRequestsError("Rate limit exceeded. Please try again later.", nil)
		}
		return e.Next()
	}
}

// BlockBots rejects obvious crawlers from public form endpoints.
func BlockBots(e *core.RequestEvent) error {
	if isSuspiciousUserAgent(e.Request.Header.Get("User-Agent")) {
		return apis.NewForbiddenError("Access denied", nil)
	}
	return e.Next()
}

func isSuspiciousUserAgent(ua string) bool {
	suspicious := []string{"bot", "crawler", "spider", "scraper"}
	ua = strings.ToLower(ua)
	for _, pattern := range suspicious {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	return false
}
