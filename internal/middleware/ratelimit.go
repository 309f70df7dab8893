package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/AnshRaj112/hostel-survival-kit/pkg/clientip"
)

// RateLimitKeyPrefix is the Redis key prefix for write rate limiting
const RateLimitKeyPrefix = "hsk:ratelimit:"

// WriteRateLimit caps state-changing requests per IP in fixed windows kept in
// Redis, so the limit holds across instances. Reads pass through, and so does
// everything when Redis is unavailable.
func WriteRateLimit(client *redis.Client, limit int, window time.Duration, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if client == nil || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()

			slot := time.Now().Truncate(window).Unix()
			key := RateLimitKeyPrefix + clientip.RealClientIP(r) + ":" + strconv.FormatInt(slot, 10)

			pipe := client.TxPipeline()
			incr := pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, window)
			if _, err := pipe.Exec(ctx); err != nil {
				// fail open
				log.WithError(err).Warn("rate limit check failed")
				next.ServeHTTP(w, r)
				return
			}

			count := int(incr.Val())
			remaining := limit - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if count > limit {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
