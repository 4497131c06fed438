package httpserver

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	rateLimitWindow      = time.Minute
	rateLimitMaxRequests = 100
	rateLimitKeyPrefix   = "ratelimit:"
)

// RateLimitMiddleware applies a fixed-window per-IP limit backed by Redis.
// Redis failures let the request through.
func RateLimitMiddleware(rdb *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			key := rateLimitKeyPrefix + ip

			count, err := rdb.Incr(r.Context(), key).Result()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				rdb.Expire(r.Context(), key, rateLimitWindow)
			}

			if count > rateLimitMaxRequests {
				w.Header().Set("Retry-After", strconv.Itoa(int(rateLimitWindow.Seconds())))
				writeJSON(w, http.StatusTooManyRequests, map[string]string{
					"message": "too many requests, slow down",
				})
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rateLimitMaxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(rateLimitMaxRequests-int(count)))
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP trusts middleware.RealIP to have rewritten RemoteAddr from the
// forwarding headers; this only strips the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
