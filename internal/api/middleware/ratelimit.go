package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/tracknourish/tracknourish/internal/api/response"
	"github.com/tracknourish/tracknourish/internal/config"
	"github.com/tracknourish/tracknourish/internal/domain"
)

// Limiter counts one request for (route, key) against a limit and reports
// whether it is still allowed, how many requests remain in the window and
// when the window resets.
type Limiter interface {
	Consume(ctx context.Context, route, key string, limit config.RouteLimit) (bool, int, time.Time, error)
}

// RateLimitMiddleware handles rate limiting
type RateLimitMiddleware struct {
	rateLimiter Limiter
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(rateLimiter Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{rateLimiter: rateLimiter}
}

// clientIP strips the ephemeral port from RemoteAddr so every connection from
// the same host counts against the same key. RealIP already rewrites
// RemoteAddr to a bare IP behind a proxy; that value passes through as is.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Limit applies a per-route rate limit keyed by client IP. The routes here
// are pre-auth, so the IP is the only stable identity available.
func (m *RateLimitMiddleware) Limit(route string, limit config.RouteLimit) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, resetTime, err := m.rateLimiter.Consume(r.Context(), route, clientIP(r), limit)
			if err != nil {
				// If rate limiter fails, allow the request rather than lock everyone out
				next.ServeHTTP(w, r)
				return
			}

			// Set rate limit headers
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", resetTime.Format("2006-01-02T15:04:05Z"))

			if !allowed {
				response.TooManyRequests(w, domain.ErrTooManyRequests.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
