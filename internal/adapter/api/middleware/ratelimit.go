package middleware

import (
	"net/http"

	"github.com/user/webstat/internal/adapter/metrics"
	"golang.org/x/time/rate"
)

// RateLimit guards the open collector endpoint with a single global token
// bucket. Per-tenant limiting is deliberately out of scope.
func RateLimit(limiter *rate.Limiter, m *metrics.CollectorMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				if m != nil {
					m.RateLimitedTotal.Inc()
				}
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
