// internal/api/middleware/ratelimit.go
package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"networth-ledger/internal/ratelimit"
)

// RateLimitByIP throttles requests per client IP in fixed windows and answers 429 once
// limit is exceeded. A nil limiter or non-positive limit disables it. metrics may be nil.
func RateLimitByIP(limiter ratelimit.Limiter, limit int, window time.Duration, metrics *Metrics, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "rate_limiter").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			key := clientIPKey(r)
			decision := limiter.Allow(key, limit, window)
			applyRateHeaders(w, limit, decision)
			if !decision.Allowed {
				metrics.recordRateLimitHit(r.URL.Path)
				logger.Warn().Str("key", key).Str("path", r.URL.Path).Int("count", decision.Count).Msg("rate limit exceeded")
				writeFailure(w, http.StatusTooManyRequests, "Too many attempts, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func applyRateHeaders(w http.ResponseWriter, limit int, decision ratelimit.Decision) {
	headers := w.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining(limit)))
	if !decision.WindowEnd.IsZero() {
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(decision.WindowEnd.Unix(), 10))
	}
}

// clientIPKey keys on the remote address. TrustedRealIP rewrites it only for requests
// relayed by a trusted proxy.
func clientIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		host = "unknown"
	}
	return "ip:" + host
}
