// Package middleware adapts per-key rate limiting to net/http, translating
// rejections into 429 responses with a Retry-After header.
package middleware

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/serroba/gcra"
	"github.com/serroba/gcra/registry"
)

// KeyFunc extracts a rate limit key from an HTTP request.
// Common implementations include extracting client IP, API key, or user ID.
type KeyFunc func(r *http.Request) registry.Identifier

// CostFunc reports how many quota units a request consumes.
// Bulk endpoints can charge more than one unit per request.
type CostFunc func(r *http.Request) uint32

// IPKeyFunc extracts the client IP address from the request.
// It checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func IPKeyFunc(r *http.Request) registry.Identifier {
	// Check X-Forwarded-For first (may contain multiple IPs)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take the first IP (original client)
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return registry.Identifier(xff[:i])
			}
		}

		return registry.Identifier(xff)
	}

	// Check X-Real-IP
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return registry.Identifier(xri)
	}

	// Fall back to RemoteAddr
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return registry.Identifier(r.RemoteAddr)
	}

	return registry.Identifier(host)
}

// HeaderKeyFunc returns a KeyFunc that extracts the rate limit key from a header.
// Useful for API key or token-based rate limiting.
func HeaderKeyFunc(header string) KeyFunc {
	return func(r *http.Request) registry.Identifier {
		return registry.Identifier(r.Header.Get(header))
	}
}

// RateLimiter returns HTTP middleware that rate limits requests.
// It uses the provided registry to track limits per key extracted by
// keyFunc, charging costFunc units per request. A nil keyFunc defaults to
// IPKeyFunc and a nil costFunc charges one unit per request.
//
// Requests rejected by the limiter receive 429 Too Many Requests with a
// Retry-After header rounded up to whole seconds. Requests whose cost can
// never be admitted under the configured quota receive 400 Bad Request.
func RateLimiter(reg *registry.Registry, keyFunc KeyFunc, costFunc CostFunc) func(http.Handler) http.Handler {
	if keyFunc == nil {
		keyFunc = IPKeyFunc
	}

	if costFunc == nil {
		costFunc = func(*http.Request) uint32 { return 1 }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := reg.AllowN(keyFunc(r), costFunc(r))
			if err == nil {
				next.ServeHTTP(w, r)

				return
			}

			if errors.Is(err, gcra.ErrCostExceedsCapacity) || errors.Is(err, gcra.ErrInvalidCost) {
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

				return
			}

			if d, ok := gcra.RetryAfter(err); ok {
				w.Header().Set("Retry-After", retryAfterSeconds(d))
			}

			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		})
	}
}

// retryAfterSeconds rounds the wait up to whole seconds, with a floor of 1
// so clients never retry immediately.
func retryAfterSeconds(d time.Duration) string {
	secs := int64((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}

	return strconv.FormatInt(secs, 10)
}
