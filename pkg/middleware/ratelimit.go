package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/errors"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/httputil"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/ratelimit"
)

// KeyFunc derives the rate-limit bucket for a request.
type KeyFunc func(r *http.Request) string

// KeyByIP buckets requests by client IP. Forwarding headers are only
// honoured when trustProxy is set.
func KeyByIP(trustProxy bool) KeyFunc {
	return func(r *http.Request) string {
		return "ip:" + clientIP(r, trustProxy)
	}
}

// KeyByUserOrIP buckets authenticated requests by user ID and falls back to
// the client IP. Mount it after Auth.
func KeyByUserOrIP(trustProxy bool) KeyFunc {
	return func(r *http.Request) string {
		if id := UserIDFromContext(r.Context()); id != "" {
			return "user:" + id
		}
		return "ip:" + clientIP(r, trustProxy)
	}
}

// RateLimit enforces limiter per key and sets the X-RateLimit-* headers.
// Over-budget requests get 429 with Retry-After. Limiter failures are
// logged and the request is let through.
func RateLimit(limiter ratelimit.Limiter, key KeyFunc, l *slog.Logger) func(http.Handler) http.Handler {
	policy := limiter.Policy()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			res, err := limiter.Allow(r.Context(), k)
			if err != nil {
				l.WarnContext(r.Context(), "rate limiter unavailable, allowing request",
					slog.String("policy", policy.Name),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(ceilSeconds(res.ResetAfter), 10))

			if !res.Allowed {
				h.Set("Retry-After", strconv.FormatInt(ceilSeconds(res.RetryAfter), 10))
				l.WarnContext(r.Context(), "rate limit exceeded",
					slog.String("policy", policy.Name),
					slog.String("key", k),
					slog.String("path", r.URL.Path),
				)
				httputil.WriteError(w, r, apperrors.TooManyRequests("too many requests, please try again later"), l)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(math.Ceil(d.Seconds()))
}

// clientIP returns the caller's IP. With trustProxy it prefers the first
// valid address in X-Forwarded-For, then X-Real-IP.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
				return ip.String()
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
