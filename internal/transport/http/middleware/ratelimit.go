package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"

	"workforce/internal/transport/http/api"
)

// RateLimit caps requests per window, keyed by the authenticated user and
// falling back to the client IP.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(actorOrIPKey),
		httprate.WithLimitHandler(limitExceeded),
	)
}

// SensitiveMutationRateLimit applies a tighter per-actor budget to role
// changes. Other requests pass untouched.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	limiter := httprate.NewRateLimiter(max(baseLimit/4, 1), window,
		httprate.WithKeyFuncs(actorOrIPKey),
		httprate.WithLimitHandler(limitExceeded),
	)
	return func(next http.Handler) http.Handler {
		limited := limiter.Handler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isRoleMutation(r) {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func actorOrIPKey(r *http.Request) (string, error) {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID, nil
	}
	return httprate.KeyByIP(r)
}

func limitExceeded(w http.ResponseWriter, r *http.Request) {
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
}

func isRoleMutation(r *http.Request) bool {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		return false
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	if strings.HasPrefix(path, "/roles/") && path != "/roles/check" {
		return true
	}
	return strings.HasPrefix(path, "/employees/") && strings.HasSuffix(path, "/role")
}
