package middleware

import (
	"net/http"

	"workforce/internal/domain/roles"
	"workforce/internal/transport/http/api"
)

// RequireRole admits users whose token role ranks at or above minimum. The
// role engine still makes the per-target decision; this only gates routes.
func RequireRole(minimum roles.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthenticated", "authentication required", GetRequestID(r.Context()))
				return
			}
			if !user.Role.Valid() || user.Role.Rank() < minimum.Rank() {
				api.Fail(w, http.StatusForbidden, "insufficient_permissions", "insufficient permissions", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
