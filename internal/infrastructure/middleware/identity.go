package middleware

import (
	"net/http"
	"strings"

	"shopify-workspace-connector/internal/domain"
)

// UserIDHeader carries the caller identity resolved by the gateway in front of this service
const UserIDHeader = "X-User-ID"

// UserIdentityMiddleware copies the caller identity header into the request context.
// Requests without it pass through; handlers that need a caller reject them.
func UserIdentityMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID := strings.TrimSpace(r.Header.Get(UserIDHeader)); userID != "" {
				r = r.WithContext(domain.WithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}
