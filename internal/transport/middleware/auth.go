package middleware

import (
	"net/http"

	"github.com/frahmantamala/training-management/internal/auth"
	"github.com/frahmantamala/training-management/pkg/logger"
)

// PrincipalContext tags the request logger with the authenticated user. It
// must run after the auth middleware.
func PrincipalContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "user_id", p.ID, "role", string(p.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
