package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/transport"
)

// RBACAuthorization gates routes on the principal's role.
type RBACAuthorization struct {
	*transport.BaseHandler
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{BaseHandler: transport.NewBaseHandler(logger)}
}

// RequireRole lets the request through when the principal holds any of roles.
func (ra *RBACAuthorization) RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				ra.Logger.Warn("authorization check failed: principal not found in context")
				ra.WriteAppError(w, internal.NewUnauthorizedError("unauthorized", internal.ErrCodeInvalidToken))
				return
			}

			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			ra.Logger.WarnContext(r.Context(), "access denied: role not allowed",
				"user_id", p.ID,
				"role", p.Role,
				"required_roles", roles)
			ra.WriteAppError(w, internal.ErrAdminRequired)
		})
	}
}

func (ra *RBACAuthorization) RequireSystemAdmin() func(http.Handler) http.Handler {
	return ra.RequireRole(RoleSystemAdmin)
}

// RequirePasswordChanged blocks every route while the principal still carries
// the forced password change flag.
func (ra *RBACAuthorization) RequirePasswordChanged() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, ok := PrincipalFromContext(r.Context()); ok && p.MustChangePassword {
				ra.Logger.InfoContext(r.Context(), "request blocked until password change", "user_id", p.ID)
				ra.WriteAppError(w, internal.ErrPasswordChangeRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
