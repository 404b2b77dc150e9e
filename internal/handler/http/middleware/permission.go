package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// RequirePermission rejects bridge tokens whose role claim does not grant permission.
// It must run after AuthRequired.
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var role user.Role
			if _, claims, err := jwtauth.FromContext(r.Context()); err == nil {
				if s, ok := claims["role"].(string); ok {
					role = user.Role(s)
				}
			}

			if !user.HasPermission(role, permission) {
				slog.Warn("Bridge request lacks permission", "permission", permission, "role", role, "path", r.URL.Path)
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s'", permission))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
