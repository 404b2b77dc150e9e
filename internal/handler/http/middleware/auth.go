package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-client-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired accepts only unrevoked bridge access tokens. SSE tokens are
// rejected here. It must run after jwtauth.Verifier.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil || claims["type"] != jwt.TokenTypeAccess || jwtService.IsTokenRevoked(jwtauth.TokenFromHeader(r)) {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
