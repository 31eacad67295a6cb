package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/user"
	"github.com/cmlabs-hris/payroll-settlement/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired rejects requests without a verified access token. It runs
// after jwtauth.Verifier has placed the parsed token on the context.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		if token == nil {
			response.HandleError(w, user.ErrActorMissing)
			return
		}

		tokenType, ok := claims["type"].(string)
		if !ok || tokenType != "access" {
			response.Unauthorized(w, "Invalid token type")
			return
		}

		next.ServeHTTP(w, r)
	})
}
