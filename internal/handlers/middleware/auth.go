package middleware

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/discoteca/internal/apperrors"
	"github.com/nkiryanov/discoteca/internal/handlers/render"
	"github.com/nkiryanov/discoteca/internal/handlers/userctx"
	"github.com/nkiryanov/discoteca/internal/models"
)

type authService interface {
	Authenticate(r *http.Request) (models.Principal, error)
}

// Reject request without valid access token, otherwise put principal to request context
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := as.Authenticate(r)
			switch {
			case err == nil:
			case errors.Is(err, apperrors.ErrTokenMissing):
				render.ServiceError(w, "token ausente", http.StatusUnauthorized)
				return
			default:
				render.ServiceError(w, "token inválido", http.StatusUnauthorized)
				return
			}

			ctx := userctx.New(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
