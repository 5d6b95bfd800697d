package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/discoteca/internal/apperrors"
	"github.com/nkiryanov/discoteca/internal/handlers/render"
	"github.com/nkiryanov/discoteca/internal/handlers/userctx"
	"github.com/nkiryanov/discoteca/internal/logger"
)

func handleUserMe(us userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, _ := userctx.FromContext(r.Context())

		user, err := us.GetUserByID(r.Context(), principal.ID)
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "usuário não existe mais", http.StatusUnauthorized)
			return
		default:
			l.Error("get user failed", "error", err, "user_id", principal.ID)
			render.InternalError(w)
			return
		}

		render.JSON(w, newUserResponse(user))
	})
}
