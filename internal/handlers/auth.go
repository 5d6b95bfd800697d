package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/discoteca/internal/apperrors"
	"github.com/nkiryanov/discoteca/internal/handlers/render"
	"github.com/nkiryanov/discoteca/internal/logger"
	"github.com/nkiryanov/discoteca/internal/models"
)

const tokenType = "Bearer"

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"email"`
	Role  int    `json:"papel"`
}

func newUserResponse(u models.User) *userResponse {
	return &userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type tokenResponse struct {
	TokenType   string        `json:"token_type"`
	AccessToken string        `json:"access_token"`
	ExpiresIn   int64         `json:"expires_in"`
	User        *userResponse `json:"user,omitempty"`
}

func newTokenResponse(as authService, access models.IssuedToken, user *userResponse) tokenResponse {
	return tokenResponse{
		TokenType:   tokenType,
		AccessToken: access.Value,
		ExpiresIn:   int64(as.AccessTTL().Seconds()),
		User:        user,
	}
}

func handleLogin(as authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"senha" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r, "email e senha são obrigatórios")
		if err != nil {
			return
		}

		user, pair, err := as.Login(r.Context(), data.Email, data.Password)
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "credenciais inválidas", http.StatusUnauthorized)
			return
		default:
			l.Error("login failed", "error", err)
			render.InternalError(w)
			return
		}

		as.SetRefreshCookie(w, pair.Refresh)
		render.JSON(w, newTokenResponse(as, pair.Access, newUserResponse(user)))
	})
}

func handleRegister(as authService, l logger.Logger) http.Handler {
	type request struct {
		Name     string `json:"nome" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"senha" validate:"required,min=6"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r, "nome, email e senha são obrigatórios, senha deve ter pelo menos 6 caracteres")
		if err != nil {
			return
		}

		user, pair, err := as.Register(r.Context(), data.Name, data.Email, data.Password)
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "email já cadastrado", http.StatusConflict)
			return
		default:
			l.Error("register failed", "error", err)
			render.InternalError(w)
			return
		}

		as.SetRefreshCookie(w, pair.Refresh)
		render.JSONWithStatus(w, newTokenResponse(as, pair.Access, newUserResponse(user)), http.StatusCreated)
	})
}

// Every rejected refresh token is cleared from client, so it won't be retried
func handleTokenRefresh(as authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refresh, err := as.ReadRefreshCookie(r)
		if err != nil {
			render.ServiceError(w, "refresh ausente", http.StatusUnauthorized)
			return
		}

		pair, err := as.Refresh(r.Context(), refresh)
		switch {
		case err == nil:
		case apperrors.IsTokenError(err):
			as.ClearRefreshCookie(w)
			render.ServiceError(w, "refresh inválido ou expirado", http.StatusUnauthorized)
			return
		case errors.Is(err, apperrors.ErrUserNotFound):
			as.ClearRefreshCookie(w)
			render.ServiceError(w, "usuário não existe mais", http.StatusUnauthorized)
			return
		default:
			l.Error("refresh failed", "error", err)
			render.InternalError(w)
			return
		}

		if pair.Refresh.Value != "" {
			as.SetRefreshCookie(w, pair.Refresh)
		}
		render.JSON(w, newTokenResponse(as, pair.Access, nil))
	})
}

func handleLogout(as authService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		as.ClearRefreshCookie(w)
		w.WriteHeader(http.StatusNoContent)
	})
}
