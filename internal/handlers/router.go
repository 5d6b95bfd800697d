package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nkiryanov/discoteca/internal/handlers/middleware"
	"github.com/nkiryanov/discoteca/internal/logger"
	"github.com/nkiryanov/discoteca/internal/models"
)

// Prefix auth routes are mounted on. Refresh cookie is scoped to it
const UsersPrefix = "/api/usuarios"

const discosPrefix = "/api/discos"

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type Deps struct {
	Auth   authService
	Users  userService
	Discos discoService
	Health healthChecker
	Logger logger.Logger

	// Optional. Without gatherer /metrics serves the default registry
	Metrics  *middleware.Metrics
	Gatherer prometheus.Gatherer
}

func NewRouter(d Deps) http.Handler {
	withAuth := middleware.AuthMiddleware(d.Auth)
	l := d.Logger

	mux := http.NewServeMux()

	mux.Handle("GET /{$}", handleIndex())
	mux.Handle("GET /livez", handleLivez())
	mux.Handle("GET /healthz", handleHealthz(d.Health, l))
	mux.Handle("GET /metrics", metricsHandler(d.Gatherer))

	mux.Handle("POST "+UsersPrefix+"/login", handleLogin(d.Auth, l))
	mux.Handle("POST "+UsersPrefix+"/register", handleRegister(d.Auth, l))
	mux.Handle("POST "+UsersPrefix+"/refresh", handleTokenRefresh(d.Auth, l))
	mux.Handle("POST "+UsersPrefix+"/logout", handleLogout(d.Auth))
	mux.Handle("GET "+UsersPrefix+"/me", withAuth(handleUserMe(d.Users, l)))

	mux.Handle("GET "+discosPrefix, handleListDiscos(d.Discos, l))
	mux.Handle("GET "+discosPrefix+"/{id}", handleGetDisco(d.Discos, l))
	mux.Handle("POST "+discosPrefix, withAuth(handleCreateDisco(d.Discos, l)))
	mux.Handle("PUT "+discosPrefix+"/{id}", withAuth(handleReplaceDisco(d.Discos, l)))
	mux.Handle("PATCH "+discosPrefix+"/{id}", withAuth(handlePatchDisco(d.Discos, l)))
	mux.Handle("DELETE "+discosPrefix+"/{id}", withAuth(handleDeleteDisco(d.Discos, l)))
	mux.Handle("PUT "+discosPrefix+"/{id}/imagem", withAuth(handleUploadDiscoImage(d.Discos, l)))

	mds := []func(http.Handler) http.Handler{middleware.LoggerMiddleware(l)}
	if d.Metrics != nil {
		mds = append(mds, d.Metrics.Middleware)
	}

	return chain(mux, mds...)
}

func metricsHandler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

type authService interface {
	// Register user, name and email are normalized
	// Has to return apperrors.ErrUserAlreadyExists if email is taken
	Register(ctx context.Context, name string, email string, password string) (models.User, models.TokenPair, error)

	// Login user with email and password
	// Has to return apperrors.ErrInvalidCredentials on any mismatch
	Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error)

	// Refresh tokens using refresh token. Pair Refresh is empty if not rotated
	// Token rejections are apperrors.ErrToken*, removed user is apperrors.ErrUserNotFound
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Get request and return principal if it authenticated or error
	Authenticate(r *http.Request) (models.Principal, error)

	SetRefreshCookie(w http.ResponseWriter, refresh models.IssuedToken)
	ClearRefreshCookie(w http.ResponseWriter)
	ReadRefreshCookie(r *http.Request) (string, error)

	AccessTTL() time.Duration
}

type userService interface {
	GetUserByID(ctx context.Context, id int64) (models.User, error)
}

type discoService interface {
	List(ctx context.Context) ([]models.Disco, error)
	Get(ctx context.Context, id int64) (models.Disco, error)
	Create(ctx context.Context, d models.Disco) (models.Disco, error)
	Replace(ctx context.Context, d models.Disco) (models.Disco, error)
	Patch(ctx context.Context, id int64, patch models.DiscoPatch) (models.Disco, error)
	Delete(ctx context.Context, id int64) error

	UploadImage(ctx context.Context, id int64, body io.Reader, size int64, contentType string) (models.Disco, error)
	ImagesEnabled() bool
	ImageMaxBytes() int64
}

type healthChecker interface {
	Ping(ctx context.Context) error
}
