package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/discoteca/internal/handlers/middleware"
	"github.com/nkiryanov/discoteca/internal/logger"
	"github.com/nkiryanov/discoteca/internal/repository/postgres"
	"github.com/nkiryanov/discoteca/internal/service/auth"
	"github.com/nkiryanov/discoteca/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/discoteca/internal/service/disco"
	"github.com/nkiryanov/discoteca/internal/service/user"
	"github.com/nkiryanov/discoteca/internal/testutil"
)

type services struct {
	Auth    *auth.AuthService
	Users   *user.UserService
	Discos  *disco.DiscoService
	Storage *postgres.Storage
}

type serveOptions struct {
	accessTTL  time.Duration
	refreshTTL time.Duration
	rotate     bool

	images        disco.ImageStore
	imageMaxBytes int64
}

func newTestRouter(t *testing.T, db postgres.DBTX, opts serveOptions) (http.Handler, services) {
	t.Helper()

	storage := postgres.NewStorage(db)

	tm, err := tokenmanager.New(tokenmanager.Config{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessTTL:     opts.accessTTL,
		RefreshTTL:    opts.refreshTTL,
	})
	require.NoError(t, err, "token manager should be created without errors")

	us := user.NewService(auth.BcryptHasher{Cost: 4}, storage.User())
	as, err := auth.NewService(auth.Config{
		RefreshCookiePath: UsersPrefix,
		RotateRefresh:     opts.rotate,
	}, tm, us)
	require.NoError(t, err, "auth service starting error")

	ds := disco.NewService(storage.Disco(), opts.images, opts.imageMaxBytes)

	router := NewRouter(Deps{
		Auth:    as,
		Users:   us,
		Discos:  ds,
		Health:  storage,
		Metrics: middleware.NewMetrics(prometheus.NewRegistry()),
		Logger:  logger.NewNoOpLogger(),
	})

	return router, services{Auth: as, Users: us, Discos: ds, Storage: storage}
}

// Create db transaction and run server with that connection (one connection cause one transaction)
// Production services are used, passwords hashed with low bcrypt cost
func serveWithTx(dbpool *pgxpool.Pool, t *testing.T, opts serveOptions, fn func(tx pgx.Tx, srvURL string, s services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		router, s := newTestRouter(t, tx, opts)

		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, s)
	})
}

// Run server on pool. Everything written is removed on cleanup
func serveOnPool(dbpool *pgxpool.Pool, t *testing.T, fn func(srvURL string)) {
	t.Cleanup(func() {
		_, err := dbpool.Exec(context.Background(), "TRUNCATE usuarios CASCADE")
		require.NoError(t, err)
	})

	router, _ := newTestRouter(t, dbpool, serveOptions{})

	srv := httptest.NewServer(router)
	defer srv.Close()

	fn(srv.URL)
}

type response struct {
	Code    int
	Body    string
	Cookies []*http.Cookie
}

func (r response) cookie(name string) *http.Cookie {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Send request with optional JSON body, bearer token and cookies
func doRequest(t *testing.T, method string, url string, body string, access string, cookies ...*http.Cookie) response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	return send(t, req)
}

func send(t *testing.T, req *http.Request) response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return response{Code: resp.StatusCode, Body: string(b), Cookies: resp.Cookies()}
}
