package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nkiryanov/discoteca/internal/db"
	"github.com/nkiryanov/discoteca/internal/handlers"
	"github.com/nkiryanov/discoteca/internal/handlers/middleware"
	"github.com/nkiryanov/discoteca/internal/logger"
	"github.com/nkiryanov/discoteca/internal/repository/postgres"
	"github.com/nkiryanov/discoteca/internal/service/auth"
	"github.com/nkiryanov/discoteca/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/discoteca/internal/service/disco"
	"github.com/nkiryanov/discoteca/internal/service/user"
	"github.com/nkiryanov/discoteca/internal/storage/minio"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
	pool   *pgxpool.Pool
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DSN())
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	app, err := newServerApp(ctx, c, l, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return app, nil
}

func newServerApp(ctx context.Context, c *Config, l logger.Logger, pool *pgxpool.Pool) (*ServerApp, error) {
	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		AccessSecret:  c.AccessSecret,
		RefreshSecret: c.RefreshSecret,
		AccessTTL:     c.AccessTTL,
		RefreshTTL:    c.RefreshTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	userService := user.NewService(auth.DefaultHasher, storage.User())
	authService, err := auth.NewService(auth.Config{
		RefreshCookiePath:   handlers.UsersPrefix,
		RefreshCookieSecure: c.CookieSecure,
		RotateRefresh:       c.RefreshRotate,
	}, tokenManager, userService)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	var images disco.ImageStore
	if c.S3Endpoint != "" {
		store, err := minio.New(ctx, minio.Config{
			Endpoint:  c.S3Endpoint,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Bucket:    c.S3Bucket,
			PublicURL: c.S3PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("error while connecting to image storage. Err: %w", err)
		}
		images = store
	} else {
		l.Warn("S3 endpoint is not set, image upload disabled")
	}
	discoService := disco.NewService(storage.Disco(), images, c.ImageMaxBytes)

	// Own registry, so app may be created more than once in one process
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := handlers.NewRouter(handlers.Deps{
		Auth:     authService,
		Users:    userService,
		Discos:   discoService,
		Health:   storage,
		Logger:   l,
		Metrics:  middleware.NewMetrics(reg),
		Gatherer: reg,
	})

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    router,
		logger:     l,
		pool:       pool,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
// Database pool is closed when server stops
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.pool.Close()

	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
