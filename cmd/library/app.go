package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkiryanov/library/internal/db"
	"github.com/nkiryanov/library/internal/handlers"
	"github.com/nkiryanov/library/internal/logger"
	"github.com/nkiryanov/library/internal/repository/postgres"
	"github.com/nkiryanov/library/internal/service/auth"
	"github.com/nkiryanov/library/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/library/internal/service/library"
	"github.com/nkiryanov/library/internal/service/user"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
	pool   *pgxpool.Pool
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		SecretKey:  c.SecretKey,
		AccessTTL:  c.AccessTTL(),
		RefreshTTL: c.RefreshTTL(),
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	hasher, err := auth.NewBcryptHasher(c.BcryptCost)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating password hasher. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{
		Hasher:              hasher,
		RefreshCookieSecure: c.Environment == logger.EnvProduction,
		Logger:              l,
	}, tokenManager, storage)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	userService := user.NewService(hasher, storage)
	libraryService := library.NewService(storage)

	if c.AdminEmail != "" {
		admin, created, err := userService.EnsureAdmin(ctx, c.AdminEmail, c.AdminPassword)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("error while creating admin. Err: %w", err)
		}
		if created {
			l.Info("admin user created", "user_id", admin.ID.String())
		}
	}

	mux := handlers.NewRouter(authService, libraryService, userService, l)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		logger:     l,
		pool:       pool,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.pool.Close()

	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
