package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ndodonov/accounts/internal/db"
	"github.com/ndodonov/accounts/internal/handlers"
	"github.com/ndodonov/accounts/internal/logger"
	"github.com/ndodonov/accounts/internal/repository/postgres"
	"github.com/ndodonov/accounts/internal/service/account"
	"github.com/ndodonov/accounts/internal/service/auth"
	"github.com/ndodonov/accounts/internal/service/auth/tokenmanager"
	"github.com/ndodonov/accounts/internal/staticfiles"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
	Logger     logger.Logger
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	if c.SecretKey == "" {
		return nil, errors.New("secret key must be set")
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
		AccessTTL:  c.AccessTokenTTL,
		RefreshTTL: c.RefreshTokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{}, tokenManager, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	fileStore, err := staticfiles.NewDiskStore(c.StaticDir, c.StaticURL)
	if err != nil {
		return nil, fmt.Errorf("error while creating file store. Err: %w", err)
	}

	accountService := account.NewService(nil, storage, fileStore)

	mux := handlers.NewRouter(
		handlers.RouterConfig{
			StaticPrefix: c.StaticURL,
			StaticDir:    c.StaticDir,
		},
		accountService,
		authService,
		log,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		Logger:     log,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			s.Logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.Logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.Logger.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
