package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/ndodonov/accounts/internal/handlers/middleware"
	"github.com/ndodonov/accounts/internal/logger"
	"github.com/ndodonov/accounts/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type RouterConfig struct {
	// URL prefix the static directory is served under, e.g. "/static"
	StaticPrefix string

	// Static files root directory
	StaticDir string
}

func NewRouter(
	cfg RouterConfig,
	accounts accountService,
	auth authService,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(auth)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	mux := http.NewServeMux()

	mux.Handle("POST /accounts", handleCreateAccount(accounts))
	mux.Handle("GET /accounts", withAuth(handleListAccounts(accounts)))
	mux.Handle("GET /accounts/{id}", handleGetAccount(accounts))
	mux.Handle("PATCH /accounts/{id}", handleUpdateAccount(accounts))
	mux.Handle("PUT /accounts/{id}/avatar", handleUpdateAvatar(accounts))

	mux.Handle("POST /accounts/login", handleLogin(auth))
	mux.Handle("POST /accounts/refresh-token", handleRefreshToken(auth))

	if cfg.StaticPrefix != "" {
		mux.Handle(
			"GET "+cfg.StaticPrefix+"/",
			http.StripPrefix(cfg.StaticPrefix, http.FileServer(http.Dir(cfg.StaticDir))),
		)
	}

	return chain(mux,
		middleware.LoggerMiddleware(logger),
	)
}

type accountService interface {
	// Create account
	// Has to return apperrors.ErrAccountAlreadyExists if the username is taken
	Create(ctx context.Context, email string, username string, password string) (models.Account, error)

	List(ctx context.Context) ([]models.Account, error)

	// Has to return apperrors.ErrAccountNotFound if the id is unknown
	Get(ctx context.Context, id int64) (models.Account, error)
	Update(ctx context.Context, id int64, update models.AccountUpdate) (models.Account, error)
	UpdateAvatar(ctx context.Context, id int64, filename string, file io.Reader) (models.Account, error)
}

type authService interface {
	// Login with username and password
	// Has to return apperrors.ErrAccountNotFound on bad credentials
	Login(ctx context.Context, username string, password string) (models.TokenPair, error)

	// Exchange a refresh token for a fresh pair, rotating the old one out
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Get request and return the account identity if it authenticated or error
	AccountFromRequest(ctx context.Context, r *http.Request) (models.Account, error)
}
