package integration

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stretchr/testify/require"

	"github.com/ndodonov/accounts/internal/handlers"
	"github.com/ndodonov/accounts/internal/logger"
	"github.com/ndodonov/accounts/internal/repository/postgres"
	"github.com/ndodonov/accounts/internal/service/account"
	"github.com/ndodonov/accounts/internal/service/auth"
	"github.com/ndodonov/accounts/internal/service/auth/tokenmanager"
	"github.com/ndodonov/accounts/internal/staticfiles"
	"github.com/ndodonov/accounts/internal/testutil"
)

type Services struct {
	AuthService    *auth.AuthService
	AccountService *account.AccountService
}

// Create db transaction and run server with that connection (one connection cause one transaction)
// The whole production wiring is used: storage, services, router
func RunTx(dbpool *pgxpool.Pool, t *testing.T, fn func(srvURL string, services Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)

		tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"})
		require.NoError(t, err, "token manager should be created without errors")

		as, err := auth.NewService(auth.Config{}, tokenManager, storage)
		require.NoError(t, err, "auth service starting error", err)

		staticDir := t.TempDir()
		files, err := staticfiles.NewDiskStore(staticDir, "/static")
		require.NoError(t, err, "file store should be created without errors")

		accounts := account.NewService(nil, storage, files)

		router := handlers.NewRouter(
			handlers.RouterConfig{StaticPrefix: "/static", StaticDir: staticDir},
			accounts,
			as,
			logger.NewNoOpLogger(),
		)

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(srv.URL, Services{
			AuthService:    as,
			AccountService: accounts,
		})
	})
}
