package middleware

import (
	"context"
	"net/http"

	"github.com/ndodonov/accounts/internal/handlers/accountctx"
	"github.com/ndodonov/accounts/internal/handlers/render"
	"github.com/ndodonov/accounts/internal/models"
)

type authService interface {
	AccountFromRequest(ctx context.Context, r *http.Request) (models.Account, error)
}

// Guard: verify the bearer token and put the identity into the request
// context. Every failure is a bare 401, no detail about which check failed.
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, err := as.AccountFromRequest(r.Context(), r)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := accountctx.New(r.Context(), account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
