package handlers

import (
	"errors"
	"net/http"

	"github.com/ndodonov/accounts/internal/apperrors"
	"github.com/ndodonov/accounts/internal/handlers/render"
	"github.com/ndodonov/accounts/internal/models"
)

const tokenTypeBearer = "bearer"

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func toTokenResponse(pair models.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
		TokenType:    tokenTypeBearer,
	}
}

// Login expects form fields 'username' and 'password'.
// Bad credentials are a bare 401 whatever the actual reason was.
func handleLogin(auth authService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			render.ServiceError(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		username := r.PostFormValue("username")
		password := r.PostFormValue("password")
		if username == "" || password == "" {
			render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		pair, err := auth.Login(r.Context(), username, password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrAccountNotFound):
				render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
			default:
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, toTokenResponse(pair))
	})
}

func handleRefreshToken(auth authService) http.Handler {
	type request struct {
		Token string `json:"token" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pair, err := auth.Refresh(r.Context(), data.Token)
		if err != nil {
			switch {
			// Rotated-out, expired and never-issued tokens all look the same
			case errors.Is(err, apperrors.ErrTokenInvalid),
				errors.Is(err, apperrors.ErrTokenMissingAccount),
				errors.Is(err, apperrors.ErrRefreshTokenNotFound):
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			default:
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, toTokenResponse(pair))
	})
}
