package accounts

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ndodonov/accounts/internal/testutil"
	"github.com/ndodonov/accounts/tests/integration"
)

const RefreshURL = "/accounts/refresh-token"

func Test_RefreshToken(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	exchange := func(t *testing.T, srvURL string, token string) (int, string) {
		t.Helper()

		data := fmt.Sprintf(`{"token": %q}`, token)
		resp, err := http.Post(srvURL+RefreshURL, "application/json", strings.NewReader(data))
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		return resp.StatusCode, string(body)
	}

	t.Run("refresh rotates and the old token dies", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, s integration.Services) {
			_, err := s.AccountService.Create(t.Context(), "nk@example.com", "nk", "StrongEnoughPassword")
			require.NoError(t, err)

			pair, err := s.AuthService.Login(t.Context(), "nk", "StrongEnoughPassword")
			require.NoError(t, err)

			// Exchange works and issues a brand new pair
			code, body := exchange(t, srvURL, pair.Refresh.Value)
			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)

			var fresh struct {
				AccessToken  string `json:"access_token"`
				RefreshToken string `json:"refresh_token"`
				TokenType    string `json:"token_type"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &fresh))
			require.NotEmpty(t, fresh.AccessToken)
			require.NotEqual(t, pair.Refresh.Value, fresh.RefreshToken, "refresh token should be rotated")
			require.Equal(t, "bearer", fresh.TokenType)

			// The spent token is gone for good
			code, body = exchange(t, srvURL, pair.Refresh.Value)
			require.Equalf(t, http.StatusUnauthorized, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Unauthorized"
				}`, body)

			// While the rotated one keeps working
			code, _ = exchange(t, srvURL, fresh.RefreshToken)
			require.Equal(t, http.StatusOK, code)
		})
	})

	t.Run("token that was never issued", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, _ integration.Services) {
			code, body := exchange(t, srvURL, "forged-or-stale-token")

			require.Equalf(t, http.StatusUnauthorized, code, "not expected code. Body: %s", body)
		})
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, s integration.Services) {
			_, err := s.AccountService.Create(t.Context(), "nk@example.com", "nk", "StrongEnoughPassword")
			require.NoError(t, err)

			pair, err := s.AuthService.Login(t.Context(), "nk", "StrongEnoughPassword")
			require.NoError(t, err)

			// Valid JWT but never stored as a refresh token
			code, body := exchange(t, srvURL, pair.Access.Value)
			require.Equalf(t, http.StatusUnauthorized, code, "not expected code. Body: %s", body)
		})
	})
}
