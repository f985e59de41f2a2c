package accounts

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ndodonov/accounts/internal/testutil"
	"github.com/ndodonov/accounts/tests/integration"
)

const (
	AccountsURL = "/accounts"
	LoginURL    = "/accounts/login"
)

// The whole account lifecycle over the wire: register, login, read, update
func Test_AccountLifecycle(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("register login read and update", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, _ integration.Services) {
			// Register
			data := `{"email": "nk@example.com", "username": "nk", "password": "StrongEnoughPassword"}`
			resp, err := http.Post(srvURL+AccountsURL, "application/json", strings.NewReader(data))
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", string(body))
			require.Contains(t, string(body), `"email":"nk@example.com"`)
			require.NotContains(t, string(body), "password", "password never leaves the server")

			var created struct {
				ID int64 `json:"id"`
			}
			require.NoError(t, json.Unmarshal(body, &created))
			require.NotZero(t, created.ID)

			// Login with the form credentials
			resp, err = http.PostForm(srvURL+LoginURL, url.Values{
				"username": {"nk"},
				"password": {"StrongEnoughPassword"},
			})
			require.NoError(t, err)
			body, err = io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", string(body))

			var tokens struct {
				AccessToken  string `json:"access_token"`
				RefreshToken string `json:"refresh_token"`
				TokenType    string `json:"token_type"`
			}
			require.NoError(t, json.Unmarshal(body, &tokens))
			require.NotEmpty(t, tokens.AccessToken)
			require.NotEmpty(t, tokens.RefreshToken)
			require.Equal(t, "bearer", tokens.TokenType)

			// Read it back, no auth required, links included
			resp, err = http.Get(fmt.Sprintf("%s%s/%d", srvURL, AccountsURL, created.ID))
			require.NoError(t, err)
			body, err = io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", string(body))
			require.Contains(t, string(body), fmt.Sprintf(`"self":"/accounts/%d"`, created.ID))
			require.Contains(t, string(body), `"parent":"/accounts"`)

			// Update the profile
			req, err := http.NewRequest(
				http.MethodPatch,
				fmt.Sprintf("%s%s/%d", srvURL, AccountsURL, created.ID),
				strings.NewReader(`{"first_name": "Nikolai"}`),
			)
			require.NoError(t, err)
			req.Header.Set("Content-Type", "application/json")

			resp, err = http.DefaultClient.Do(req)
			require.NoError(t, err)
			body, err = io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", string(body))
			require.Contains(t, string(body), `"first_name":"Nikolai"`)

			// The list endpoint requires the freshly issued token
			req, err = http.NewRequest(http.MethodGet, srvURL+AccountsURL, nil)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)

			resp, err = http.DefaultClient.Do(req)
			require.NoError(t, err)
			body, err = io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", string(body))
			require.Contains(t, string(body), `"username":"nk"`)
		})
	})

	t.Run("second register with same username conflicts", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, s integration.Services) {
			_, err := s.AccountService.Create(t.Context(), "nk@example.com", "nk", "StrongEnoughPassword")
			require.NoError(t, err)

			data := `{"email": "other@example.com", "username": "nk", "password": "StrongEnoughPassword"}`
			resp, err := http.Post(srvURL+AccountsURL, "application/json", strings.NewReader(data))
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			require.Equalf(t, http.StatusConflict, resp.StatusCode, "not expected code. Body: %s", string(body))
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Username already taken"
				}`, string(body))
		})
	})
}
