package auth

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/ridematch/auth-service/internal/testutil"
	"github.com/ridematch/auth-service/tests/e2e"
)

const (
	RegisterURL = "/api/auth/register"
	LoginURL    = "/api/auth/login"
	RefreshURL  = "/api/auth/refresh"
	LogoutURL   = "/api/auth/logout"
	MeURL       = "/api/users/me"
)

type tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func post(t *testing.T, url string, access string, data string) (int, string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func get(t *testing.T, url string, access string) (int, string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

// Full session lifecycle over the wire: register, use the access token,
// refresh, logout, observe the refresh token die
func Test_SessionLifecycle(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	e2e.ServeWithTx(pg.Pool, t, func(tx pgx.Tx, srvURL string, s e2e.Services) {
		// Register
		code, body := post(t, srvURL+RegisterURL, "", `{
			"email": "lifecycle@example.com",
			"password": "Str0ngEnough",
			"name": "Lifecycle Rider"
		}`)
		require.Equalf(t, http.StatusCreated, code, "not expected code. Body: %s", body)

		var registered tokens
		require.NoError(t, json.Unmarshal([]byte(body), &registered))
		require.NotEmpty(t, registered.AccessToken)
		require.NotEmpty(t, registered.RefreshToken)

		// Access token opens protected endpoints
		code, body = get(t, srvURL+MeURL, registered.AccessToken)
		require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
		require.Contains(t, body, "lifecycle@example.com")

		// Refresh mints a new access token, same refresh token stays valid
		refreshBody := fmt.Sprintf(`{"refresh_token": %q}`, registered.RefreshToken)
		code, body = post(t, srvURL+RefreshURL, "", refreshBody)
		require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)

		var refreshed tokens
		require.NoError(t, json.Unmarshal([]byte(body), &refreshed))
		require.NotEmpty(t, refreshed.AccessToken)
		require.Empty(t, refreshed.RefreshToken, "refresh must not hand out a new refresh token")

		code, body = get(t, srvURL+MeURL, refreshed.AccessToken)
		require.Equalf(t, http.StatusOK, code, "refreshed access token should work. Body: %s", body)

		// Logout revokes the refresh token
		code, body = post(t, srvURL+LogoutURL, refreshed.AccessToken, refreshBody)
		require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)

		code, body = post(t, srvURL+RefreshURL, "", refreshBody)
		require.Equalf(t, http.StatusUnauthorized, code, "revoked refresh token must be rejected. Body: %s", body)
		require.JSONEq(t, `
			{
				"error": "service_error",
				"message": "Refresh token has been revoked"
			}`, body)

		// Access tokens are stateless and survive logout until they expire
		code, body = get(t, srvURL+MeURL, refreshed.AccessToken)
		require.Equalf(t, http.StatusOK, code, "access token should outlive logout. Body: %s", body)

		// Login starts a fresh session
		code, body = post(t, srvURL+LoginURL, "", `{
			"email": "lifecycle@example.com",
			"password": "Str0ngEnough"
		}`)
		require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)

		var loggedIn tokens
		require.NoError(t, json.Unmarshal([]byte(body), &loggedIn))
		require.NotEmpty(t, loggedIn.RefreshToken)
		require.NotEqual(t, registered.RefreshToken, loggedIn.RefreshToken, "new session must get its own refresh token")
	})
}
