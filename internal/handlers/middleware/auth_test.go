package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ridematch/auth-service/internal/apperrors"
	"github.com/ridematch/auth-service/internal/handlers/userctx"
	"github.com/ridematch/auth-service/internal/models"
)

// Allow to use a function as auth service
type authorizeFunc func(ctx context.Context, access string) (models.Identity, error)

func (f authorizeFunc) Authorize(ctx context.Context, access string) (models.Identity, error) {
	return f(ctx, access)
}

func TestAuthMiddleware(t *testing.T) {
	// Simple handler that writes the identity from context to the response
	// Must always find one cause middleware has to reject the request otherwise
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := userctx.FromContext(r.Context())
		require.True(t, ok)

		w.WriteHeader(http.StatusOK)
		_, err := fmt.Fprintf(w, "%d:%s", identity.UserID, identity.Email)
		require.NoError(t, err, "should write identity to response")
	})

	get := func(t *testing.T, url string, header string) (int, string) {
		t.Helper()

		req, err := http.NewRequest(http.MethodGet, url+"/test", nil)
		require.NoError(t, err)
		if header != "" {
			req.Header.Set("Authorization", header)
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err, "should make request to test server")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err, "should read response body")
		defer resp.Body.Close() // nolint:errcheck

		return resp.StatusCode, string(body)
	}

	t.Run("auth ok", func(t *testing.T) {
		// Middleware that accepts any bearer token
		middleware := AuthMiddleware(authorizeFunc(func(ctx context.Context, access string) (models.Identity, error) {
			return models.Identity{UserID: 42, Email: "nk@example.com"}, nil
		}))

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		code, body := get(t, srv.URL, "Bearer some-access-token")

		require.Equalf(t, http.StatusOK, code, "should return status OK. Resp: %s", body)
		require.Equal(t, "42:nk@example.com", body, "should return identity in response")
	})

	t.Run("auth fail", func(t *testing.T) {
		// Middleware that always fails
		middleware := AuthMiddleware(authorizeFunc(func(ctx context.Context, access string) (models.Identity, error) {
			return models.Identity{}, apperrors.ErrInvalidToken
		}))

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		code, body := get(t, srv.URL, "Bearer some-access-token")

		require.Equalf(t, http.StatusUnauthorized, code, "should return status Unauthorized. Resp: %s", body)
		require.JSONEq(t,
			`{
				"error": "service_error",
				"message": "Unauthorized"
			}`,
			body,
		)
	})

	t.Run("missing or mangled header", func(t *testing.T) {
		authorized := 0
		middleware := AuthMiddleware(authorizeFunc(func(ctx context.Context, access string) (models.Identity, error) {
			authorized++
			return models.Identity{}, nil
		}))

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		for _, header := range []string{"", "Bearer", "Bearer ", "Basic dXNlcjpwd2Q=", "some-access-token"} {
			code, body := get(t, srv.URL, header)

			require.Equalf(t, http.StatusUnauthorized, code, "header %q should be rejected. Resp: %s", header, body)
		}

		require.Equal(t, 0, authorized, "auth service must not be asked about mangled headers")
	})
}
