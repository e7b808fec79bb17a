package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ridematch/auth-service/internal/handlers/render"
	"github.com/ridematch/auth-service/internal/handlers/userctx"
	"github.com/ridematch/auth-service/internal/models"
)

type authService interface {
	Authorize(ctx context.Context, access string) (models.Identity, error)
}

// AuthMiddleware validates the bearer access token and puts the identity it
// carries into the request context
// No reason for the failure is disclosed, every bad token reads the same
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			access, ok := bearerToken(r)
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			identity, err := as.Authorize(r.Context(), access)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := userctx.New(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}

	return token, true
}
