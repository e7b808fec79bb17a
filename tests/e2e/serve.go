package e2e

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ridematch/auth-service/internal/handlers"
	"github.com/ridematch/auth-service/internal/handlers/middleware"
	"github.com/ridematch/auth-service/internal/repository/postgres"
	"github.com/ridematch/auth-service/internal/repository/tokenstore"
	"github.com/ridematch/auth-service/internal/service/auth"
	"github.com/ridematch/auth-service/internal/service/auth/tokenmanager"
	"github.com/ridematch/auth-service/internal/service/user"
	"github.com/ridematch/auth-service/internal/testutil"
)

type Services struct {
	AuthService *auth.AuthService
	UserService *user.UserService
}

// Create db transaction and run server with that connection (one connection cause one transaction)
// The created transaction is passed to the inner function: so you can safely use testutil.WithTx with it
func ServeWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, services Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		// Initialize repositories
		userRepo := &postgres.UserRepo{DB: tx}
		revocations := tokenstore.NewRevocationStore(testutil.StartRedis(t).Client)

		// Initialize services
		tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"})
		require.NoError(t, err, "token manager should be created without errors")

		as, err := auth.NewService(auth.Config{Hasher: auth.BcryptHasher{Cost: bcrypt.MinCost}}, tokenManager, userRepo, revocations)
		require.NoError(t, err, "auth service starting error")

		us := user.NewService(userRepo)

		// Complete all together as router
		router := handlers.NewRouter(
			handlers.NewAuth(as, nil),
			handlers.NewUser(us, as, nil),
			middleware.AuthMiddleware(as),
		)

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, Services{
			AuthService: as,
			UserService: us,
		})
	})
}
