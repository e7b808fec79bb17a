package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridematch/auth-service/internal/apperrors"
	"github.com/ridematch/auth-service/internal/models"
	"github.com/ridematch/auth-service/internal/repository"
	"github.com/ridematch/auth-service/internal/testutil"
)

func strPtr(s string) *string { return &s }

func Test_UserRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	createParams := repository.CreateUserParams{
		Email:        "rider@example.com",
		PasswordHash: "hashedpassword123",
		Name:         "Test Rider",
	}

	t.Run("create user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			user, err := r.CreateUser(t.Context(), createParams)

			require.NoError(t, err)
			assert.NotZero(t, user.ID)
			assert.Equal(t, "rider@example.com", user.Email)
			assert.Equal(t, "hashedpassword123", user.PasswordHash)
			assert.Equal(t, "Test Rider", user.Name)
			assert.False(t, user.IsAdmin, "fresh user must not be admin")
			assert.True(t, user.IsActive, "fresh user must be active")
			assert.False(t, user.IsEmailVerified)
			assert.Nil(t, user.DriverRating, "fresh user has no rating yet")
			assert.Nil(t, user.LastLoginAt)
			assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Second, "CreatedAt should be recent")
		})
	})

	t.Run("create user duplicate email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.CreateUser(t.Context(), createParams)
			require.NoError(t, err)

			_, err = r.CreateUser(t.Context(), createParams)

			assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists, "should return well known error")
		})
	})

	t.Run("get user by id ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), createParams)
			require.NoError(t, err)

			got, err := r.GetUserByID(t.Context(), created.ID)

			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, created.Email, got.Email)
			assert.Equal(t, created.PasswordHash, got.PasswordHash)
			assert.Equal(t, created.CreatedAt, got.CreatedAt)
		})
	})

	t.Run("get user by id not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByID(t.Context(), 999999)

			assert.Error(t, err, "Should return error for non-existent user")
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")
		})
	})

	t.Run("get user by email ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), createParams)
			require.NoError(t, err)

			got, err := r.GetUserByEmail(t.Context(), created.Email)

			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, created.Email, got.Email)
		})
	})

	t.Run("get user by email not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByEmail(t.Context(), "nobody@example.com")

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")
		})
	})

	t.Run("update last login", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), createParams)
			require.NoError(t, err)

			at := time.Now().Truncate(time.Second)
			err = r.UpdateLastLogin(t.Context(), created.ID, at)
			require.NoError(t, err)

			got, err := r.GetUserByID(t.Context(), created.ID)
			require.NoError(t, err)
			require.NotNil(t, got.LastLoginAt)
			assert.WithinDuration(t, at, *got.LastLoginAt, time.Second)
		})
	})

	t.Run("update last login unknown user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			err := r.UpdateLastLogin(t.Context(), 999999, time.Now())

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("update profile set fields", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), createParams)
			require.NoError(t, err)

			dob := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
			got, err := r.UpdateProfile(t.Context(), created.ID, repository.UpdateProfileParams{
				Name:        strPtr("Renamed Rider"),
				Phone:       strPtr("+972501234567"),
				DateOfBirth: &dob,
				Gender:      strPtr("female"),
				Preferences: &models.Preferences{
					DefaultMode: strPtr(models.RoleDriver),
				},
			})

			require.NoError(t, err)
			assert.Equal(t, "Renamed Rider", got.Name)
			require.NotNil(t, got.Phone)
			assert.Equal(t, "+972501234567", *got.Phone)
			require.NotNil(t, got.DateOfBirth)
			assert.Equal(t, dob, got.DateOfBirth.UTC())
			require.NotNil(t, got.Preferences)
			require.NotNil(t, got.Preferences.DefaultMode)
			assert.Equal(t, models.RoleDriver, *got.Preferences.DefaultMode)
		})
	})

	t.Run("update profile keeps nil fields untouched", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), repository.CreateUserParams{
				Email:        "keep@example.com",
				PasswordHash: "hashedpassword123",
				Name:         "Keep Me",
				Phone:        strPtr("+972500000000"),
			})
			require.NoError(t, err)

			got, err := r.UpdateProfile(t.Context(), created.ID, repository.UpdateProfileParams{
				Name: strPtr("Renamed"),
			})

			require.NoError(t, err)
			assert.Equal(t, "Renamed", got.Name)
			require.NotNil(t, got.Phone, "phone was not in params so it must survive")
			assert.Equal(t, "+972500000000", *got.Phone)
		})
	})

	t.Run("update profile unknown user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.UpdateProfile(t.Context(), 999999, repository.UpdateProfileParams{Name: strPtr("x")})

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("update rating per role", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), createParams)
			require.NoError(t, err)

			got, err := r.UpdateRating(t.Context(), created.ID, models.RoleDriver, decimal.RequireFromString("4.75"), 4)
			require.NoError(t, err)

			require.NotNil(t, got.DriverRating)
			assert.True(t, got.DriverRating.Equal(decimal.RequireFromString("4.75")))
			assert.Equal(t, int32(4), got.DriverRatingCount)
			assert.Nil(t, got.PassengerRating, "passenger rating must stay untouched")

			got, err = r.UpdateRating(t.Context(), created.ID, models.RolePassenger, decimal.RequireFromString("3.50"), 2)
			require.NoError(t, err)

			require.NotNil(t, got.PassengerRating)
			assert.True(t, got.PassengerRating.Equal(decimal.RequireFromString("3.5")))
			assert.Equal(t, int32(2), got.PassengerRatingCount)
		})
	})

	t.Run("update rating unknown role", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created, err := r.CreateUser(t.Context(), createParams)
			require.NoError(t, err)

			_, err = r.UpdateRating(t.Context(), created.ID, "pilot", decimal.RequireFromString("5"), 1)

			assert.Error(t, err)
		})
	})
}
