package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/ridematch/auth-service/internal/apperrors"
	"github.com/ridematch/auth-service/internal/models"
	"github.com/ridematch/auth-service/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, email, password_hash, is_admin,
	name, phone, date_of_birth, gender,
	is_active, is_email_verified, email_verified_at,
	driver_rating, driver_rating_count, passenger_rating, passenger_rating_count,
	created_at, updated_at, last_login_at, preferences`

const createUser = `-- name: CreateUser
INSERT INTO users (email, password_hash, name, phone, date_of_birth, gender)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, params repository.CreateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser,
		params.Email, params.PasswordHash, params.Name,
		params.Phone, params.DateOfBirth, params.Gender,
	)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrEmailAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + `
FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, userID int64) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, userID)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT ` + userColumns + `
FROM users
WHERE email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const updateLastLogin = `-- name: UpdateLastLogin
UPDATE users
SET last_login_at = $2
WHERE id = $1
`

func (r *UserRepo) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	tag, err := r.DB.Exec(ctx, updateLastLogin, userID, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

const updateProfile = `-- name: UpdateProfile
UPDATE users
SET name          = COALESCE($2, name),
    phone         = COALESCE($3, phone),
    date_of_birth = COALESCE($4, date_of_birth),
    gender        = COALESCE($5, gender),
    preferences   = COALESCE($6, preferences),
    updated_at    = now()
WHERE id = $1
RETURNING ` + userColumns

// Update whitelisted profile fields only
// Nil params keep the stored value, there is no way to set a field back to NULL
func (r *UserRepo) UpdateProfile(ctx context.Context, userID int64, params repository.UpdateProfileParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, updateProfile, userID,
		params.Name, params.Phone, params.DateOfBirth, params.Gender, params.Preferences,
	)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const updateDriverRating = `-- name: UpdateDriverRating
UPDATE users
SET driver_rating = $2, driver_rating_count = $3, updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

const updatePassengerRating = `-- name: UpdatePassengerRating
UPDATE users
SET passenger_rating = $2, passenger_rating_count = $3, updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) UpdateRating(ctx context.Context, userID int64, role string, rating decimal.Decimal, count int32) (models.User, error) {
	var query string
	switch role {
	case models.RoleDriver:
		query = updateDriverRating
	case models.RolePassenger:
		query = updatePassengerRating
	default:
		return models.User{}, fmt.Errorf("unknown rating role %q", role)
	}

	rows, _ := r.DB.Query(ctx, query, userID, rating, count)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.IsAdmin,
		&u.Name, &u.Phone, &u.DateOfBirth, &u.Gender,
		&u.IsActive, &u.IsEmailVerified, &u.EmailVerifiedAt,
		&u.DriverRating, &u.DriverRatingCount, &u.PassengerRating, &u.PassengerRatingCount,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt, &u.Preferences,
	)
	return u, err
}
