package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ridematch/auth-service/internal/models"
)

type CreateUserParams struct {
	Email        string
	PasswordHash string
	Name         string
	Phone        *string
	DateOfBirth  *time.Time
	Gender       *string
}

// UpdateProfileParams lists every field a user may change on their profile
// Nil fields stay untouched. Anything not listed here can't be updated
// through the profile path at all
type UpdateProfileParams struct {
	Name        *string
	Phone       *string
	DateOfBirth *time.Time
	Gender      *string
	Preferences *models.Preferences
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with the email exists already has to return apperrors.ErrEmailAlreadyExists
	CreateUser(ctx context.Context, params CreateUserParams) (models.User, error)

	// Get user by id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Record successful login time
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error

	// Update whitelisted profile fields, nil params stay untouched
	UpdateProfile(ctx context.Context, userID int64, params UpdateProfileParams) (models.User, error)

	// Overwrite the cached rating for the given role ("driver" or "passenger")
	UpdateRating(ctx context.Context, userID int64, role string, rating decimal.Decimal, count int32) (models.User, error)
}

// RevocationStore tracks which issued refresh tokens are still usable
// A refresh token may mint new access tokens only while its entry exists
type RevocationStore interface {
	// Register the token for its whole lifetime, overwrites silently
	Register(ctx context.Context, token string, userID int64, ttl time.Duration) error

	// Report whether the token entry still exists
	// Store communication failures read as false
	IsValid(ctx context.Context, token string) bool

	// Delete the token entry, idempotent
	Revoke(ctx context.Context, token string) error

	// Delete every entry owned by the user, returns the number deleted
	RevokeAll(ctx context.Context, userID int64) (int, error)
}
