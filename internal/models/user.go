package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User of the ride-sharing platform
// There is no static role: the same account may drive and ride, only the
// admin flag is stored
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsAdmin      bool

	Name        string
	Phone       *string
	DateOfBirth *time.Time
	Gender      *string

	IsActive        bool
	IsEmailVerified bool
	EmailVerifiedAt *time.Time

	// Ratings cached from the feedback service
	DriverRating         *decimal.Decimal
	DriverRatingCount    int32
	PassengerRating      *decimal.Decimal
	PassengerRatingCount int32

	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time

	Preferences *Preferences
}

// Rating roles a user can be rated in
const (
	RoleDriver    = "driver"
	RolePassenger = "passenger"
)
