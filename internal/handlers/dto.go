package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ridematch/auth-service/internal/handlers/render"
	"github.com/ridematch/auth-service/internal/models"
)

// UserResponse is the full profile, visible to the account owner only
type UserResponse struct {
	ID              int64               `json:"id"`
	Email           string              `json:"email"`
	Name            string              `json:"name"`
	Phone           *string             `json:"phone,omitempty"`
	DateOfBirth     *string             `json:"date_of_birth,omitempty"`
	Gender          *string             `json:"gender,omitempty"`
	IsAdmin         bool                `json:"is_admin"`
	IsActive        bool                `json:"is_active"`
	IsEmailVerified bool                `json:"is_email_verified"`
	DriverRating    *decimal.Decimal    `json:"driver_rating,omitempty"`
	DriverRatingCnt int32               `json:"driver_rating_count"`
	PassengerRating *decimal.Decimal    `json:"passenger_rating,omitempty"`
	PassengerRatCnt int32               `json:"passenger_rating_count"`
	Preferences     *models.Preferences `json:"preferences,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	LastLoginAt     *time.Time          `json:"last_login_at,omitempty"`
}

// PublicUserResponse is the minimal profile other users may see
type PublicUserResponse struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	DriverRating    *decimal.Decimal `json:"driver_rating,omitempty"`
	DriverRatingCnt int32            `json:"driver_rating_count"`
	PassengerRating *decimal.Decimal `json:"passenger_rating,omitempty"`
	PassengerRatCnt int32            `json:"passenger_rating_count"`
}

func newUserResponse(u models.User) UserResponse {
	var dob *string
	if u.DateOfBirth != nil {
		formatted := u.DateOfBirth.Format(render.DateLayout)
		dob = &formatted
	}

	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Phone:           u.Phone,
		DateOfBirth:     dob,
		Gender:          u.Gender,
		IsAdmin:         u.IsAdmin,
		IsActive:        u.IsActive,
		IsEmailVerified: u.IsEmailVerified,
		DriverRating:    u.DriverRating,
		DriverRatingCnt: u.DriverRatingCount,
		PassengerRating: u.PassengerRating,
		PassengerRatCnt: u.PassengerRatingCount,
		Preferences:     u.Preferences,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
		LastLoginAt:     u.LastLoginAt,
	}
}

func newPublicUserResponse(u models.User) PublicUserResponse {
	return PublicUserResponse{
		ID:              u.ID,
		Name:            u.Name,
		DriverRating:    u.DriverRating,
		DriverRatingCnt: u.DriverRatingCount,
		PassengerRating: u.PassengerRating,
		PassengerRatCnt: u.PassengerRatingCount,
	}
}
