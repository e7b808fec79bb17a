package user

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ridematch/auth-service/internal/models"
	"github.com/ridematch/auth-service/internal/repository"
)

// ratingPrecision keeps cached averages at two decimal places,
// same as the NUMERIC(3, 2) columns they are stored in
const ratingPrecision = 2

// UserService owns profile reads and updates
// Credential handling stays in the auth service, this one never sees
// passwords
type UserService struct {
	userRepo repository.UserRepo
}

func NewService(userRepo repository.UserRepo) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetByID(ctx context.Context, userID int64) (models.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

// UpdateProfile changes whitelisted profile fields of the user
// Fields outside repository.UpdateProfileParams can't be touched here, so a
// request can't smuggle updates to is_admin or the password hash
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, params repository.UpdateProfileParams) (models.User, error) {
	user, err := s.userRepo.UpdateProfile(ctx, userID, params)
	if err != nil {
		return user, fmt.Errorf("can't update profile. Err: %w", err)
	}

	return user, nil
}

// RecordRating folds a new feedback rating into the cached average for the
// given role and stores the result
func (s *UserService) RecordRating(ctx context.Context, userID int64, role string, rating decimal.Decimal) (models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return user, err
	}

	var current *decimal.Decimal
	var count int32
	switch role {
	case models.RoleDriver:
		current, count = user.DriverRating, user.DriverRatingCount
	case models.RolePassenger:
		current, count = user.PassengerRating, user.PassengerRatingCount
	default:
		return user, fmt.Errorf("unknown rating role %q", role)
	}

	average := rating
	if current != nil && count > 0 {
		total := current.Mul(decimal.NewFromInt32(count)).Add(rating)
		average = total.DivRound(decimal.NewFromInt32(count+1), ratingPrecision)
	}

	user, err = s.userRepo.UpdateRating(ctx, userID, role, average, count+1)
	if err != nil {
		return user, fmt.Errorf("can't update rating. Err: %w", err)
	}

	return user, nil
}
