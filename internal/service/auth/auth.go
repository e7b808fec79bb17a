package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ridematch/auth-service/internal/apperrors"
	"github.com/ridematch/auth-service/internal/logger"
	"github.com/ridematch/auth-service/internal/models"
	"github.com/ridematch/auth-service/internal/repository"
	"github.com/ridematch/auth-service/internal/service/auth/tokenmanager"
)

// Hash of a throwaway password
// Login compares against it when the email is unknown so the response time
// does not reveal whether the account exists
const dummyPasswordHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

type RegisterParams struct {
	Email       string
	Password    string
	Name        string
	Phone       *string
	DateOfBirth *time.Time
	Gender      *string
}

type Config struct {
	// Hasher to use during registration or login
	// Bcrypt with default cost if not set
	Hasher PasswordHasher

	// Logger for revocation bookkeeping failures
	// No-op if not set
	Logger logger.Logger
}

// Auth service
// Orchestrates the credential verifier, the token codec and the revocation
// store into the service's use cases
type AuthService struct {
	token       *tokenmanager.TokenManager
	hasher      PasswordHasher
	userRepo    repository.UserRepo
	revocations repository.RevocationStore
	logger      logger.Logger
}

func NewService(cfg Config, token *tokenmanager.TokenManager, userRepo repository.UserRepo, revocations repository.RevocationStore) (*AuthService, error) {
	if token == nil || userRepo == nil || revocations == nil {
		return nil, errors.New("token manager, user repo and revocation store must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNoOp()
	}

	return &AuthService{
		token:       token,
		hasher:      hasher,
		userRepo:    userRepo,
		revocations: revocations,
		logger:      log,
	}, nil
}

// AccessTTL reports the configured access token lifetime
func (s *AuthService) AccessTTL() time.Duration {
	return s.token.AccessTTL()
}

// Register creates a user account and logs it in
// Email conflicts surface as apperrors.ErrEmailAlreadyExists, that one is
// safe to disclose cause it is the caller's own input
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (models.User, models.TokenPair, error) {
	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return models.User{}, models.TokenPair{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, repository.CreateUserParams{
		Email:        params.Email,
		PasswordHash: hash,
		Name:         params.Name,
		Phone:        params.Phone,
		DateOfBirth:  params.DateOfBirth,
		Gender:       params.Gender,
	})
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	return user, pair, nil
}

// Login verifies email and password and issues a token pair
// Unknown email, wrong password and deactivated account all collapse to
// apperrors.ErrAuthentication so accounts can't be enumerated
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		// Burn a bcrypt comparison anyway to level response time
		_ = s.hasher.Compare(dummyPasswordHash, password)
		return models.User{}, models.TokenPair{}, apperrors.ErrAuthentication
	case err != nil:
		return models.User{}, models.TokenPair{}, fmt.Errorf("error while looking up user. Err: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return models.User{}, models.TokenPair{}, apperrors.ErrAuthentication
	}

	if !user.IsActive {
		return models.User{}, models.TokenPair{}, apperrors.ErrAuthentication
	}

	now := time.Now().Truncate(time.Second)
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// Bookkeeping only, the login itself is fine
		s.logger.Warn("failed to record login time", "user_id", user.ID, "error", err.Error())
	} else {
		user.LastLoginAt = &now
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return models.User{}, models.TokenPair{}, err
	}

	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh access token
// The refresh token itself is not rotated: it and its store entry stay
// valid until their original expiry
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.IssuedToken, error) {
	userID, err := s.token.DecodeRefresh(refresh)
	if err != nil {
		return models.IssuedToken{}, apperrors.ErrInvalidToken
	}

	if !s.revocations.IsValid(ctx, refresh) {
		return models.IssuedToken{}, apperrors.ErrRevokedToken
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.IssuedToken{}, apperrors.ErrInvalidToken
	case err != nil:
		return models.IssuedToken{}, fmt.Errorf("error while looking up user. Err: %w", err)
	}

	if !user.IsActive {
		return models.IssuedToken{}, apperrors.ErrAccountInactive
	}

	access, err := s.token.MintAccess(user)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	return access, nil
}

// Logout revokes the given refresh token
// The token must belong to the authenticated caller, otherwise any valid
// access token could kill someone else's session
func (s *AuthService) Logout(ctx context.Context, refresh string, userID int64) error {
	subject, err := s.token.DecodeRefresh(refresh)
	if err != nil || subject != userID {
		return apperrors.ErrInvalidToken
	}

	if err := s.revocations.Revoke(ctx, refresh); err != nil {
		// The entry still expires on its own at the token TTL
		s.logger.Error("failed to revoke refresh token", "user_id", userID, "error", err.Error())
	}

	return nil
}

// Authorize validates an access token and returns the identity embedded in it
// No database round trip: profile changes may lag behind for at most the
// access token TTL
func (s *AuthService) Authorize(ctx context.Context, access string) (models.Identity, error) {
	return s.token.DecodeAccess(access)
}

// RevokeAll revokes every outstanding refresh token of the user
// Best effort security sweep, see RevocationStore.RevokeAll for the race
// with concurrent logins
func (s *AuthService) RevokeAll(ctx context.Context, userID int64) (int, error) {
	count, err := s.revocations.RevokeAll(ctx, userID)
	if err != nil {
		s.logger.Error("bulk revocation failed", "user_id", userID, "revoked", count, "error", err.Error())
		return count, err
	}

	return count, nil
}

// issuePair mints access and refresh tokens and registers the refresh token
// in the revocation store
// A registration failure is logged but the pair is still returned: we trade
// perfect revocability for availability when the store is down
func (s *AuthService) issuePair(ctx context.Context, user models.User) (models.TokenPair, error) {
	access, err := s.token.MintAccess(user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	refresh, err := s.token.MintRefresh(user)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	if err := s.revocations.Register(ctx, refresh.Value, user.ID, s.token.RefreshTTL()); err != nil {
		s.logger.Warn("failed to register refresh token, it won't be individually revocable",
			"user_id", user.ID, "error", err.Error())
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}
