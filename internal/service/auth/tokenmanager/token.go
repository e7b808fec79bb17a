package tokenmanager

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ridematch/auth-service/internal/apperrors"
	"github.com/ridematch/auth-service/internal/models"
)

const (
	defaultSigningMethod   = "HS256"
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims of the short-lived access token
// Identity is embedded so protected calls need no database round trip
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	TokenType string `json:"type"`
}

// Claims of the long-lived refresh token
// Carries the subject only, everything else is looked up at refresh time
type RefreshTokenClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"`
}

// Token manager config with sensible defaults
type Config struct {
	// Secret key to sign token payloads
	// Required to be set. Rotating it invalidates every issued token
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set then default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set then default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenManager mints and decodes signed expiring tokens
// Pure codec: it holds no record of issued tokens, revocation tracking
// lives in the revocation store
type TokenManager struct {
	key string
	alg jwt.SigningMethod

	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenManager{
		key:        cfg.SecretKey,
		alg:        jwt.GetSigningMethod(cfg.Alg),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

func (m *TokenManager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

// MintAccess issues a signed access token carrying the user identity
func (m *TokenManager) MintAccess(user models.User) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.accessTTL)

	token := jwt.NewWithClaims(
		m.alg,
		AccessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   strconv.FormatInt(user.ID, 10),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			Email:     user.Email,
			IsAdmin:   user.IsAdmin,
			TokenType: models.TokenKindAccess,
		},
	)
	signed, err := token.SignedString([]byte(m.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// MintRefresh issues a signed refresh token for the user
func (m *TokenManager) MintRefresh(user models.User) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.refreshTTL)

	token := jwt.NewWithClaims(
		m.alg,
		RefreshTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   strconv.FormatInt(user.ID, 10),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			TokenType: models.TokenKindRefresh,
		},
	)
	signed, err := token.SignedString([]byte(m.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing refresh token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// DecodeAccess parses and validates an access token and returns the identity
// embedded in it
// Every failure (malformed token, bad signature, wrong kind, expired) comes
// back as the same apperrors.ErrInvalidToken so the codec can't be used as an
// oracle
func (m *TokenManager) DecodeAccess(access string) (models.Identity, error) {
	claims := &AccessTokenClaims{}
	if err := m.parse(access, claims); err != nil {
		return models.Identity{}, apperrors.ErrInvalidToken
	}

	if claims.TokenType != models.TokenKindAccess {
		return models.Identity{}, apperrors.ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return models.Identity{}, apperrors.ErrInvalidToken
	}

	return models.Identity{
		UserID:  userID,
		Email:   claims.Email,
		IsAdmin: claims.IsAdmin,
	}, nil
}

// DecodeRefresh parses and validates a refresh token and returns the bare
// subject id
// Fails the same way DecodeAccess does: one error for every cause
func (m *TokenManager) DecodeRefresh(refresh string) (int64, error) {
	claims := &RefreshTokenClaims{}
	if err := m.parse(refresh, claims); err != nil {
		return 0, apperrors.ErrInvalidToken
	}

	if claims.TokenType != models.TokenKindRefresh {
		return 0, apperrors.ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, apperrors.ErrInvalidToken
	}

	return userID, nil
}

// parse verifies signature and expiry
// No leeway: a token presented exactly at its expiry instant is expired
func (m *TokenManager) parse(token string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(m.key), nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return err
}
