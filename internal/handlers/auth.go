package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ridematch/auth-service/internal/apperrors"
	"github.com/ridematch/auth-service/internal/handlers/render"
	"github.com/ridematch/auth-service/internal/handlers/userctx"
	"github.com/ridematch/auth-service/internal/logger"
	"github.com/ridematch/auth-service/internal/models"
	"github.com/ridematch/auth-service/internal/service/auth"
)

type authService interface {
	// Register user, has to return apperrors.ErrEmailAlreadyExists on conflict
	Register(ctx context.Context, params auth.RegisterParams) (models.User, models.TokenPair, error)

	// Login with email and password
	// Every failure (unknown email, wrong password, inactive account) has to
	// come back as apperrors.ErrAuthentication
	Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error)

	// Mint a new access token from a valid refresh token
	Refresh(ctx context.Context, refresh string) (models.IssuedToken, error)

	// Revoke the refresh token, it must belong to userID
	Logout(ctx context.Context, refresh string, userID int64) error

	// Access token lifetime, exposed as expires_in on token responses
	AccessTTL() time.Duration
}

type AuthHandler struct {
	authService authService
	logger      logger.Logger
}

func NewAuth(auth authService, l logger.Logger) *AuthHandler {
	if l == nil {
		l = logger.NewNoOp()
	}
	return &AuthHandler{authService: auth, logger: l}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

type authResponse struct {
	User UserResponse `json:"user"`
	tokenResponse
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Email       string  `json:"email" validate:"required,email"`
		Password    string  `json:"password" validate:"required,min=8,max=128,passwordchars"`
		Name        string  `json:"name" validate:"required,min=2,max=100"`
		Phone       *string `json:"phone" validate:"omitempty,max=20"`
		DateOfBirth *string `json:"date_of_birth" validate:"omitempty,adult"`
		Gender      *string `json:"gender" validate:"omitempty,oneof=male female other prefer_not_to_say"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	var dob *time.Time
	if data.DateOfBirth != nil {
		// Already validated by the 'adult' tag, parse can't fail here
		parsed, _ := time.Parse(render.DateLayout, *data.DateOfBirth)
		dob = &parsed
	}

	user, pair, err := h.authService.Register(r.Context(), auth.RegisterParams{
		Email:       data.Email,
		Password:    data.Password,
		Name:        data.Name,
		Phone:       data.Phone,
		DateOfBirth: dob,
		Gender:      data.Gender,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrEmailAlreadyExists):
			render.ServiceError(w, "Email already registered", http.StatusConflict)
		default:
			h.logger.Warn("registration failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, h.newAuthResponse(user, pair), http.StatusCreated)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	user, pair, err := h.authService.Login(r.Context(), data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAuthentication):
			render.ServiceError(w, "Invalid email or password", http.StatusUnauthorized)
		default:
			h.logger.Warn("login failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, h.newAuthResponse(user, pair))
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	type RefreshRequest struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	data, err := render.BindAndValidate[RefreshRequest](w, r)
	if err != nil {
		return
	}

	access, err := h.authService.Refresh(r.Context(), data.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrRevokedToken):
			render.ServiceError(w, "Refresh token has been revoked", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrInvalidToken):
			render.ServiceError(w, "Invalid or expired refresh token", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrAccountInactive):
			render.ServiceError(w, "Account is deactivated", http.StatusForbidden)
		default:
			h.logger.Warn("token refresh failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, tokenResponse{
		AccessToken: access.Value,
		TokenType:   "bearer",
		ExpiresIn:   int(h.authService.AccessTTL().Seconds()),
	})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	type RefreshRequest struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	type LogoutSuccessResponse struct {
		Message string `json:"message"`
	}

	identity, _ := userctx.FromContext(r.Context())

	data, err := render.BindAndValidate[RefreshRequest](w, r)
	if err != nil {
		return
	}

	err = h.authService.Logout(r.Context(), data.RefreshToken, identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidToken):
			render.ServiceError(w, "Invalid refresh token", http.StatusBadRequest)
		default:
			h.logger.Warn("logout failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, LogoutSuccessResponse{Message: "Successfully logged out"})
}

func (h *AuthHandler) newAuthResponse(user models.User, pair models.TokenPair) authResponse {
	return authResponse{
		User: newUserResponse(user),
		tokenResponse: tokenResponse{
			AccessToken:  pair.Access.Value,
			RefreshToken: pair.Refresh.Value,
			TokenType:    "bearer",
			ExpiresIn:    int(h.authService.AccessTTL().Seconds()),
		},
	}
}
