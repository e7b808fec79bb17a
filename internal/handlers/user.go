package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ridematch/auth-service/internal/apperrors"
	"github.com/ridematch/auth-service/internal/handlers/render"
	"github.com/ridematch/auth-service/internal/handlers/userctx"
	"github.com/ridematch/auth-service/internal/logger"
	"github.com/ridematch/auth-service/internal/models"
	"github.com/ridematch/auth-service/internal/repository"
)

type userService interface {
	GetByID(ctx context.Context, userID int64) (models.User, error)
	UpdateProfile(ctx context.Context, userID int64, params repository.UpdateProfileParams) (models.User, error)
}

type sessionRevoker interface {
	RevokeAll(ctx context.Context, userID int64) (int, error)
}

type UserHandler struct {
	userService userService
	revoker     sessionRevoker
	logger      logger.Logger
}

func NewUser(users userService, revoker sessionRevoker, l logger.Logger) *UserHandler {
	if l == nil {
		l = logger.NewNoOp()
	}
	return &UserHandler{userService: users, revoker: revoker, logger: l}
}

// me returns the authenticated user's full profile
func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	identity, _ := userctx.FromContext(r.Context())

	user, err := h.userService.GetByID(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			h.logger.Warn("profile lookup failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, newUserResponse(user))
}

// updateMe changes the authenticated user's profile
// Only whitelisted fields are bound from the request, anything else in the
// body is ignored
func (h *UserHandler) updateMe(w http.ResponseWriter, r *http.Request) {
	type UpdateProfileRequest struct {
		Name        *string             `json:"name" validate:"omitempty,min=2,max=100"`
		Phone       *string             `json:"phone" validate:"omitempty,max=20"`
		DateOfBirth *string             `json:"date_of_birth" validate:"omitempty,adult"`
		Gender      *string             `json:"gender" validate:"omitempty,oneof=male female other prefer_not_to_say"`
		Preferences *models.Preferences `json:"preferences"`
	}

	identity, _ := userctx.FromContext(r.Context())

	data, err := render.BindAndValidate[UpdateProfileRequest](w, r)
	if err != nil {
		return
	}

	var dob *time.Time
	if data.DateOfBirth != nil {
		parsed, _ := time.Parse(render.DateLayout, *data.DateOfBirth)
		dob = &parsed
	}

	user, err := h.userService.UpdateProfile(r.Context(), identity.UserID, repository.UpdateProfileParams{
		Name:        data.Name,
		Phone:       data.Phone,
		DateOfBirth: dob,
		Gender:      data.Gender,
		Preferences: data.Preferences,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			h.logger.Warn("profile update failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, newUserResponse(user))
}

// getUser returns the public profile of any user
func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		render.ServiceError(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			h.logger.Warn("user lookup failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, newPublicUserResponse(user))
}

// revokeAll force-logs-out every session of a user, admin only
func (h *UserHandler) revokeAll(w http.ResponseWriter, r *http.Request) {
	type RevokeAllResponse struct {
		Revoked int `json:"revoked"`
	}

	identity, _ := userctx.FromContext(r.Context())
	if !identity.IsAdmin {
		render.ServiceError(w, "Admin access required", http.StatusForbidden)
		return
	}

	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		render.ServiceError(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	count, err := h.revoker.RevokeAll(r.Context(), userID)
	if err != nil {
		h.logger.Warn("bulk revocation failed", "user_id", userID, "error", err.Error())
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, RevokeAllResponse{Revoked: count})
}
