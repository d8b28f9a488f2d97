package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go-society-hub/internal/middleware"
	"go-society-hub/internal/model"
	"go-society-hub/internal/service"
	"go-society-hub/pkg/apierror"
)

type userService interface {
	Register(ctx context.Context, in service.RegisterInput) (int64, error)
	Login(ctx context.Context, in service.LoginInput) (model.LoginResult, error)
	GetProfile(ctx context.Context, userID int64) (model.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, email *string, phone *string) error
	ChangePassword(ctx context.Context, userID int64, currentPassword string, newPassword string) error
}

type UserHandler struct {
	service userService
}

func NewUserHandler(service userService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	userID, err := h.service.Register(r.Context(), service.RegisterInput{
		Username: payload.Username,
		Password: payload.Password,
		Email:    payload.Email,
		Phone:    payload.Phone,
		RoleCode: payload.RoleCode,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, model.RegisterResponse{UserID: userID})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), service.LoginInput{
		Username:  payload.Username,
		Password:  payload.Password,
		ClientIP:  middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, profile)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.UpdateProfileRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.UpdateProfile(r.Context(), userID, payload.Email, payload.Phone); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.MessageResponse{Message: "Profile updated successfully."})
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.ChangePasswordRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), userID, payload.CurrentPassword, payload.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.MessageResponse{Message: "Password changed successfully."})
}

func userIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, apierror.Wrap(model.ErrInvalidInput, "BAD_REQUEST", "user id must be a positive integer", raw, http.StatusBadRequest)
	}
	return userID, nil
}
