package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/dom/reader/internal/api/middleware"
	"github.com/dom/reader/internal/domain"
	"github.com/dom/reader/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type UpdatePreferencesRequest struct {
	EmailNotificationsEnabled *bool `json:"emailNotificationsEnabled"`
}

// UserResponse is the caller's own profile.
type UserResponse struct {
	ID                        string    `json:"id"`
	Email                     string    `json:"email"`
	EmailConfirmed            bool      `json:"emailConfirmed"`
	JoinedOn                  time.Time `json:"joinedOn"`
	EmailNotificationsEnabled bool      `json:"emailNotificationsEnabled"`
	Roles                     []string  `json:"roles"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:                        u.ID,
		Email:                     u.Email,
		EmailConfirmed:            u.EmailConfirmed,
		JoinedOn:                  u.JoinedOn,
		EmailNotificationsEnabled: u.EmailNotificationsEnabled,
		Roles:                     u.RoleNames(),
	}
}

// Me godoc
// @Summary Current user profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {string} string "User not found"
// @Router /users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			http.Error(w, msgUserNotFound, http.StatusNotFound)
			return
		}
		log.Printf("ERROR [users.Me] userID=%s: %v", userID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// ChangePassword godoc
// @Summary Change the caller's password
// @Tags Users
// @Accept json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Old and new password"
// @Success 200
// @Failure 400 {string} string "Invalid password"
// @Failure 401 {string} string "Unauthorized"
// @Router /users/ChangePassword [put]
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := h.userService.ChangePassword(r.Context(), userID, service.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordRequired):
			http.Error(w, "Old and new password are required.", http.StatusBadRequest)
		case errors.Is(err, service.ErrInvalidCredentials):
			http.Error(w, "Old password is incorrect.", http.StatusBadRequest)
		case errors.Is(err, service.ErrInvalidInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, service.ErrUserNotFound):
			http.Error(w, msgUserNotFound, http.StatusNotFound)
		default:
			log.Printf("ERROR [users.ChangePassword] userID=%s: %v", userID, err)
			writeInternalError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

// UpdatePreferences godoc
// @Summary Update notification preferences
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdatePreferencesRequest true "Preferences"
// @Success 200 {object} UserResponse
// @Failure 400 {string} string "Invalid request body"
// @Router /users/preferences [put]
func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EmailNotificationsEnabled == nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.SetEmailNotifications(r.Context(), userID, *req.EmailNotificationsEnabled)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			http.Error(w, msgUserNotFound, http.StatusNotFound)
			return
		}
		log.Printf("ERROR [users.UpdatePreferences] userID=%s: %v", userID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
