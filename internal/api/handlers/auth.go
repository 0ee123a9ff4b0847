package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/dom/reader/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type RegisterRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	TermsAgreedTo bool   `json:"termsAgreedTo"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Code            string `json:"code"`
}

type AuthResponse struct {
	IsAuthSuccessful bool   `json:"isAuthSuccessful"`
	ErrorMessage     string `json:"errorMessage,omitempty"`
	Token            string `json:"token,omitempty"`
}

const (
	msgEmailRequired      = "Email is required."
	msgEmailTaken         = "Email is taken, please try with a different email address!"
	msgTermsRequired      = "Terms and Conditions are required."
	msgUserNotFound       = "User not found"
	msgInvalidCredentials = "Email or password is incorrect."
)

// Register godoc
// @Summary Register a new account
// @Description Creates the account, signs the user in and emails a confirmation link
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration details"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} AuthResponse
// @Failure 500 {string} string "Server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{ErrorMessage: "Invalid request body"})
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		Email:         req.Email,
		Password:      req.Password,
		TermsAgreedTo: req.TermsAgreedTo,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailRequired):
			writeJSON(w, http.StatusBadRequest, AuthResponse{ErrorMessage: msgEmailRequired})
		case errors.Is(err, service.ErrEmailTaken):
			writeJSON(w, http.StatusBadRequest, AuthResponse{ErrorMessage: msgEmailTaken})
		case errors.Is(err, service.ErrTermsRequired):
			writeJSON(w, http.StatusBadRequest, AuthResponse{ErrorMessage: msgTermsRequired})
		case errors.Is(err, service.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, AuthResponse{ErrorMessage: err.Error()})
		default:
			log.Printf("ERROR [auth.Register]: %v", err)
			writeInternalError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		IsAuthSuccessful: true,
		Token:            result.Token,
	})
}

// Login godoc
// @Summary Sign in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} AuthResponse
// @Failure 404 {object} AuthResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{ErrorMessage: "Invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, AuthResponse{ErrorMessage: "Email and password are required."})
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, AuthResponse{ErrorMessage: msgUserNotFound})
		case errors.Is(err, service.ErrInvalidCredentials):
			writeJSON(w, http.StatusBadRequest, AuthResponse{ErrorMessage: msgInvalidCredentials})
		default:
			log.Printf("ERROR [auth.Login]: %v", err)
			writeInternalError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		IsAuthSuccessful: true,
		Token:            result.Token,
	})
}

// ForgotPassword godoc
// @Summary Email a password reset link
// @Tags Auth
// @Param email query string true "Account email"
// @Success 200
// @Failure 400 {string} string "Email is required"
// @Failure 404 {string} string "User not found"
// @Failure 500 {string} string "Email could not be sent"
// @Router /auth/ForgotPassword [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	err := h.authService.ForgotPassword(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailRequired):
			http.Error(w, "Email is required", http.StatusBadRequest)
		case errors.Is(err, service.ErrUserNotFound):
			http.Error(w, msgUserNotFound, http.StatusNotFound)
		default:
			log.Printf("ERROR [auth.ForgotPassword]: %v", err)
			writeInternalError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

// ResendEmailConfirmation godoc
// @Summary Email a fresh confirmation link
// @Tags Auth
// @Param email query string true "Account email"
// @Success 200
// @Failure 400 {string} string "Email is required"
// @Failure 404 {string} string "User not found"
// @Router /auth/ResendEmailConfirmation [post]
func (h *AuthHandler) ResendEmailConfirmation(w http.ResponseWriter, r *http.Request) {
	err := h.authService.ResendEmailConfirmation(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailRequired):
			http.Error(w, "Email is required", http.StatusBadRequest)
		case errors.Is(err, service.ErrUserNotFound):
			http.Error(w, msgUserNotFound, http.StatusNotFound)
		default:
			log.Printf("ERROR [auth.ResendEmailConfirmation]: %v", err)
			writeInternalError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

// ResetPassword godoc
// @Summary Set a new password with a reset code
// @Tags Auth
// @Accept json
// @Param request body ResetPasswordRequest true "Reset details"
// @Success 200
// @Failure 400 {string} string "Invalid input or code"
// @Failure 404 {string} string "User not found"
// @Router /auth/ResetPassword [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := h.authService.ResetPassword(r.Context(), service.ResetPasswordInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Code:            req.Code,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailRequired):
			http.Error(w, "Email is required", http.StatusBadRequest)
		case errors.Is(err, service.ErrPasswordRequired):
			http.Error(w, "Password is missing.", http.StatusBadRequest)
		case errors.Is(err, service.ErrCodeRequired):
			http.Error(w, "Code is missing", http.StatusBadRequest)
		case errors.Is(err, service.ErrPasswordsDiffer):
			http.Error(w, "Password's do not match.", http.StatusBadRequest)
		case errors.Is(err, service.ErrInvalidInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, service.ErrUserNotFound):
			http.Error(w, msgUserNotFound, http.StatusNotFound)
		case errors.Is(err, service.ErrInvalidCode):
			w.WriteHeader(http.StatusBadRequest)
		default:
			log.Printf("ERROR [auth.ResetPassword]: %v", err)
			writeInternalError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

// ConfirmEmail godoc
// @Summary Confirm an email address
// @Tags Auth
// @Param userId query string true "User id"
// @Param code query string true "Confirmation code from the email link"
// @Success 200
// @Failure 400
// @Failure 404
// @Failure 500 {string} string "Server error"
// @Router /auth/ConfirmEmail [post]
func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	err := h.authService.ConfirmEmail(r.Context(), query.Get("userId"), query.Get("code"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCodeRequired):
			http.Error(w, "Code is required", http.StatusBadRequest)
		case errors.Is(err, service.ErrUserIDRequired):
			http.Error(w, "UserId is required", http.StatusBadRequest)
		case errors.Is(err, service.ErrUserNotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, service.ErrInvalidCode):
			w.WriteHeader(http.StatusBadRequest)
		default:
			log.Printf("ERROR [auth.ConfirmEmail]: %v", err)
			writeInternalError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}
