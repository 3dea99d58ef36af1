package handlers

import (
	"net/http"

	"github.com/isdelr/budget-manager-be/internal/models"
	"github.com/isdelr/budget-manager-be/internal/models/dto"
	"github.com/isdelr/budget-manager-be/internal/services"
)

// AuthHandler handles HTTP requests for registration, login and passwords.
type AuthHandler struct {
	service services.UserServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.UserServiceProvider) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register handles new user registration and returns a token for the account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.service.Register(r.Context(), services.RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		FullName:    req.FullName,
		Email:       req.Email,
		Village:     req.Village,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		respondServiceError(w, r, err, "register user")
		return
	}
	respondJSON(w, http.StatusOK, dto.TokenResponse{Token: token})
}

// Login handles user authentication and token issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, r, err, "log in")
		return
	}
	respondJSON(w, http.StatusOK, dto.TokenResponse{Token: token})
}

// ChangePassword handles changing the authenticated user's password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request, user models.User) {
	var req dto.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.service.ChangePassword(r.Context(), user, services.ChangePasswordInput{
		CurrentPassword:      req.CurrentPassword,
		NewPassword:          req.NewPassword,
		ConfirmationPassword: req.ConfirmationPassword,
	})
	if err != nil {
		respondServiceError(w, r, err, "change password")
		return
	}
	respondJSON(w, http.StatusOK, dto.MessageResponse{Message: "Password changed successfully"})
}
