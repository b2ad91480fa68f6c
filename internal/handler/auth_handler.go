package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/domain"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/middleware"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/service"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	email       service.EmailSender
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService, email service.EmailSender) *AuthHandler {
	return &AuthHandler{authService: authService, email: email}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return NewUnauthorizedError(c, "Invalid email or password")
		}
		log.Error().Err(err).Msg("Login failed")
		return NewInternalError(c, "Login failed")
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      result.User,
	})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	user := middleware.GetUser(c)
	if user == nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if err := h.authService.Logout(user.ID); err != nil {
		log.Error().Err(err).Msg("Logout failed")
		return NewInternalError(c, "Logout failed")
	}

	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	user := middleware.GetUser(c)
	if user == nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	return c.JSON(http.StatusOK, user)
}

// ChangePasswordRequest represents the change password request body
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword handles POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	user := middleware.GetUser(c)
	if user == nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	err := h.authService.ChangePassword(user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return NewUnauthorizedError(c, "Current password is incorrect")
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "New password must be at least 8 characters", []ValidationError{
				{Field: "newPassword", Message: "Must be at least 8 characters"},
			})
		}
		log.Error().Err(err).Msg("Change password failed")
		return NewInternalError(c, "Change password failed")
	}

	return c.NoContent(http.StatusNoContent)
}

// ForgotPasswordRequest represents the forgot password request body
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword handles POST /api/v1/auth/forgot-password.
// Always answers 204 so the endpoint cannot be used to probe for accounts.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	token, user, err := h.authService.ForgotPassword(req.Email)
	if err != nil {
		log.Error().Err(err).Msg("Forgot password failed")
		return NewInternalError(c, "Forgot password failed")
	}

	if user != nil {
		body := "Your password reset code is: " + token + "\n\nIt expires in 30 minutes."
		if err := h.email.Send([]string{user.Email}, "Password reset", body); err != nil {
			log.Warn().Err(err).Msg("Reset mail delivery failed")
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// ResetPasswordRequest represents the reset password request body
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword handles POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	err := h.authService.ResetPassword(req.Email, req.Token, req.NewPassword)
	if err != nil {
		if errors.Is(err, domain.ErrResetTokenInvalid) {
			return NewUnauthorizedError(c, "Reset token is invalid or expired")
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "New password must be at least 8 characters", []ValidationError{
				{Field: "newPassword", Message: "Must be at least 8 characters"},
			})
		}
		log.Error().Err(err).Msg("Reset password failed")
		return NewInternalError(c, "Reset password failed")
	}

	return c.NoContent(http.StatusNoContent)
}
