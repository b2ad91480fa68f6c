package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/domain"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/middleware"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/service"
	"github.com/rs/zerolog/log"
)

// AdminHandler handles admin account HTTP requests
type AdminHandler struct {
	userService *service.UserService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(userService *service.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

// CreateAdminRequest represents the create admin request body
type CreateAdminRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// CreateAdmin handles POST /api/v1/admins
func (h *AdminHandler) CreateAdmin(c echo.Context) error {
	var req CreateAdminRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.userService.CreateAdmin(service.CreateAdminInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return NewConflictError(c, "Email already registered")
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Invalid email or password", nil)
		}
		log.Error().Err(err).Msg("Create admin failed")
		return NewInternalError(c, "Create admin failed")
	}

	return c.JSON(http.StatusCreated, user)
}

// ListAdmins handles GET /api/v1/admins
func (h *AdminHandler) ListAdmins(c echo.Context) error {
	users, err := h.userService.ListAdmins()
	if err != nil {
		log.Error().Err(err).Msg("List admins failed")
		return NewInternalError(c, "List admins failed")
	}
	return c.JSON(http.StatusOK, users)
}

// DeleteAdmin handles DELETE /api/v1/admins/:id
func (h *AdminHandler) DeleteAdmin(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid admin ID", nil)
	}

	// Deleting your own account would strand the session mid-flight
	if user := middleware.GetUser(c); user != nil && user.ID == id {
		return NewConflictError(c, "Cannot delete the account you are logged in with")
	}

	if err := h.userService.DeleteAdmin(id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "Admin not found")
		}
		if errors.Is(err, service.ErrLastAdmin) {
			return NewConflictError(c, "Cannot delete the last admin account")
		}
		log.Error().Err(err).Msg("Delete admin failed")
		return NewInternalError(c, "Delete admin failed")
	}

	return c.NoContent(http.StatusNoContent)
}
