package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/domain"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/util"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://srivinayakatenders.app/errors/validation"
	ErrorTypeNotFound     = "https://srivinayakatenders.app/errors/not-found"
	ErrorTypeUnauthorized = "https://srivinayakatenders.app/errors/unauthorized"
	ErrorTypeForbidden    = "https://srivinayakatenders.app/errors/forbidden"
	ErrorTypeConflict     = "https://srivinayakatenders.app/errors/conflict"
	ErrorTypeInternal     = "https://srivinayakatenders.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// parseIDParam parses the :id path parameter
func parseIDParam(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidInput
	}
	return int32(id), nil
}

// parseDate parses a YYYY-MM-DD date string
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// asOfDate reads the optional asOf query parameter, defaulting to today.
// All derived metrics are computed relative to this date.
func asOfDate(c echo.Context) (time.Time, error) {
	raw := c.QueryParam("asOf")
	if raw == "" {
		return util.Midnight(time.Now().UTC()), nil
	}
	parsed, err := parseDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	return parsed, nil
}

// loanTypeFilter reads the optional type query parameter
func loanTypeFilter(c echo.Context) (*domain.LoanType, error) {
	raw := c.QueryParam("type")
	if raw == "" {
		return nil, nil
	}
	loanType := domain.LoanType(raw)
	switch loanType {
	case domain.LoanTypeFinance, domain.LoanTypeTender, domain.LoanTypeInterestRate:
		return &loanType, nil
	default:
		return nil, domain.ErrInvalidInput
	}
}
