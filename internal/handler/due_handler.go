package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/service"
	"github.com/rs/zerolog/log"
)

// DueHandler handles due-date and delinquency HTTP requests
type DueHandler struct {
	dueService      *service.DueService
	notPayingMonths int
}

// NewDueHandler creates a new DueHandler
func NewDueHandler(dueService *service.DueService, notPayingMonths int) *DueHandler {
	return &DueHandler{
		dueService:      dueService,
		notPayingMonths: notPayingMonths,
	}
}

// GetDue handles GET /api/v1/due. The date query parameter defaults to
// today; type optionally restricts to one plan.
func (h *DueHandler) GetDue(c echo.Context) error {
	date, err := asOfDate(c)
	if err != nil {
		return NewValidationError(c, "Invalid asOf date", nil)
	}
	if raw := c.QueryParam("date"); raw != "" {
		date, err = parseDate(raw)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
	}

	typeFilter, err := loanTypeFilter(c)
	if err != nil {
		return NewValidationError(c, "Invalid loan type", []ValidationError{
			{Field: "type", Message: "Must be Finance, Tender, or InterestRate"},
		})
	}

	loans, err := h.dueService.DueOn(date, typeFilter)
	if err != nil {
		log.Error().Err(err).Msg("Due report failed")
		return NewInternalError(c, "Due report failed")
	}
	return c.JSON(http.StatusOK, loans)
}

// GetNotPaying handles GET /api/v1/due/not-paying. The months threshold is
// configurable per request and defaults to the configured value.
func (h *DueHandler) GetNotPaying(c echo.Context) error {
	asOf, err := asOfDate(c)
	if err != nil {
		return NewValidationError(c, "Invalid asOf date", nil)
	}

	months := h.notPayingMonths
	if raw := c.QueryParam("months"); raw != "" {
		months, err = strconv.Atoi(raw)
		if err != nil || months < 1 {
			return NewValidationError(c, "Invalid months threshold", []ValidationError{
				{Field: "months", Message: "Must be a positive integer"},
			})
		}
	}

	typeFilter, err := loanTypeFilter(c)
	if err != nil {
		return NewValidationError(c, "Invalid loan type", []ValidationError{
			{Field: "type", Message: "Must be Finance, Tender, or InterestRate"},
		})
	}

	result, err := h.dueService.NotPayingFor(asOf, months, typeFilter)
	if err != nil {
		log.Error().Err(err).Msg("Delinquency report failed")
		return NewInternalError(c, "Delinquency report failed")
	}
	return c.JSON(http.StatusOK, result)
}
