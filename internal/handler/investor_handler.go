package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/domain"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// InvestorHandler handles investor-related HTTP requests
type InvestorHandler struct {
	investorService *service.InvestorService
}

// NewInvestorHandler creates a new InvestorHandler
func NewInvestorHandler(investorService *service.InvestorService) *InvestorHandler {
	return &InvestorHandler{investorService: investorService}
}

// InvestorRequest represents the create/update investor request body
type InvestorRequest struct {
	Name             string `json:"name"`
	InvestmentType   string `json:"investmentType"`
	InvestmentAmount string `json:"investmentAmount"`
	ProfitRate       string `json:"profitRate"`
	StartDate        string `json:"startDate"`
}

func (req InvestorRequest) toInput() (service.InvestorInput, []ValidationError) {
	var fieldErrors []ValidationError

	amount, err := decimal.NewFromString(req.InvestmentAmount)
	if err != nil {
		fieldErrors = append(fieldErrors, ValidationError{Field: "investmentAmount", Message: "Must be a valid decimal number"})
	}

	rate, err := decimal.NewFromString(req.ProfitRate)
	if err != nil {
		fieldErrors = append(fieldErrors, ValidationError{Field: "profitRate", Message: "Must be a valid decimal number"})
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		fieldErrors = append(fieldErrors, ValidationError{Field: "startDate", Message: "Must be in YYYY-MM-DD format"})
	}

	if fieldErrors != nil {
		return service.InvestorInput{}, fieldErrors
	}

	return service.InvestorInput{
		Name:             req.Name,
		InvestmentType:   domain.InvestmentType(req.InvestmentType),
		InvestmentAmount: amount,
		ProfitRate:       rate,
		StartDate:        startDate,
	}, nil
}

// CreateInvestor handles POST /api/v1/investors
func (h *InvestorHandler) CreateInvestor(c echo.Context) error {
	var req InvestorRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, fieldErrors := req.toInput()
	if fieldErrors != nil {
		return NewValidationError(c, "Invalid investor", fieldErrors)
	}

	investor, err := h.investorService.CreateInvestor(input)
	if err != nil {
		return investorError(c, err, "Create investor failed")
	}

	return c.JSON(http.StatusCreated, investor)
}

// GetInvestors handles GET /api/v1/investors
func (h *InvestorHandler) GetInvestors(c echo.Context) error {
	investors, err := h.investorService.ListInvestors()
	if err != nil {
		log.Error().Err(err).Msg("List investors failed")
		return NewInternalError(c, "List investors failed")
	}
	return c.JSON(http.StatusOK, investors)
}

// InvestorMetricsResponse pairs an investor with their derived standing
type InvestorMetricsResponse struct {
	Investor *domain.Investor       `json:"investor"`
	Metrics  domain.InvestorMetrics `json:"metrics"`
}

// GetInvestor handles GET /api/v1/investors/:id
func (h *InvestorHandler) GetInvestor(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid investor ID", nil)
	}

	asOf, err := asOfDate(c)
	if err != nil {
		return NewValidationError(c, "Invalid asOf date", nil)
	}

	investor, metrics, err := h.investorService.InvestorMetrics(id, asOf)
	if err != nil {
		return investorError(c, err, "Get investor failed")
	}

	return c.JSON(http.StatusOK, InvestorMetricsResponse{Investor: investor, Metrics: metrics})
}

// UpdateInvestor handles PUT /api/v1/investors/:id
func (h *InvestorHandler) UpdateInvestor(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid investor ID", nil)
	}

	var req InvestorRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, fieldErrors := req.toInput()
	if fieldErrors != nil {
		return NewValidationError(c, "Invalid investor", fieldErrors)
	}

	investor, err := h.investorService.UpdateInvestor(id, input)
	if err != nil {
		return investorError(c, err, "Update investor failed")
	}
	return c.JSON(http.StatusOK, investor)
}

// DeleteInvestor handles DELETE /api/v1/investors/:id
func (h *InvestorHandler) DeleteInvestor(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid investor ID", nil)
	}

	if err := h.investorService.DeleteInvestor(id); err != nil {
		return investorError(c, err, "Delete investor failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// PaymentRequest represents the add payment request body
type PaymentRequest struct {
	Amount      string `json:"amount"`
	PaymentDate string `json:"payment_date"`
	PaymentType string `json:"payment_type"`
}

// AddPayment handles POST /api/v1/investors/:id/payments
func (h *InvestorHandler) AddPayment(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid investor ID", nil)
	}

	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		return NewValidationError(c, "Invalid payment date", []ValidationError{
			{Field: "payment_date", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	payment, err := h.investorService.AddPayment(id, service.PaymentInput{
		Amount:      amount,
		PaymentDate: paymentDate,
		PaymentType: domain.PaymentType(req.PaymentType),
	})
	if err != nil {
		return investorError(c, err, "Add payment failed")
	}

	return c.JSON(http.StatusCreated, payment)
}

// CloseInvestor handles POST /api/v1/investors/:id/close
func (h *InvestorHandler) CloseInvestor(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid investor ID", nil)
	}

	investor, err := h.investorService.CloseInvestor(id)
	if err != nil {
		return investorError(c, err, "Close investor failed")
	}
	return c.JSON(http.StatusOK, investor)
}

// GetSummary handles GET /api/v1/investors/summary
func (h *InvestorHandler) GetSummary(c echo.Context) error {
	asOf, err := asOfDate(c)
	if err != nil {
		return NewValidationError(c, "Invalid asOf date", nil)
	}

	summary, err := h.investorService.Summary(asOf)
	if err != nil {
		log.Error().Err(err).Msg("Investor summary failed")
		return NewInternalError(c, "Investor summary failed")
	}
	return c.JSON(http.StatusOK, summary)
}

func investorError(c echo.Context, err error, logMsg string) error {
	switch {
	case errors.Is(err, domain.ErrInvestorNotFound):
		return NewNotFoundError(c, "Investor not found")
	case errors.Is(err, domain.ErrInvestorClosed):
		return NewConflictError(c, "Investor account is closed")
	case errors.Is(err, domain.ErrInvestorNameEmpty),
		errors.Is(err, domain.ErrInvestorNameTooLong),
		errors.Is(err, domain.ErrInvestorAmountInvalid),
		errors.Is(err, domain.ErrInvestorRateInvalid),
		errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, err.Error(), nil)
	default:
		log.Error().Err(err).Msg(logMsg)
		return NewInternalError(c, logMsg)
	}
}
