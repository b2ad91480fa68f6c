package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/domain"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/service"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LoanHandler handles loan-related HTTP requests
type LoanHandler struct {
	loanService *service.LoanService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loanService *service.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// LoanRequest represents the create/update loan request body. Duration
// fields are variant-specific: durationMonths for Finance, durationInDays
// for Tender, durationUnit for InterestRate.
type LoanRequest struct {
	CustomerName   string `json:"customerName"`
	Phone          string `json:"phone"`
	LoanType       string `json:"loanType"`
	LoanAmount     string `json:"loanAmount"`
	GivenAmount    string `json:"givenAmount"`
	StartDate      string `json:"startDate"`
	DurationMonths int32  `json:"durationMonths"`
	DurationInDays int32  `json:"durationInDays"`
	DurationUnit   string `json:"durationUnit"`
	InterestRate   string `json:"interestRate"`
}

func (req LoanRequest) toInput() (service.LoanInput, []ValidationError) {
	var fieldErrors []ValidationError

	amount, err := decimal.NewFromString(req.LoanAmount)
	if err != nil {
		fieldErrors = append(fieldErrors, ValidationError{Field: "loanAmount", Message: "Must be a valid decimal number"})
	}

	givenAmount := amount
	if req.GivenAmount != "" {
		givenAmount, err = decimal.NewFromString(req.GivenAmount)
		if err != nil {
			fieldErrors = append(fieldErrors, ValidationError{Field: "givenAmount", Message: "Must be a valid decimal number"})
		}
	}

	rate, err := decimal.NewFromString(req.InterestRate)
	if err != nil {
		fieldErrors = append(fieldErrors, ValidationError{Field: "interestRate", Message: "Must be a valid decimal number"})
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		fieldErrors = append(fieldErrors, ValidationError{Field: "startDate", Message: "Must be in YYYY-MM-DD format"})
	}

	if fieldErrors != nil {
		return service.LoanInput{}, fieldErrors
	}

	return service.LoanInput{
		CustomerName:   req.CustomerName,
		Phone:          req.Phone,
		LoanType:       domain.LoanType(req.LoanType),
		Amount:         amount,
		GivenAmount:    givenAmount,
		StartDate:      startDate,
		DurationMonths: req.DurationMonths,
		DurationDays:   req.DurationInDays,
		DurationUnit:   util.PeriodUnit(req.DurationUnit),
		InterestRate:   rate,
	}, nil
}

// CreateLoan handles POST /api/v1/loans
func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req LoanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, fieldErrors := req.toInput()
	if fieldErrors != nil {
		return NewValidationError(c, "Invalid loan", fieldErrors)
	}

	loan, err := h.loanService.CreateLoan(input)
	if err != nil {
		return loanError(c, err, "Create loan failed")
	}

	return c.JSON(http.StatusCreated, loan)
}

// GetLoans handles GET /api/v1/loans
func (h *LoanHandler) GetLoans(c echo.Context) error {
	loans, err := h.loanService.ListLoans()
	if err != nil {
		log.Error().Err(err).Msg("List loans failed")
		return NewInternalError(c, "List loans failed")
	}
	return c.JSON(http.StatusOK, loans)
}

// GetLoan handles GET /api/v1/loans/:id
func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	loan, err := h.loanService.GetLoan(id)
	if err != nil {
		return loanError(c, err, "Get loan failed")
	}
	return c.JSON(http.StatusOK, loan)
}

// UpdateLoan handles PUT /api/v1/loans/:id
func (h *LoanHandler) UpdateLoan(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	var req LoanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, fieldErrors := req.toInput()
	if fieldErrors != nil {
		return NewValidationError(c, "Invalid loan", fieldErrors)
	}

	loan, err := h.loanService.UpdateLoan(id, input)
	if err != nil {
		return loanError(c, err, "Update loan failed")
	}
	return c.JSON(http.StatusOK, loan)
}

// DeleteLoan handles DELETE /api/v1/loans/:id
func (h *LoanHandler) DeleteLoan(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	if err := h.loanService.DeleteLoan(id); err != nil {
		return loanError(c, err, "Delete loan failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// TransactionRequest represents the add transaction request body
type TransactionRequest struct {
	Amount      string `json:"amount"`
	PaymentDate string `json:"payment_date"`
	Kind        string `json:"kind"`
}

// AddTransaction handles POST /api/v1/loans/:id/transactions
func (h *LoanHandler) AddTransaction(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	var req TransactionRequest
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

	txn, err := h.loanService.AddTransaction(id, service.TransactionInput{
		Amount:      amount,
		PaymentDate: paymentDate,
		Kind:        domain.TransactionKind(req.Kind),
	})
	if err != nil {
		return loanError(c, err, "Add transaction failed")
	}

	return c.JSON(http.StatusCreated, txn)
}

// LoanMetricsResponse pairs a loan with its derived metrics
type LoanMetricsResponse struct {
	Loan    *domain.Loan       `json:"loan"`
	Metrics domain.LoanMetrics `json:"metrics"`
}

// GetLoanMetrics handles GET /api/v1/loans/:id/metrics
func (h *LoanHandler) GetLoanMetrics(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	asOf, err := asOfDate(c)
	if err != nil {
		return NewValidationError(c, "Invalid asOf date", []ValidationError{
			{Field: "asOf", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	loan, metrics, err := h.loanService.LoanMetrics(id, asOf)
	if err != nil {
		return loanError(c, err, "Get loan metrics failed")
	}

	return c.JSON(http.StatusOK, LoanMetricsResponse{Loan: loan, Metrics: metrics})
}

// ExportLoans handles GET /api/v1/loans/export
func (h *LoanHandler) ExportLoans(c echo.Context) error {
	asOf, err := asOfDate(c)
	if err != nil {
		return NewValidationError(c, "Invalid asOf date", nil)
	}

	data, err := h.loanService.ExportCSV(asOf)
	if err != nil {
		log.Error().Err(err).Msg("Export loans failed")
		return NewInternalError(c, "Export loans failed")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="loans.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}

func loanError(c echo.Context, err error, logMsg string) error {
	switch {
	case errors.Is(err, domain.ErrLoanNotFound):
		return NewNotFoundError(c, "Loan not found")
	case errors.Is(err, domain.ErrLoanCustomerNameEmpty),
		errors.Is(err, domain.ErrLoanCustomerNameTooLong),
		errors.Is(err, domain.ErrLoanAmountInvalid),
		errors.Is(err, domain.ErrLoanGivenAmountInvalid),
		errors.Is(err, domain.ErrLoanDurationInvalid),
		errors.Is(err, domain.ErrLoanUnitInvalid),
		errors.Is(err, domain.ErrLoanPlanMissing),
		errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, err.Error(), nil)
	default:
		log.Error().Err(err).Msg(logMsg)
		return NewInternalError(c, logMsg)
	}
}
