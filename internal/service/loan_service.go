package service

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/ravi5775/sri-vinayaka-tenders/internal/domain"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/util"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/websocket"
	"github.com/shopspring/decimal"
)

// LoanService handles loan business logic
type LoanService struct {
	loanRepo  domain.LoanRepository
	publisher websocket.EventPublisher
}

// NewLoanService creates a new LoanService
func NewLoanService(loanRepo domain.LoanRepository, publisher websocket.EventPublisher) *LoanService {
	return &LoanService{
		loanRepo:  loanRepo,
		publisher: publisher,
	}
}

// LoanInput contains input for creating or updating a loan
type LoanInput struct {
	CustomerName   string
	Phone          string
	LoanType       domain.LoanType
	Amount         decimal.Decimal
	GivenAmount    decimal.Decimal
	StartDate      time.Time
	DurationMonths int32
	DurationDays   int32
	DurationUnit   util.PeriodUnit
	InterestRate   decimal.Decimal
}

func (in LoanInput) toLoan() (*domain.Loan, error) {
	plan, err := domain.NewPlan(in.LoanType, in.DurationMonths, in.DurationDays, in.DurationUnit, in.InterestRate)
	if err != nil {
		return nil, err
	}

	loan := &domain.Loan{
		CustomerName: strings.TrimSpace(in.CustomerName),
		Phone:        strings.TrimSpace(in.Phone),
		Amount:       in.Amount,
		GivenAmount:  in.GivenAmount,
		StartDate:    util.Midnight(in.StartDate),
		Plan:         plan,
	}
	if err := loan.Validate(); err != nil {
		return nil, err
	}
	return loan, nil
}

// CreateLoan validates and creates a new loan
func (s *LoanService) CreateLoan(input LoanInput) (*domain.Loan, error) {
	loan, err := input.toLoan()
	if err != nil {
		return nil, err
	}

	created, err := s.loanRepo.Create(loan)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(websocket.LoanCreated(created))
	return created, nil
}

// GetLoan retrieves a loan by ID
func (s *LoanService) GetLoan(id int32) (*domain.Loan, error) {
	return s.loanRepo.GetByID(id)
}

// ListLoans retrieves every live loan
func (s *LoanService) ListLoans() ([]*domain.Loan, error) {
	return s.loanRepo.GetAll()
}

// UpdateLoan replaces the editable fields of a loan
func (s *LoanService) UpdateLoan(id int32, input LoanInput) (*domain.Loan, error) {
	loan, err := input.toLoan()
	if err != nil {
		return nil, err
	}
	loan.ID = id

	updated, err := s.loanRepo.Update(loan)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(websocket.LoanUpdated(updated))
	return updated, nil
}

// DeleteLoan soft-deletes a loan
func (s *LoanService) DeleteLoan(id int32) error {
	if err := s.loanRepo.SoftDelete(id); err != nil {
		return err
	}

	s.publisher.Publish(websocket.LoanDeleted(map[string]int32{"id": id}))
	return nil
}

// TransactionInput contains input for recording a repayment
type TransactionInput struct {
	Amount      decimal.Decimal
	PaymentDate time.Time
	Kind        domain.TransactionKind
}

// AddTransaction records a repayment against a loan. Negative and
// overpaying amounts are accepted; the engine carries them through as-is
// so corrections stay representable.
func (s *LoanService) AddTransaction(loanID int32, input TransactionInput) (*domain.Transaction, error) {
	switch input.Kind {
	case domain.KindRepayment, domain.KindInterest, domain.KindPrincipal:
	default:
		return nil, domain.ErrInvalidInput
	}

	// The loan must exist and be live before recording against it
	if _, err := s.loanRepo.GetByID(loanID); err != nil {
		return nil, err
	}

	txn := &domain.Transaction{
		LoanID:      loanID,
		Amount:      input.Amount,
		PaymentDate: util.Midnight(input.PaymentDate),
		Kind:        input.Kind,
	}

	created, err := s.loanRepo.AddTransaction(txn)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(websocket.TransactionAdded(created))
	return created, nil
}

// LoanMetrics derives a loan's read-only metrics as of a reference date
func (s *LoanService) LoanMetrics(id int32, asOf time.Time) (*domain.Loan, domain.LoanMetrics, error) {
	loan, err := s.loanRepo.GetByID(id)
	if err != nil {
		return nil, domain.LoanMetrics{}, err
	}
	return loan, loan.Metrics(asOf), nil
}

// ExportCSV renders the loan book as CSV, one row per loan with its derived
// metrics as of the reference date.
func (s *LoanService) ExportCSV(asOf time.Time) ([]byte, error) {
	loans, err := s.loanRepo.GetAll()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"ID", "Customer", "Phone", "Type", "Loan Amount", "Given Amount",
		"Start Date", "Interest Rate", "Total Amount", "Amount Paid", "Balance", "Status", "Next Due Date"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, loan := range loans {
		metrics := loan.Metrics(asOf)

		nextDue := ""
		if metrics.NextDueDate != nil {
			nextDue = metrics.NextDueDate.Format("2006-01-02")
		}

		row := []string{
			strconv.Itoa(int(loan.ID)),
			loan.CustomerName,
			loan.Phone,
			string(loan.Type()),
			loan.Amount.String(),
			loan.GivenAmount.String(),
			loan.StartDate.Format("2006-01-02"),
			planRate(loan.Plan).String(),
			loan.TotalAmount().String(),
			domain.AmountPaid(loan.Transactions).String(),
			metrics.Balance.String(),
			string(metrics.Status),
			nextDue,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func planRate(plan domain.Plan) decimal.Decimal {
	switch p := plan.(type) {
	case domain.FinancePlan:
		return p.InterestRate
	case domain.TenderPlan:
		return p.InterestRate
	case domain.PeriodicPlan:
		return p.InterestRate
	}
	return decimal.Zero
}
