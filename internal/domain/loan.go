package domain

import (
	"errors"
	"time"

	"github.com/ravi5775/sri-vinayaka-tenders/internal/util"
	"github.com/shopspring/decimal"
)

var (
	ErrLoanCustomerNameEmpty   = errors.New("customer name is required")
	ErrLoanCustomerNameTooLong = errors.New("customer name must be 200 characters or less")
	ErrLoanAmountInvalid       = errors.New("loan amount must be positive")
	ErrLoanGivenAmountInvalid  = errors.New("given amount cannot be negative")
	ErrLoanDurationInvalid     = errors.New("loan duration is invalid")
	ErrLoanUnitInvalid         = errors.New("duration unit must be Days, Weeks, or Months")
	ErrLoanPlanMissing         = errors.New("loan plan is required")
)

// LoanType identifies the repayment plan variant of a loan.
type LoanType string

const (
	// LoanTypeFinance is a fixed-principal loan with a flat total-interest
	// schedule and monthly same-day-of-month due dates.
	LoanTypeFinance LoanType = "Finance"
	// LoanTypeTender is a single lump-sum loan with one due date at a fixed
	// day offset from disbursal.
	LoanTypeTender LoanType = "Tender"
	// LoanTypeInterestRate is a perpetual-principal loan where only periodic
	// interest is due each period; principal is repaid separately.
	LoanTypeInterestRate LoanType = "InterestRate"
)

// Plan is the sealed set of repayment plan variants. Each variant carries
// only the fields its loan type uses.
type Plan interface {
	Type() LoanType
	validate() error
}

// FinancePlan repays principal plus flat interest in equal monthly
// installments. InterestRate is percent per month.
type FinancePlan struct {
	DurationMonths int32           `json:"durationMonths"`
	InterestRate   decimal.Decimal `json:"interestRate"`
}

// Type implements Plan
func (p FinancePlan) Type() LoanType { return LoanTypeFinance }

func (p FinancePlan) validate() error {
	if p.DurationMonths < 1 {
		return ErrLoanDurationInvalid
	}
	return nil
}

// TenderPlan is repaid in full on a single due date DurationDays after
// disbursal. InterestRate is percent per 30-day month, prorated over the
// tender duration.
type TenderPlan struct {
	DurationDays int32           `json:"durationInDays"`
	InterestRate decimal.Decimal `json:"interestRate"`
}

// Type implements Plan
func (p TenderPlan) Type() LoanType { return LoanTypeTender }

func (p TenderPlan) validate() error {
	// DurationDays == 0 is legal: the loan is due on its start date itself.
	if p.DurationDays < 0 {
		return ErrLoanDurationInvalid
	}
	return nil
}

// PeriodicPlan accrues interest on the remaining principal every period
// (day, week, or month) indefinitely. InterestRate is percent per period.
type PeriodicPlan struct {
	Unit         util.PeriodUnit `json:"durationUnit"`
	InterestRate decimal.Decimal `json:"interestRate"`
}

// Type implements Plan
func (p PeriodicPlan) Type() LoanType { return LoanTypeInterestRate }

func (p PeriodicPlan) validate() error {
	if !p.Unit.Valid() {
		return ErrLoanUnitInvalid
	}
	return nil
}

// TransactionKind flags what a repayment is applied against. Only periodic
// (InterestRate) loans distinguish kinds; other plans ignore it.
type TransactionKind string

const (
	KindRepayment TransactionKind = ""          // generic repayment
	KindInterest  TransactionKind = "Interest"  // applied against accrued interest
	KindPrincipal TransactionKind = "Principal" // reduces remaining principal
)

// Transaction is a single repayment recorded against a loan.
// Append-only from the calculation engine's perspective.
type Transaction struct {
	ID          int32           `json:"id"`
	LoanID      int32           `json:"loanId"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Kind        TransactionKind `json:"kind,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Loan is a customer loan under one of the three repayment plans.
// The calculation engine never mutates a loan; it only derives read-only
// metrics from it.
type Loan struct {
	ID           int32           `json:"id"`
	CustomerName string          `json:"customerName"`
	Phone        string          `json:"phone"`
	Amount       decimal.Decimal `json:"loanAmount"`  // principal owed
	GivenAmount  decimal.Decimal `json:"givenAmount"` // actually disbursed (fees may be deducted upfront)
	StartDate    time.Time       `json:"startDate"`
	Plan         Plan            `json:"-"`
	Transactions []*Transaction  `json:"transactions"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	DeletedAt    *time.Time      `json:"deletedAt,omitempty"`
}

// Type returns the loan's plan type.
func (l *Loan) Type() LoanType {
	if l.Plan == nil {
		return ""
	}
	return l.Plan.Type()
}

func (l *Loan) Validate() error {
	if l.CustomerName == "" {
		return ErrLoanCustomerNameEmpty
	}
	if len(l.CustomerName) > MaxCustomerNameLength {
		return ErrLoanCustomerNameTooLong
	}
	if l.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrLoanAmountInvalid
	}
	if l.GivenAmount.IsNegative() {
		return ErrLoanGivenAmountInvalid
	}
	if l.Plan == nil {
		return ErrLoanPlanMissing
	}
	return l.Plan.validate()
}

// LoanRepository defines the interface for loan persistence operations
type LoanRepository interface {
	Create(loan *Loan) (*Loan, error)
	GetByID(id int32) (*Loan, error)
	GetAll() ([]*Loan, error)
	Update(loan *Loan) (*Loan, error)
	SoftDelete(id int32) error
	AddTransaction(txn *Transaction) (*Transaction, error)
	ReplaceAll(loans []*Loan) error
}
