package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvestorNameEmpty     = errors.New("investor name is required")
	ErrInvestorNameTooLong   = errors.New("investor name must be 200 characters or less")
	ErrInvestorAmountInvalid = errors.New("investment amount must be positive")
	ErrInvestorRateInvalid   = errors.New("profit rate cannot be negative")
)

// InvestmentType distinguishes the two investor plan products.
type InvestmentType string

const (
	// InvestmentFixedProfit pays a fixed monthly profit on the invested capital.
	InvestmentFixedProfit InvestmentType = "FixedProfit"
	// InvestmentInterestRatePlan tracks interest per period rather than as a
	// lump pending balance; it is excluded from pending-profit totals.
	InvestmentInterestRatePlan InvestmentType = "InterestRatePlan"
)

// InvestorStatus tracks whether profit payouts are keeping up with accrual.
// Closed is terminal and set externally; it freezes all accrual permanently.
type InvestorStatus string

const (
	InvestorOnTrack InvestorStatus = "On Track"
	InvestorDelayed InvestorStatus = "Delayed"
	InvestorClosed  InvestorStatus = "Closed"
)

// PaymentType flags what an investor payout covers.
type PaymentType string

const (
	PaymentInterest  PaymentType = "Interest"
	PaymentPrincipal PaymentType = "Principal"
	PaymentProfit    PaymentType = "Profit"
)

// InvestorPayment is a single payout made to an investor.
type InvestorPayment struct {
	ID          int32           `json:"id"`
	InvestorID  int32           `json:"investorId"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	PaymentType PaymentType     `json:"payment_type"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Investor is a capital provider earning monthly profit on the invested
// amount.
type Investor struct {
	ID               int32              `json:"id"`
	Name             string             `json:"name"`
	InvestmentType   InvestmentType     `json:"investmentType"`
	InvestmentAmount decimal.Decimal    `json:"investmentAmount"`
	ProfitRate       decimal.Decimal    `json:"profitRate"` // percent per month
	StartDate        time.Time          `json:"startDate"`
	Status           InvestorStatus     `json:"status"`
	Payments         []*InvestorPayment `json:"payments"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
	DeletedAt        *time.Time         `json:"deletedAt,omitempty"`
}

func (i *Investor) Validate() error {
	if i.Name == "" {
		return ErrInvestorNameEmpty
	}
	if len(i.Name) > MaxCustomerNameLength {
		return ErrInvestorNameTooLong
	}
	if i.InvestmentAmount.LessThanOrEqual(decimal.Zero) {
		return ErrInvestorAmountInvalid
	}
	if i.ProfitRate.IsNegative() {
		return ErrInvestorRateInvalid
	}
	return nil
}

// InvestorRepository defines the interface for investor persistence operations
type InvestorRepository interface {
	Create(investor *Investor) (*Investor, error)
	GetByID(id int32) (*Investor, error)
	GetAll() ([]*Investor, error)
	Update(investor *Investor) (*Investor, error)
	UpdateStatus(id int32, status InvestorStatus) (*Investor, error)
	SoftDelete(id int32) error
	AddPayment(payment *InvestorPayment) (*InvestorPayment, error)
	ReplaceAll(investors []*Investor) error
}
