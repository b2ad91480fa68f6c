package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ravi5775/sri-vinayaka-tenders/internal/util"
	"github.com/shopspring/decimal"
)

// loanJSON is the flattened wire shape of a loan: the plan variant is
// spread into loanType plus its duration/rate fields, matching the records
// the SPA and backup snapshots exchange.
type loanJSON struct {
	ID             int32            `json:"id"`
	CustomerName   string           `json:"customerName"`
	Phone          string           `json:"phone"`
	LoanType       LoanType         `json:"loanType"`
	LoanAmount     decimal.Decimal  `json:"loanAmount"`
	GivenAmount    decimal.Decimal  `json:"givenAmount"`
	StartDate      time.Time        `json:"startDate"`
	DurationMonths *int32           `json:"durationMonths,omitempty"`
	DurationInDays *int32           `json:"durationInDays,omitempty"`
	DurationUnit   *util.PeriodUnit `json:"durationUnit,omitempty"`
	InterestRate   decimal.Decimal  `json:"interestRate"`
	Transactions   []*Transaction   `json:"transactions"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
	DeletedAt      *time.Time       `json:"deletedAt,omitempty"`
}

// NewPlan builds the plan variant for a loan type from the optional wire
// fields. Fields irrelevant to the type are ignored.
func NewPlan(loanType LoanType, durationMonths, durationDays int32, unit util.PeriodUnit, rate decimal.Decimal) (Plan, error) {
	switch loanType {
	case LoanTypeFinance:
		return FinancePlan{DurationMonths: durationMonths, InterestRate: rate}, nil
	case LoanTypeTender:
		return TenderPlan{DurationDays: durationDays, InterestRate: rate}, nil
	case LoanTypeInterestRate:
		if unit == "" {
			unit = util.UnitMonths
		}
		return PeriodicPlan{Unit: unit, InterestRate: rate}, nil
	default:
		return nil, fmt.Errorf("%w: unknown loan type %q", ErrInvalidInput, loanType)
	}
}

// MarshalJSON implements json.Marshaler
func (l *Loan) MarshalJSON() ([]byte, error) {
	out := loanJSON{
		ID:           l.ID,
		CustomerName: l.CustomerName,
		Phone:        l.Phone,
		LoanType:     l.Type(),
		LoanAmount:   l.Amount,
		GivenAmount:  l.GivenAmount,
		StartDate:    l.StartDate,
		Transactions: l.Transactions,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
		DeletedAt:    l.DeletedAt,
	}
	if out.Transactions == nil {
		out.Transactions = []*Transaction{}
	}

	switch p := l.Plan.(type) {
	case FinancePlan:
		months := p.DurationMonths
		out.DurationMonths = &months
		out.InterestRate = p.InterestRate
	case TenderPlan:
		days := p.DurationDays
		out.DurationInDays = &days
		out.InterestRate = p.InterestRate
	case PeriodicPlan:
		unit := p.Unit
		out.DurationUnit = &unit
		out.InterestRate = p.InterestRate
	}

	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler
func (l *Loan) UnmarshalJSON(data []byte) error {
	var in loanJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	var months, days int32
	var unit util.PeriodUnit
	if in.DurationMonths != nil {
		months = *in.DurationMonths
	}
	if in.DurationInDays != nil {
		days = *in.DurationInDays
	}
	if in.DurationUnit != nil {
		unit = *in.DurationUnit
	}

	plan, err := NewPlan(in.LoanType, months, days, unit, in.InterestRate)
	if err != nil {
		return err
	}

	l.ID = in.ID
	l.CustomerName = in.CustomerName
	l.Phone = in.Phone
	l.Amount = in.LoanAmount
	l.GivenAmount = in.GivenAmount
	l.StartDate = in.StartDate
	l.Plan = plan
	l.Transactions = in.Transactions
	l.CreatedAt = in.CreatedAt
	l.UpdatedAt = in.UpdatedAt
	l.DeletedAt = in.DeletedAt
	return nil
}
