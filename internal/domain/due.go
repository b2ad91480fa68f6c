package domain

import (
	"sort"
	"time"

	"github.com/ravi5775/sri-vinayaka-tenders/internal/util"
	"github.com/shopspring/decimal"
)

// DueOn filters loans down to those with a payment due on the given date,
// optionally restricted to one plan type. Input order is preserved.
func DueOn(loans []*Loan, date time.Time, typeFilter *LoanType) []*Loan {
	due := make([]*Loan, 0)
	for _, loan := range loans {
		if typeFilter != nil && loan.Type() != *typeFilter {
			continue
		}
		if loan.IsDueOn(date) {
			due = append(due, loan)
		}
	}
	return due
}

// Delinquency pairs a loan with how many calendar months have passed since
// its last payment (or since disbursal when nothing was ever paid).
type Delinquency struct {
	Loan   *Loan `json:"loan"`
	Months int   `json:"months"`
}

// MonthsSinceLastPayment measures loan inactivity in raw calendar months.
// The reference is the transaction with the latest payment date, falling
// back to the start date. Zero once the balance is cleared.
func MonthsSinceLastPayment(loan *Loan, asOf time.Time) int {
	if loan.Balance().LessThanOrEqual(decimal.Zero) {
		return 0
	}

	reference := util.Midnight(loan.StartDate)
	if len(loan.Transactions) > 0 {
		reference = util.Midnight(loan.Transactions[0].PaymentDate)
		for _, txn := range loan.Transactions[1:] {
			if d := util.Midnight(txn.PaymentDate); d.After(reference) {
				reference = d
			}
		}
	}

	return util.MonthSpan(reference, util.Midnight(asOf))
}

// NotPayingFor returns loans that still carry a balance and have not paid
// for at least monthsThreshold calendar months, most delinquent first.
// Ties keep the input order.
func NotPayingFor(loans []*Loan, asOf time.Time, monthsThreshold int, typeFilter *LoanType) []Delinquency {
	result := make([]Delinquency, 0)
	for _, loan := range loans {
		if typeFilter != nil && loan.Type() != *typeFilter {
			continue
		}
		months := MonthsSinceLastPayment(loan, asOf)
		if months >= monthsThreshold && loan.Balance().GreaterThan(decimal.Zero) {
			result = append(result, Delinquency{Loan: loan, Months: months})
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Months > result[j].Months
	})
	return result
}
