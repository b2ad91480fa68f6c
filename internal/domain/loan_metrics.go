package domain

import (
	"time"

	"github.com/ravi5775/sri-vinayaka-tenders/internal/util"
	"github.com/shopspring/decimal"
)

// LoanStatus is derived from balance and dates, never stored.
type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "Active"
	LoanStatusCompleted LoanStatus = "Completed"
	LoanStatusOverdue   LoanStatus = "Overdue"
)

var hundred = decimal.NewFromInt(100)

// LoanMetrics is a pure projection of a loan as of a reference date.
// Recomputed on every query, never persisted.
type LoanMetrics struct {
	Balance           decimal.Decimal `json:"balance"`
	Status            LoanStatus      `json:"status"`
	NextDueDate       *time.Time      `json:"nextDueDate"`
	InterestPerPeriod decimal.Decimal `json:"interestPerPeriod"`
	PendingInterest   decimal.Decimal `json:"pendingInterest"`
	Profit            decimal.Decimal `json:"profit"`
}

// AmountPaid sums transaction amounts. Amounts are not sign-checked: a
// negative transaction reduces the paid total.
func AmountPaid(txns []*Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		total = total.Add(t.Amount)
	}
	return total
}

func (l *Loan) paidOfKind(kind TransactionKind) decimal.Decimal {
	total := decimal.Zero
	for _, t := range l.Transactions {
		if t.Kind == kind {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// TotalAmount is the total owed over the life of the loan. For periodic
// (InterestRate) loans interest is perpetual and tracked separately, so the
// total is the principal alone.
func (l *Loan) TotalAmount() decimal.Decimal {
	switch p := l.Plan.(type) {
	case FinancePlan:
		interest := l.Amount.Mul(p.InterestRate).Div(hundred).
			Mul(decimal.NewFromInt(int64(p.DurationMonths)))
		return l.Amount.Add(interest)
	case TenderPlan:
		fee := l.Amount.Mul(p.InterestRate).Div(hundred).
			Mul(decimal.NewFromInt(int64(p.DurationDays))).
			Div(decimal.NewFromInt(30))
		return l.Amount.Add(fee)
	default:
		return l.Amount
	}
}

// Balance is the amount still owed. Overpayment drives it negative; callers
// clamp for display if desired. For periodic loans the balance tracks
// remaining principal only (interest is due separately).
func (l *Loan) Balance() decimal.Decimal {
	if _, ok := l.Plan.(PeriodicPlan); ok {
		return l.RemainingPrincipal()
	}
	return l.TotalAmount().Sub(AmountPaid(l.Transactions))
}

// RemainingPrincipal is the principal not yet repaid. Only payments flagged
// Principal reduce it on a periodic loan.
func (l *Loan) RemainingPrincipal() decimal.Decimal {
	if _, ok := l.Plan.(PeriodicPlan); ok {
		return l.Amount.Sub(l.paidOfKind(KindPrincipal))
	}
	return l.Balance()
}

// InterestPerPeriod is the interest component of one period: remaining
// principal times the per-period rate for periodic loans, the fixed monthly
// component for Finance, and the one-shot fee for Tender.
func (l *Loan) InterestPerPeriod() decimal.Decimal {
	switch p := l.Plan.(type) {
	case PeriodicPlan:
		return l.RemainingPrincipal().Mul(p.InterestRate).Div(hundred)
	case FinancePlan:
		return l.Amount.Mul(p.InterestRate).Div(hundred)
	case TenderPlan:
		return l.TotalAmount().Sub(l.Amount)
	default:
		return decimal.Zero
	}
}

// InterestAmount is the convenience accessor for the per-period interest
// component, whatever the plan type.
func (l *Loan) InterestAmount() decimal.Decimal {
	return l.InterestPerPeriod()
}

// PendingInterest is interest accrued over elapsed periods minus
// interest-flagged payments, floored at zero for display. Prepayment credit
// is discarded rather than carried forward. Zero for non-periodic plans.
func (l *Loan) PendingInterest(asOf time.Time) decimal.Decimal {
	p, ok := l.Plan.(PeriodicPlan)
	if !ok {
		return decimal.Zero
	}

	start := util.Midnight(l.StartDate)
	asOf = util.Midnight(asOf)
	if !asOf.After(start) {
		return decimal.Zero
	}

	var periods int
	switch p.Unit {
	case util.UnitDays:
		periods = int(asOf.Sub(start).Hours() / 24)
	case util.UnitWeeks:
		periods = int(asOf.Sub(start).Hours() / 24 / 7)
	default:
		periods = util.CompletedMonths(start, asOf)
	}

	accrued := l.InterestPerPeriod().Mul(decimal.NewFromInt(int64(periods)))
	pending := accrued.Sub(l.paidOfKind(KindInterest))
	if pending.IsNegative() {
		return decimal.Zero
	}
	return pending
}

// Status derives the loan lifecycle state as of a reference date.
func (l *Loan) Status(asOf time.Time) LoanStatus {
	if l.Balance().LessThanOrEqual(decimal.Zero) {
		return LoanStatusCompleted
	}
	if next := l.NextDueDate(asOf); next != nil && next.Before(util.Midnight(asOf)) {
		return LoanStatusOverdue
	}
	return LoanStatusActive
}

// NextDueDate is the earliest due date at or after asOf, or nil when the
// loan has no remaining balance. A Tender loan has exactly one due date and
// keeps reporting it even once it is past, which is what makes Overdue
// status reachable.
func (l *Loan) NextDueDate(asOf time.Time) *time.Time {
	if l.Balance().LessThanOrEqual(decimal.Zero) {
		return nil
	}

	start := util.Midnight(l.StartDate)
	asOf = util.Midnight(asOf)

	switch p := l.Plan.(type) {
	case TenderPlan:
		due := start.AddDate(0, 0, int(p.DurationDays))
		return &due
	case FinancePlan:
		for n := 1; ; n++ {
			due := util.AddPeriod(start, util.UnitMonths, n)
			if !due.Before(asOf) {
				return &due
			}
		}
	case PeriodicPlan:
		for n := 1; ; n++ {
			due := util.AddPeriod(start, p.Unit, n)
			if !due.Before(asOf) {
				return &due
			}
		}
	default:
		return nil
	}
}

// IsDueOn reports whether a payment on this loan falls due on the given
// date. Never true once the balance is cleared or before disbursal.
func (l *Loan) IsDueOn(date time.Time) bool {
	if l.Balance().LessThanOrEqual(decimal.Zero) {
		return false
	}

	start := util.Midnight(l.StartDate)
	target := util.Midnight(date)
	if target.Before(start) {
		return false
	}

	switch p := l.Plan.(type) {
	case FinancePlan:
		// Due monthly on the start day-of-month; the disbursal month itself
		// is not a due month.
		if util.MonthSpan(start, target) < 1 {
			return false
		}
		return target.Equal(util.ActualDate(target.Year(), target.Month(), start.Day()))
	case TenderPlan:
		return target.Equal(start.AddDate(0, 0, int(p.DurationDays)))
	case PeriodicPlan:
		for n := 1; ; n++ {
			boundary := util.AddPeriod(start, p.Unit, n)
			if boundary.Equal(target) {
				return true
			}
			if boundary.After(target) {
				return false
			}
		}
	default:
		return false
	}
}

// Profit is the interest or fee actually realized: the fixed schedule margin
// for Finance and Tender, the interest actually collected for periodic loans.
func (l *Loan) Profit() decimal.Decimal {
	if _, ok := l.Plan.(PeriodicPlan); ok {
		return l.paidOfKind(KindInterest)
	}
	return l.TotalAmount().Sub(l.Amount)
}

// Metrics bundles every derived figure for one loan as of a reference date.
func (l *Loan) Metrics(asOf time.Time) LoanMetrics {
	return LoanMetrics{
		Balance:           l.Balance(),
		Status:            l.Status(asOf),
		NextDueDate:       l.NextDueDate(asOf),
		InterestPerPeriod: l.InterestPerPeriod(),
		PendingInterest:   l.PendingInterest(asOf),
		Profit:            l.Profit(),
	}
}
