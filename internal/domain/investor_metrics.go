package domain

import (
	"time"

	"github.com/ravi5775/sri-vinayaka-tenders/internal/util"
	"github.com/shopspring/decimal"
)

// delinquencyEpsilon guards pending-profit comparisons against
// floating-point noise carried in from imported data.
var delinquencyEpsilon = decimal.NewFromFloat(0.01)

// InvestorMetrics is a pure projection of an investor as of a reference
// date. Recomputed on every query, never persisted.
type InvestorMetrics struct {
	CurrentBalance    decimal.Decimal `json:"currentBalance"`
	AccumulatedProfit decimal.Decimal `json:"accumulatedProfit"`
	TotalPaid         decimal.Decimal `json:"totalPaid"`
	MissedMonths      int             `json:"missedMonths"`
	MonthlyProfit     decimal.Decimal `json:"monthlyProfit"`
	Status            InvestorStatus  `json:"status"`
}

// TotalPaid sums every payout made to the investor, whatever its type.
func (i *Investor) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, p := range i.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// MonthlyProfit is the fixed profit owed per completed month.
func (i *Investor) MonthlyProfit() decimal.Decimal {
	return i.InvestmentAmount.Mul(i.ProfitRate).Div(hundred)
}

// Metrics derives the investor's standing as of a reference date.
// A Closed investor accrues nothing: every figure becomes a static function
// of historical payments.
func (i *Investor) Metrics(asOf time.Time) InvestorMetrics {
	totalPaid := i.TotalPaid()

	if i.Status == InvestorClosed {
		accumulated := totalPaid.Sub(i.InvestmentAmount)
		if accumulated.IsNegative() {
			accumulated = decimal.Zero
		}
		return InvestorMetrics{
			CurrentBalance:    decimal.Zero,
			AccumulatedProfit: accumulated,
			TotalPaid:         totalPaid,
			MissedMonths:      0,
			MonthlyProfit:     decimal.Zero,
			Status:            InvestorClosed,
		}
	}

	monthlyProfit := i.MonthlyProfit()
	monthsCompleted := util.CompletedMonths(util.Midnight(i.StartDate), util.Midnight(asOf))
	accumulated := monthlyProfit.Mul(decimal.NewFromInt(int64(monthsCompleted)))
	pending := accumulated.Sub(totalPaid)

	missedMonths := 0
	if monthlyProfit.GreaterThan(decimal.Zero) && pending.GreaterThan(decimal.Zero) {
		missedMonths = int(pending.Div(monthlyProfit).Floor().IntPart())
	}

	status := InvestorOnTrack
	if pending.GreaterThan(delinquencyEpsilon) {
		status = InvestorDelayed
	}

	balance := i.InvestmentAmount
	if pending.GreaterThan(decimal.Zero) {
		balance = balance.Add(pending)
	}

	return InvestorMetrics{
		CurrentBalance:    balance,
		AccumulatedProfit: accumulated,
		TotalPaid:         totalPaid,
		MissedMonths:      missedMonths,
		MonthlyProfit:     monthlyProfit,
		Status:            status,
	}
}

// InvestorSummary aggregates capital and profit figures across all
// investors.
type InvestorSummary struct {
	TotalInvestors       int             `json:"totalInvestors"`
	TotalInvestment      decimal.Decimal `json:"totalInvestment"`
	TotalProfitEarned    decimal.Decimal `json:"totalProfitEarned"`
	TotalPaidToInvestors decimal.Decimal `json:"totalPaidToInvestors"`
	TotalPendingProfit   decimal.Decimal `json:"totalPendingProfit"`
	OverallProfitLoss    decimal.Decimal `json:"overallProfitLoss"`
}

// SummarizeInvestors rolls the investor set up into book-level totals.
// InterestRatePlan investors are excluded from the pending-profit total:
// their interest is tracked per period on the lending side, not as a lump
// pending balance. This asymmetry is a product distinction between the two
// plan types, not an accident.
func SummarizeInvestors(investors []*Investor, asOf time.Time) InvestorSummary {
	summary := InvestorSummary{
		TotalInvestors:       len(investors),
		TotalInvestment:      decimal.Zero,
		TotalProfitEarned:    decimal.Zero,
		TotalPaidToInvestors: decimal.Zero,
		TotalPendingProfit:   decimal.Zero,
	}

	for _, investor := range investors {
		metrics := investor.Metrics(asOf)
		pending := metrics.AccumulatedProfit.Sub(metrics.TotalPaid)
		if pending.IsNegative() {
			pending = decimal.Zero
		}

		summary.TotalInvestment = summary.TotalInvestment.Add(investor.InvestmentAmount)
		summary.TotalPaidToInvestors = summary.TotalPaidToInvestors.Add(metrics.TotalPaid)
		summary.TotalProfitEarned = summary.TotalProfitEarned.Add(metrics.AccumulatedProfit)
		if investor.InvestmentType != InvestmentInterestRatePlan {
			summary.TotalPendingProfit = summary.TotalPendingProfit.Add(pending)
		}
	}

	summary.OverallProfitLoss = summary.TotalPaidToInvestors.Sub(summary.TotalInvestment)
	return summary
}
