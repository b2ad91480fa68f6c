package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func fixedProfitInvestor(amount int64, rate float64, start time.Time) *Investor {
	return &Investor{
		ID:               1,
		Name:             "Lakshmi",
		InvestmentType:   InvestmentFixedProfit,
		InvestmentAmount: decimal.NewFromInt(amount),
		ProfitRate:       decimal.NewFromFloat(rate),
		StartDate:        start,
		Status:           InvestorOnTrack,
	}
}

func TestInvestorMetrics_UnpaidMonthsAccumulate(t *testing.T) {
	// 100000 at 2%/month from 2024-01-15, evaluated 2024-04-20:
	// 3 completed months, 2000/month
	investor := fixedProfitInvestor(100000, 2, date(2024, 1, 15))

	m := investor.Metrics(date(2024, 4, 20))

	if !m.MonthlyProfit.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("Expected monthly profit 2000, got %s", m.MonthlyProfit.String())
	}
	if !m.AccumulatedProfit.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("Expected accumulated 6000, got %s", m.AccumulatedProfit.String())
	}
	if m.MissedMonths != 3 {
		t.Errorf("Expected 3 missed months, got %d", m.MissedMonths)
	}
	if m.Status != InvestorDelayed {
		t.Errorf("Expected Delayed, got %s", m.Status)
	}
	if !m.CurrentBalance.Equal(decimal.NewFromInt(106000)) {
		t.Errorf("Expected balance 106000, got %s", m.CurrentBalance.String())
	}
}

func TestInvestorMetrics_FullyPaidIsOnTrack(t *testing.T) {
	investor := fixedProfitInvestor(100000, 2, date(2024, 1, 15))
	investor.Payments = []*InvestorPayment{
		{Amount: decimal.NewFromInt(6000), PaymentDate: date(2024, 4, 18), PaymentType: PaymentProfit},
	}

	m := investor.Metrics(date(2024, 4, 20))

	if m.MissedMonths != 0 {
		t.Errorf("Expected 0 missed months, got %d", m.MissedMonths)
	}
	if m.Status != InvestorOnTrack {
		t.Errorf("Expected On Track, got %s", m.Status)
	}
	if !m.CurrentBalance.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("Expected balance 100000, got %s", m.CurrentBalance.String())
	}
}

func TestInvestorMetrics_MonthNotCompletedBeforeAnniversaryDay(t *testing.T) {
	investor := fixedProfitInvestor(100000, 2, date(2024, 1, 15))

	m := investor.Metrics(date(2024, 4, 14))
	if !m.AccumulatedProfit.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("Expected accumulated 4000 before anniversary day, got %s", m.AccumulatedProfit.String())
	}
}

func TestInvestorMetrics_ClosedFreezesAccrual(t *testing.T) {
	investor := fixedProfitInvestor(100000, 2, date(2020, 1, 1))
	investor.Status = InvestorClosed
	investor.Payments = []*InvestorPayment{
		{Amount: decimal.NewFromInt(130000), PaymentDate: date(2023, 6, 1), PaymentType: PaymentProfit},
	}

	m := investor.Metrics(date(2026, 1, 1))

	if m.MissedMonths != 0 {
		t.Errorf("Closed investor never misses months, got %d", m.MissedMonths)
	}
	if !m.AccumulatedProfit.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("Expected totalPaid-investment=30000, got %s", m.AccumulatedProfit.String())
	}
	if !m.CurrentBalance.IsZero() {
		t.Errorf("Expected zero balance, got %s", m.CurrentBalance.String())
	}
	if m.Status != InvestorClosed {
		t.Errorf("Expected Closed, got %s", m.Status)
	}
}

func TestInvestorMetrics_ClosedUnderwaterProfitFloorsAtZero(t *testing.T) {
	investor := fixedProfitInvestor(100000, 2, date(2020, 1, 1))
	investor.Status = InvestorClosed
	investor.Payments = []*InvestorPayment{
		{Amount: decimal.NewFromInt(40000), PaymentDate: date(2021, 1, 1), PaymentType: PaymentPrincipal},
	}

	m := investor.Metrics(date(2026, 1, 1))
	if !m.AccumulatedProfit.IsZero() {
		t.Errorf("Expected 0 accumulated profit, got %s", m.AccumulatedProfit.String())
	}
}

func TestInvestorMetrics_ZeroRateAvoidsDivisionByZero(t *testing.T) {
	investor := fixedProfitInvestor(100000, 0, date(2024, 1, 1))

	m := investor.Metrics(date(2024, 9, 1))
	if m.MissedMonths != 0 {
		t.Errorf("Expected 0 missed months with zero monthly profit, got %d", m.MissedMonths)
	}
	if m.Status != InvestorOnTrack {
		t.Errorf("Expected On Track, got %s", m.Status)
	}
}

func TestSummarizeInvestors_ExcludesInterestRatePlanPending(t *testing.T) {
	fixed := fixedProfitInvestor(100000, 2, date(2024, 1, 15))
	plan := fixedProfitInvestor(50000, 2, date(2024, 1, 15))
	plan.ID = 2
	plan.InvestmentType = InvestmentInterestRatePlan

	summary := SummarizeInvestors([]*Investor{fixed, plan}, date(2024, 4, 20))

	if summary.TotalInvestors != 2 {
		t.Errorf("Expected 2 investors, got %d", summary.TotalInvestors)
	}
	if !summary.TotalInvestment.Equal(decimal.NewFromInt(150000)) {
		t.Errorf("Expected total investment 150000, got %s", summary.TotalInvestment.String())
	}
	// Both accrue profit (6000 + 3000) ...
	if !summary.TotalProfitEarned.Equal(decimal.NewFromInt(9000)) {
		t.Errorf("Expected profit earned 9000, got %s", summary.TotalProfitEarned.String())
	}
	// ... but only the fixed-profit investor contributes to pending
	if !summary.TotalPendingProfit.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("Expected pending 6000, got %s", summary.TotalPendingProfit.String())
	}
	if !summary.OverallProfitLoss.Equal(decimal.NewFromInt(-150000)) {
		t.Errorf("Expected P/L -150000, got %s", summary.OverallProfitLoss.String())
	}
}
