package domain

import (
	"testing"
	"time"

	"github.com/ravi5775/sri-vinayaka-tenders/internal/util"
	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tenderLoan(amount int64, start time.Time, days int32, rate float64) *Loan {
	return &Loan{
		ID:           1,
		CustomerName: "Ramesh",
		Amount:       decimal.NewFromInt(amount),
		GivenAmount:  decimal.NewFromInt(amount),
		StartDate:    start,
		Plan:         TenderPlan{DurationDays: days, InterestRate: decimal.NewFromFloat(rate)},
	}
}

func financeLoan(amount int64, start time.Time, months int32, rate float64) *Loan {
	return &Loan{
		ID:           2,
		CustomerName: "Suresh",
		Amount:       decimal.NewFromInt(amount),
		GivenAmount:  decimal.NewFromInt(amount),
		StartDate:    start,
		Plan:         FinancePlan{DurationMonths: months, InterestRate: decimal.NewFromFloat(rate)},
	}
}

func periodicLoan(amount int64, start time.Time, unit util.PeriodUnit, rate float64) *Loan {
	return &Loan{
		ID:           3,
		CustomerName: "Mahesh",
		Amount:       decimal.NewFromInt(amount),
		GivenAmount:  decimal.NewFromInt(amount),
		StartDate:    start,
		Plan:         PeriodicPlan{Unit: unit, InterestRate: decimal.NewFromFloat(rate)},
	}
}

func TestAmountPaid_SumsWithoutValidation(t *testing.T) {
	txns := []*Transaction{
		{Amount: decimal.NewFromInt(500)},
		{Amount: decimal.NewFromInt(-200)}, // negative amounts pass through
		{Amount: decimal.NewFromInt(300)},
	}

	got := AmountPaid(txns)
	if !got.Equal(decimal.NewFromInt(600)) {
		t.Errorf("Expected 600, got %s", got.String())
	}
}

func TestTotalAmount_Finance(t *testing.T) {
	// 10000 at 2% per month over 10 months = 10000 + 2000
	loan := financeLoan(10000, date(2024, 1, 1), 10, 2)

	got := loan.TotalAmount()
	if !got.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("Expected 12000, got %s", got.String())
	}
}

func TestTotalAmount_TenderProratesByDays(t *testing.T) {
	// 10000 at 3% per 30 days over 90 days = 10000 + 900
	loan := tenderLoan(10000, date(2024, 1, 1), 90, 3)

	got := loan.TotalAmount()
	if !got.Equal(decimal.NewFromInt(10900)) {
		t.Errorf("Expected 10900, got %s", got.String())
	}
}

func TestTotalAmount_PeriodicIsPrincipalOnly(t *testing.T) {
	loan := periodicLoan(50000, date(2024, 1, 1), util.UnitMonths, 2)

	got := loan.TotalAmount()
	if !got.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("Expected 50000, got %s", got.String())
	}
}

func TestBalance_TenderWithNoTransactionsEqualsTotal(t *testing.T) {
	loan := tenderLoan(10000, date(2024, 1, 1), 90, 0)

	if !loan.Balance().Equal(loan.TotalAmount()) {
		t.Errorf("Expected balance %s to equal total %s",
			loan.Balance().String(), loan.TotalAmount().String())
	}
}

func TestBalance_OverpaymentGoesNegative(t *testing.T) {
	loan := tenderLoan(1000, date(2024, 1, 1), 30, 0)
	loan.Transactions = []*Transaction{{Amount: decimal.NewFromInt(1200), PaymentDate: date(2024, 1, 20)}}

	if !loan.Balance().Equal(decimal.NewFromInt(-200)) {
		t.Errorf("Expected -200, got %s", loan.Balance().String())
	}
}

func TestRemainingPrincipal_PeriodicOnlyCountsPrincipalPayments(t *testing.T) {
	loan := periodicLoan(50000, date(2024, 1, 1), util.UnitMonths, 2)
	loan.Transactions = []*Transaction{
		{Amount: decimal.NewFromInt(1000), PaymentDate: date(2024, 2, 1), Kind: KindInterest},
		{Amount: decimal.NewFromInt(10000), PaymentDate: date(2024, 3, 1), Kind: KindPrincipal},
	}

	got := loan.RemainingPrincipal()
	if !got.Equal(decimal.NewFromInt(40000)) {
		t.Errorf("Expected 40000, got %s", got.String())
	}
}

func TestInterestPerPeriod_TracksRemainingPrincipal(t *testing.T) {
	loan := periodicLoan(50000, date(2024, 1, 1), util.UnitMonths, 2)

	if got := loan.InterestPerPeriod(); !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected 1000, got %s", got.String())
	}

	loan.Transactions = []*Transaction{
		{Amount: decimal.NewFromInt(25000), PaymentDate: date(2024, 2, 1), Kind: KindPrincipal},
	}
	if got := loan.InterestPerPeriod(); !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected 500 after principal repayment, got %s", got.String())
	}
}

func TestPendingInterest_AccruesPerCompletedMonth(t *testing.T) {
	loan := periodicLoan(50000, date(2024, 1, 15), util.UnitMonths, 2)

	// Three completed months, nothing paid: 3 * 1000
	got := loan.PendingInterest(date(2024, 4, 20))
	if !got.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("Expected 3000, got %s", got.String())
	}

	// Interest payments reduce it; other kinds do not
	loan.Transactions = []*Transaction{
		{Amount: decimal.NewFromInt(2000), PaymentDate: date(2024, 3, 15), Kind: KindInterest},
	}
	got = loan.PendingInterest(date(2024, 4, 20))
	if !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected 1000, got %s", got.String())
	}
}

func TestPendingInterest_PrepaymentFlooredAtZero(t *testing.T) {
	loan := periodicLoan(50000, date(2024, 1, 15), util.UnitMonths, 2)
	loan.Transactions = []*Transaction{
		{Amount: decimal.NewFromInt(9999), PaymentDate: date(2024, 2, 1), Kind: KindInterest},
	}

	got := loan.PendingInterest(date(2024, 2, 20))
	if !got.IsZero() {
		t.Errorf("Expected 0, prepayment credit is discarded, got %s", got.String())
	}
}

func TestStatus_CompletedWhenPaidCoversTotal(t *testing.T) {
	loan := tenderLoan(10000, date(2024, 1, 1), 90, 3)
	loan.Transactions = []*Transaction{{Amount: decimal.NewFromInt(10900), PaymentDate: date(2024, 2, 1)}}

	if got := loan.Status(date(2024, 2, 2)); got != LoanStatusCompleted {
		t.Errorf("Expected Completed, got %s", got)
	}
}

func TestStatus_TenderOverdueAfterDueDate(t *testing.T) {
	loan := tenderLoan(10000, date(2024, 1, 1), 90, 0)

	if got := loan.Status(date(2024, 3, 31)); got != LoanStatusActive {
		t.Errorf("Expected Active on the due date, got %s", got)
	}
	if got := loan.Status(date(2024, 4, 1)); got != LoanStatusOverdue {
		t.Errorf("Expected Overdue past the due date, got %s", got)
	}
}

func TestStatus_FutureDatedLoanIsActive(t *testing.T) {
	loan := financeLoan(10000, date(2025, 6, 1), 10, 2)

	if got := loan.Status(date(2024, 1, 1)); got != LoanStatusActive {
		t.Errorf("Expected Active for future-dated loan, got %s", got)
	}
	if loan.IsDueOn(date(2024, 7, 1)) {
		t.Error("Future-dated loan must never be due before its start")
	}
}

func TestIsDueOn_TenderSingleDueDate(t *testing.T) {
	// 2024-01-01 + 90 days = 2024-03-31
	loan := tenderLoan(10000, date(2024, 1, 1), 90, 0)

	if !loan.IsDueOn(date(2024, 3, 31)) {
		t.Error("Expected due on 2024-03-31")
	}
	if loan.IsDueOn(date(2024, 3, 30)) {
		t.Error("Not due on 2024-03-30")
	}
	if loan.IsDueOn(date(2024, 4, 30)) {
		t.Error("Tender has exactly one due date, not a recurring one")
	}
}

func TestIsDueOn_ZeroDurationTenderDueAtStart(t *testing.T) {
	loan := tenderLoan(5000, date(2024, 2, 10), 0, 0)

	if !loan.IsDueOn(date(2024, 2, 10)) {
		t.Error("Zero-duration tender is due on its start date itself")
	}
}

func TestIsDueOn_FinanceMonthlyOnStartDay(t *testing.T) {
	loan := financeLoan(10000, date(2024, 1, 15), 10, 2)

	if loan.IsDueOn(date(2024, 1, 15)) {
		t.Error("Disbursal month is not a due month")
	}
	if !loan.IsDueOn(date(2024, 2, 15)) {
		t.Error("Expected due on 2024-02-15")
	}
	if loan.IsDueOn(date(2024, 2, 14)) || loan.IsDueOn(date(2024, 2, 16)) {
		t.Error("Only the start day-of-month is due")
	}
	if !loan.IsDueOn(date(2025, 1, 15)) {
		t.Error("Expected due every month including across years")
	}
}

func TestIsDueOn_FinanceDay31ClampsInShortMonths(t *testing.T) {
	loan := financeLoan(10000, date(2024, 1, 31), 10, 2)

	if !loan.IsDueOn(date(2024, 2, 29)) {
		t.Error("Expected due on clamped end of February")
	}
	if !loan.IsDueOn(date(2024, 3, 31)) {
		t.Error("Expected due on the anchor day in full months")
	}
	if loan.IsDueOn(date(2024, 3, 30)) {
		t.Error("Not due the day before the anchor in a full month")
	}
}

func TestIsDueOn_PeriodicAgreesWithCalendarStepping(t *testing.T) {
	start := date(2024, 1, 31)
	loan := periodicLoan(50000, start, util.UnitMonths, 2)

	for n := 1; n <= 24; n++ {
		boundary := util.AddPeriod(start, util.UnitMonths, n)
		if !loan.IsDueOn(boundary) {
			t.Errorf("Expected due on boundary %d (%v)", n, boundary)
		}
	}
	if loan.IsDueOn(date(2024, 3, 15)) {
		t.Error("Mid-period date must not be due")
	}
}

func TestIsDueOn_PeriodicWeeks(t *testing.T) {
	loan := periodicLoan(10000, date(2024, 1, 1), util.UnitWeeks, 1)

	if !loan.IsDueOn(date(2024, 1, 8)) || !loan.IsDueOn(date(2024, 1, 15)) {
		t.Error("Expected due every 7 days")
	}
	if loan.IsDueOn(date(2024, 1, 10)) {
		t.Error("Not due off the weekly boundary")
	}
}

func TestIsDueOn_NeverOnceBalanceCleared(t *testing.T) {
	loan := tenderLoan(10000, date(2024, 1, 1), 90, 0)
	loan.Transactions = []*Transaction{{Amount: decimal.NewFromInt(10000), PaymentDate: date(2024, 2, 1)}}

	if loan.IsDueOn(date(2024, 3, 31)) {
		t.Error("Settled loan is never due")
	}
}

func TestNextDueDate_NilWhenSettled(t *testing.T) {
	loan := tenderLoan(1000, date(2024, 1, 1), 30, 0)
	loan.Transactions = []*Transaction{{Amount: decimal.NewFromInt(1000), PaymentDate: date(2024, 1, 10)}}

	if got := loan.NextDueDate(date(2024, 1, 15)); got != nil {
		t.Errorf("Expected nil, got %v", got)
	}
}

func TestNextDueDate_FinanceNextAnniversary(t *testing.T) {
	loan := financeLoan(10000, date(2024, 1, 15), 10, 2)

	got := loan.NextDueDate(date(2024, 3, 20))
	if got == nil || !got.Equal(date(2024, 4, 15)) {
		t.Errorf("Expected 2024-04-15, got %v", got)
	}

	// On a due date, that date is the next one
	got = loan.NextDueDate(date(2024, 4, 15))
	if got == nil || !got.Equal(date(2024, 4, 15)) {
		t.Errorf("Expected 2024-04-15, got %v", got)
	}
}

func TestNextDueDate_TenderKeepsPastDueDate(t *testing.T) {
	loan := tenderLoan(10000, date(2024, 1, 1), 90, 0)

	got := loan.NextDueDate(date(2024, 6, 1))
	if got == nil || !got.Equal(date(2024, 3, 31)) {
		t.Errorf("Expected the single 2024-03-31 due date, got %v", got)
	}
}

func TestProfit_FixedScheduleMargin(t *testing.T) {
	loan := financeLoan(10000, date(2024, 1, 1), 10, 2)
	if got := loan.Profit(); !got.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("Expected 2000, got %s", got.String())
	}
}

func TestProfit_PeriodicIsCollectedInterest(t *testing.T) {
	loan := periodicLoan(50000, date(2024, 1, 1), util.UnitMonths, 2)
	loan.Transactions = []*Transaction{
		{Amount: decimal.NewFromInt(1000), PaymentDate: date(2024, 2, 1), Kind: KindInterest},
		{Amount: decimal.NewFromInt(5000), PaymentDate: date(2024, 2, 1), Kind: KindPrincipal},
	}

	if got := loan.Profit(); !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected 1000, got %s", got.String())
	}
}

func TestMetrics_PureAndIdempotent(t *testing.T) {
	loan := periodicLoan(50000, date(2024, 1, 15), util.UnitMonths, 2)
	loan.Transactions = []*Transaction{
		{Amount: decimal.NewFromInt(1000), PaymentDate: date(2024, 2, 15), Kind: KindInterest},
	}
	asOf := date(2024, 4, 20)

	first := loan.Metrics(asOf)
	second := loan.Metrics(asOf)

	if !first.Balance.Equal(second.Balance) ||
		first.Status != second.Status ||
		!first.PendingInterest.Equal(second.PendingInterest) ||
		!first.Profit.Equal(second.Profit) {
		t.Error("Metrics must be identical across repeated calls with the same input")
	}
}
