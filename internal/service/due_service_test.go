package service

import (
	"testing"
	"time"

	"github.com/ravi5775/sri-vinayaka-tenders/internal/domain"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/testutil"
	"github.com/shopspring/decimal"
)

func seedDueLoans(t *testing.T, repo *testutil.MockLoanRepository) {
	t.Helper()

	// Finance loan due monthly on the 15th
	if _, err := repo.Create(&domain.Loan{
		CustomerName: "Ravi Kumar",
		Amount:       decimal.NewFromInt(100000),
		GivenAmount:  decimal.NewFromInt(100000),
		StartDate:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Plan:         domain.FinancePlan{DurationMonths: 10, InterestRate: decimal.NewFromInt(2)},
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	// Tender loan due 90 days after March 1 (May 30)
	if _, err := repo.Create(&domain.Loan{
		CustomerName: "Lakshmi Devi",
		Amount:       decimal.NewFromInt(50000),
		GivenAmount:  decimal.NewFromInt(50000),
		StartDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Plan:         domain.TenderPlan{DurationDays: 90, InterestRate: decimal.NewFromInt(3)},
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func TestDueOn_FinanceMonthly(t *testing.T) {
	repo := testutil.NewMockLoanRepository()
	seedDueLoans(t, repo)
	service := NewDueService(repo)

	due, err := service.DueOn(time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(due) != 1 {
		t.Fatalf("Expected 1 due loan, got %d", len(due))
	}
	if due[0].CustomerName != "Ravi Kumar" {
		t.Errorf("Expected the finance loan, got %s", due[0].CustomerName)
	}
}

func TestDueOn_TypeFilter(t *testing.T) {
	repo := testutil.NewMockLoanRepository()
	seedDueLoans(t, repo)
	service := NewDueService(repo)

	tender := domain.LoanTypeTender
	due, err := service.DueOn(time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC), &tender)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(due) != 1 {
		t.Fatalf("Expected 1 due tender, got %d", len(due))
	}
	if due[0].Type() != domain.LoanTypeTender {
		t.Errorf("Expected tender loan, got %s", due[0].Type())
	}
}

func TestDueOn_NothingDue(t *testing.T) {
	repo := testutil.NewMockLoanRepository()
	seedDueLoans(t, repo)
	service := NewDueService(repo)

	due, err := service.DueOn(time.Date(2024, 4, 16, 0, 0, 0, 0, time.UTC), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(due) != 0 {
		t.Errorf("Expected no due loans, got %d", len(due))
	}
}

func TestNotPayingFor_ThresholdAndOrder(t *testing.T) {
	repo := testutil.NewMockLoanRepository()
	service := NewDueService(repo)

	// Nothing paid since January
	if _, err := repo.Create(&domain.Loan{
		CustomerName: "Silent Since January",
		Amount:       decimal.NewFromInt(100000),
		GivenAmount:  decimal.NewFromInt(100000),
		StartDate:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Plan:         domain.FinancePlan{DurationMonths: 10, InterestRate: decimal.NewFromInt(2)},
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	// Paid in March, so only delinquent since then
	loan, err := repo.Create(&domain.Loan{
		CustomerName: "Paid In March",
		Amount:       decimal.NewFromInt(50000),
		GivenAmount:  decimal.NewFromInt(50000),
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Plan:         domain.FinancePlan{DurationMonths: 10, InterestRate: decimal.NewFromInt(2)},
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if _, err := repo.AddTransaction(&domain.Transaction{
		LoanID:      loan.ID,
		Amount:      decimal.NewFromInt(6000),
		PaymentDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("seed txn failed: %v", err)
	}

	asOf := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	result, err := service.NotPayingFor(asOf, 3, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 delinquent loans, got %d", len(result))
	}

	// Most delinquent first: 5 months since January beats 3 since March
	if result[0].Loan.CustomerName != "Silent Since January" || result[0].Months != 5 {
		t.Errorf("Expected 'Silent Since January' at 5 months first, got %s at %d",
			result[0].Loan.CustomerName, result[0].Months)
	}
	if result[1].Months != 3 {
		t.Errorf("Expected 3 months for second entry, got %d", result[1].Months)
	}

	// Raising the threshold drops the milder case
	result, err = service.NotPayingFor(asOf, 4, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result) != 1 {
		t.Errorf("Expected 1 loan past 4 months, got %d", len(result))
	}
}

func TestNotPayingFor_SettledExcluded(t *testing.T) {
	repo := testutil.NewMockLoanRepository()
	service := NewDueService(repo)

	loan, err := repo.Create(&domain.Loan{
		CustomerName: "Settled",
		Amount:       decimal.NewFromInt(10000),
		GivenAmount:  decimal.NewFromInt(10000),
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Plan:         domain.FinancePlan{DurationMonths: 1, InterestRate: decimal.Zero},
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if _, err := repo.AddTransaction(&domain.Transaction{
		LoanID:      loan.ID,
		Amount:      decimal.NewFromInt(10000),
		PaymentDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("seed txn failed: %v", err)
	}

	result, err := service.NotPayingFor(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), 3, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result) != 0 {
		t.Errorf("Expected settled loan excluded, got %d entries", len(result))
	}
}
