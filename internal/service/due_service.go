package service

import (
	"time"

	"github.com/ravi5775/sri-vinayaka-tenders/internal/domain"
)

// DueService derives due-date and delinquency views over the loan book
type DueService struct {
	loanRepo domain.LoanRepository
}

// NewDueService creates a new DueService
func NewDueService(loanRepo domain.LoanRepository) *DueService {
	return &DueService{loanRepo: loanRepo}
}

// DueOn returns loans with a payment falling due on the given date,
// optionally restricted to one plan type.
func (s *DueService) DueOn(date time.Time, typeFilter *domain.LoanType) ([]*domain.Loan, error) {
	loans, err := s.loanRepo.GetAll()
	if err != nil {
		return nil, err
	}
	return domain.DueOn(loans, date, typeFilter), nil
}

// NotPayingFor returns loans that still owe money and have not paid for at
// least monthsThreshold calendar months, most delinquent first.
func (s *DueService) NotPayingFor(asOf time.Time, monthsThreshold int, typeFilter *domain.LoanType) ([]domain.Delinquency, error) {
	loans, err := s.loanRepo.GetAll()
	if err != nil {
		return nil, err
	}
	return domain.NotPayingFor(loans, asOf, monthsThreshold, typeFilter), nil
}
