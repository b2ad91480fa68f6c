package service

import (
	"strings"
	"time"

	"github.com/ravi5775/sri-vinayaka-tenders/internal/domain"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/util"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/websocket"
	"github.com/shopspring/decimal"
)

// InvestorService handles investor business logic
type InvestorService struct {
	investorRepo domain.InvestorRepository
	publisher    websocket.EventPublisher
}

// NewInvestorService creates a new InvestorService
func NewInvestorService(investorRepo domain.InvestorRepository, publisher websocket.EventPublisher) *InvestorService {
	return &InvestorService{
		investorRepo: investorRepo,
		publisher:    publisher,
	}
}

// InvestorInput contains input for creating or updating an investor
type InvestorInput struct {
	Name             string
	InvestmentType   domain.InvestmentType
	InvestmentAmount decimal.Decimal
	ProfitRate       decimal.Decimal
	StartDate        time.Time
}

func (in InvestorInput) toInvestor() (*domain.Investor, error) {
	investmentType := in.InvestmentType
	if investmentType == "" {
		investmentType = domain.InvestmentFixedProfit
	}
	switch investmentType {
	case domain.InvestmentFixedProfit, domain.InvestmentInterestRatePlan:
	default:
		return nil, domain.ErrInvalidInput
	}

	investor := &domain.Investor{
		Name:             strings.TrimSpace(in.Name),
		InvestmentType:   investmentType,
		InvestmentAmount: in.InvestmentAmount,
		ProfitRate:       in.ProfitRate,
		StartDate:        util.Midnight(in.StartDate),
		Status:           domain.InvestorOnTrack,
	}
	if err := investor.Validate(); err != nil {
		return nil, err
	}
	return investor, nil
}

// CreateInvestor validates and creates a new investor
func (s *InvestorService) CreateInvestor(input InvestorInput) (*domain.Investor, error) {
	investor, err := input.toInvestor()
	if err != nil {
		return nil, err
	}

	created, err := s.investorRepo.Create(investor)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(websocket.InvestorCreated(created))
	return created, nil
}

// GetInvestor retrieves an investor by ID
func (s *InvestorService) GetInvestor(id int32) (*domain.Investor, error) {
	return s.investorRepo.GetByID(id)
}

// ListInvestors retrieves every live investor
func (s *InvestorService) ListInvestors() ([]*domain.Investor, error) {
	return s.investorRepo.GetAll()
}

// UpdateInvestor replaces the editable fields of an investor. The stored
// status survives the update; Close is the only way to change it here.
func (s *InvestorService) UpdateInvestor(id int32, input InvestorInput) (*domain.Investor, error) {
	investor, err := input.toInvestor()
	if err != nil {
		return nil, err
	}

	current, err := s.investorRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.InvestorClosed {
		return nil, domain.ErrInvestorClosed
	}

	investor.ID = id
	investor.Status = current.Status

	updated, err := s.investorRepo.Update(investor)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(websocket.InvestorUpdated(updated))
	return updated, nil
}

// DeleteInvestor soft-deletes an investor
func (s *InvestorService) DeleteInvestor(id int32) error {
	if err := s.investorRepo.SoftDelete(id); err != nil {
		return err
	}

	s.publisher.Publish(websocket.InvestorDeleted(map[string]int32{"id": id}))
	return nil
}

// PaymentInput contains input for recording an investor payout
type PaymentInput struct {
	Amount      decimal.Decimal
	PaymentDate time.Time
	PaymentType domain.PaymentType
}

// AddPayment records a payout to an investor. Closed investors accept no
// further payments.
func (s *InvestorService) AddPayment(investorID int32, input PaymentInput) (*domain.InvestorPayment, error) {
	switch input.PaymentType {
	case domain.PaymentInterest, domain.PaymentPrincipal, domain.PaymentProfit:
	default:
		return nil, domain.ErrInvalidInput
	}

	investor, err := s.investorRepo.GetByID(investorID)
	if err != nil {
		return nil, err
	}
	if investor.Status == domain.InvestorClosed {
		return nil, domain.ErrInvestorClosed
	}

	payment := &domain.InvestorPayment{
		InvestorID:  investorID,
		Amount:      input.Amount,
		PaymentDate: util.Midnight(input.PaymentDate),
		PaymentType: input.PaymentType,
	}

	created, err := s.investorRepo.AddPayment(payment)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(websocket.PaymentAdded(created))
	return created, nil
}

// CloseInvestor marks an investor's account Closed, freezing all accrual
func (s *InvestorService) CloseInvestor(id int32) (*domain.Investor, error) {
	investor, err := s.investorRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if investor.Status == domain.InvestorClosed {
		return nil, domain.ErrInvestorClosed
	}

	closed, err := s.investorRepo.UpdateStatus(id, domain.InvestorClosed)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(websocket.InvestorClosed(closed))
	return closed, nil
}

// InvestorMetrics derives an investor's standing as of a reference date
func (s *InvestorService) InvestorMetrics(id int32, asOf time.Time) (*domain.Investor, domain.InvestorMetrics, error) {
	investor, err := s.investorRepo.GetByID(id)
	if err != nil {
		return nil, domain.InvestorMetrics{}, err
	}
	return investor, investor.Metrics(asOf), nil
}

// Summary rolls the investor book up into totals as of a reference date
func (s *InvestorService) Summary(asOf time.Time) (domain.InvestorSummary, error) {
	investors, err := s.investorRepo.GetAll()
	if err != nil {
		return domain.InvestorSummary{}, err
	}
	return domain.SummarizeInvestors(investors, asOf), nil
}
