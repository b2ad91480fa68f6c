package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/domain"
)

// MockLoanRepository is an in-memory implementation of domain.LoanRepository
type MockLoanRepository struct {
	Loans  map[int32]*domain.Loan
	NextID int32
	Err    error // When set, every call fails with it
}

// NewMockLoanRepository creates a new MockLoanRepository
func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{
		Loans:  make(map[int32]*domain.Loan),
		NextID: 1,
	}
}

// Create stores a new loan
func (m *MockLoanRepository) Create(loan *domain.Loan) (*domain.Loan, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	loan.ID = m.NextID
	m.NextID++
	loan.CreatedAt = time.Now()
	loan.UpdatedAt = loan.CreatedAt
	if loan.Transactions == nil {
		loan.Transactions = []*domain.Transaction{}
	}
	m.Loans[loan.ID] = loan
	return loan, nil
}

// GetByID retrieves a live loan by ID
func (m *MockLoanRepository) GetByID(id int32) (*domain.Loan, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	loan, ok := m.Loans[id]
	if !ok || loan.DeletedAt != nil {
		return nil, domain.ErrLoanNotFound
	}
	return loan, nil
}

// GetAll retrieves every live loan ordered by ID
func (m *MockLoanRepository) GetAll() ([]*domain.Loan, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	loans := make([]*domain.Loan, 0, len(m.Loans))
	for _, loan := range m.Loans {
		if loan.DeletedAt == nil {
			loans = append(loans, loan)
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
	return loans, nil
}

// Update replaces a stored loan
func (m *MockLoanRepository) Update(loan *domain.Loan) (*domain.Loan, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	existing, ok := m.Loans[loan.ID]
	if !ok || existing.DeletedAt != nil {
		return nil, domain.ErrLoanNotFound
	}
	loan.CreatedAt = existing.CreatedAt
	loan.UpdatedAt = time.Now()
	loan.Transactions = existing.Transactions
	m.Loans[loan.ID] = loan
	return loan, nil
}

// SoftDelete marks a loan deleted
func (m *MockLoanRepository) SoftDelete(id int32) error {
	if m.Err != nil {
		return m.Err
	}
	loan, ok := m.Loans[id]
	if !ok || loan.DeletedAt != nil {
		return domain.ErrLoanNotFound
	}
	now := time.Now()
	loan.DeletedAt = &now
	return nil
}

// AddTransaction appends a repayment to a loan
func (m *MockLoanRepository) AddTransaction(txn *domain.Transaction) (*domain.Transaction, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	loan, ok := m.Loans[txn.LoanID]
	if !ok || loan.DeletedAt != nil {
		return nil, domain.ErrLoanNotFound
	}
	txn.ID = int32(len(loan.Transactions) + 1)
	txn.CreatedAt = time.Now()
	loan.Transactions = append(loan.Transactions, txn)
	return txn, nil
}

// ReplaceAll swaps the whole book for the given snapshot
func (m *MockLoanRepository) ReplaceAll(loans []*domain.Loan) error {
	if m.Err != nil {
		return m.Err
	}
	m.Loans = make(map[int32]*domain.Loan)
	m.NextID = 1
	for _, loan := range loans {
		m.Loans[loan.ID] = loan
		if loan.ID >= m.NextID {
			m.NextID = loan.ID + 1
		}
	}
	return nil
}

// MockInvestorRepository is an in-memory implementation of domain.InvestorRepository
type MockInvestorRepository struct {
	Investors map[int32]*domain.Investor
	NextID    int32
	Err       error
}

// NewMockInvestorRepository creates a new MockInvestorRepository
func NewMockInvestorRepository() *MockInvestorRepository {
	return &MockInvestorRepository{
		Investors: make(map[int32]*domain.Investor),
		NextID:    1,
	}
}

// Create stores a new investor
func (m *MockInvestorRepository) Create(investor *domain.Investor) (*domain.Investor, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	investor.ID = m.NextID
	m.NextID++
	investor.CreatedAt = time.Now()
	investor.UpdatedAt = investor.CreatedAt
	if investor.Payments == nil {
		investor.Payments = []*domain.InvestorPayment{}
	}
	m.Investors[investor.ID] = investor
	return investor, nil
}

// GetByID retrieves a live investor by ID
func (m *MockInvestorRepository) GetByID(id int32) (*domain.Investor, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	investor, ok := m.Investors[id]
	if !ok || investor.DeletedAt != nil {
		return nil, domain.ErrInvestorNotFound
	}
	return investor, nil
}

// GetAll retrieves every live investor ordered by ID
func (m *MockInvestorRepository) GetAll() ([]*domain.Investor, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	investors := make([]*domain.Investor, 0, len(m.Investors))
	for _, investor := range m.Investors {
		if investor.DeletedAt == nil {
			investors = append(investors, investor)
		}
	}
	sort.Slice(investors, func(i, j int) bool { return investors[i].ID < investors[j].ID })
	return investors, nil
}

// Update replaces a stored investor
func (m *MockInvestorRepository) Update(investor *domain.Investor) (*domain.Investor, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	existing, ok := m.Investors[investor.ID]
	if !ok || existing.DeletedAt != nil {
		return nil, domain.ErrInvestorNotFound
	}
	investor.CreatedAt = existing.CreatedAt
	investor.UpdatedAt = time.Now()
	investor.Payments = existing.Payments
	m.Investors[investor.ID] = investor
	return investor, nil
}

// UpdateStatus changes only an investor's status
func (m *MockInvestorRepository) UpdateStatus(id int32, status domain.InvestorStatus) (*domain.Investor, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	investor, ok := m.Investors[id]
	if !ok || investor.DeletedAt != nil {
		return nil, domain.ErrInvestorNotFound
	}
	investor.Status = status
	investor.UpdatedAt = time.Now()
	return investor, nil
}

// SoftDelete marks an investor deleted
func (m *MockInvestorRepository) SoftDelete(id int32) error {
	if m.Err != nil {
		return m.Err
	}
	investor, ok := m.Investors[id]
	if !ok || investor.DeletedAt != nil {
		return domain.ErrInvestorNotFound
	}
	now := time.Now()
	investor.DeletedAt = &now
	return nil
}

// AddPayment appends a payout to an investor
func (m *MockInvestorRepository) AddPayment(payment *domain.InvestorPayment) (*domain.InvestorPayment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	investor, ok := m.Investors[payment.InvestorID]
	if !ok || investor.DeletedAt != nil {
		return nil, domain.ErrInvestorNotFound
	}
	payment.ID = int32(len(investor.Payments) + 1)
	payment.CreatedAt = time.Now()
	investor.Payments = append(investor.Payments, payment)
	return payment, nil
}

// ReplaceAll swaps the whole book for the given snapshot
func (m *MockInvestorRepository) ReplaceAll(investors []*domain.Investor) error {
	if m.Err != nil {
		return m.Err
	}
	m.Investors = make(map[int32]*domain.Investor)
	m.NextID = 1
	for _, investor := range investors {
		m.Investors[investor.ID] = investor
		if investor.ID >= m.NextID {
			m.NextID = investor.ID + 1
		}
	}
	return nil
}

// MockUserRepository is an in-memory implementation of domain.UserRepository
type MockUserRepository struct {
	ByID    map[uuid.UUID]*domain.User
	ByEmail map[string]*domain.User
	Err     error
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		ByID:    make(map[uuid.UUID]*domain.User),
		ByEmail: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.ByID[user.ID] = user
	m.ByEmail[user.Email] = user
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail retrieves a user by email
func (m *MockUserRepository) GetByEmail(email string) (*domain.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if user, ok := m.ByEmail[email]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetAll lists every user
func (m *MockUserRepository) GetAll() ([]*domain.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	users := make([]*domain.User, 0, len(m.ByID))
	for _, user := range m.ByID {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

// Create stores a new user
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if _, taken := m.ByEmail[user.Email]; taken {
		return nil, domain.ErrEmailTaken
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.AddUser(user)
	return user, nil
}

// Delete removes a user
func (m *MockUserRepository) Delete(id uuid.UUID) error {
	if m.Err != nil {
		return m.Err
	}
	user, ok := m.ByID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(m.ByID, id)
	delete(m.ByEmail, user.Email)
	return nil
}

// UpdatePassword replaces the stored password hash
func (m *MockUserRepository) UpdatePassword(id uuid.UUID, passwordHash string) error {
	if m.Err != nil {
		return m.Err
	}
	user, ok := m.ByID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

// SetActiveTokenHash pins or clears the active session token hash
func (m *MockUserRepository) SetActiveTokenHash(id uuid.UUID, tokenHash *string) error {
	if m.Err != nil {
		return m.Err
	}
	user, ok := m.ByID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.ActiveTokenHash = tokenHash
	return nil
}

// SetResetToken stores or clears the reset token hash and expiry
func (m *MockUserRepository) SetResetToken(id uuid.UUID, tokenHash *string, expires *time.Time) error {
	if m.Err != nil {
		return m.Err
	}
	user, ok := m.ByID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.ResetTokenHash = tokenHash
	user.ResetTokenExpires = expires
	return nil
}

// MockBackupStore is an in-memory implementation of domain.BackupStore
type MockBackupStore struct {
	Docs map[string]*domain.BackupDocument
	Err  error
}

// NewMockBackupStore creates a new MockBackupStore
func NewMockBackupStore() *MockBackupStore {
	return &MockBackupStore{Docs: make(map[string]*domain.BackupDocument)}
}

// Put stores a snapshot
func (m *MockBackupStore) Put(ctx context.Context, doc *domain.BackupDocument) error {
	if m.Err != nil {
		return m.Err
	}
	m.Docs[doc.FileName] = doc
	return nil
}

// Get fetches a snapshot by file name
func (m *MockBackupStore) Get(ctx context.Context, fileName string) (*domain.BackupDocument, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	doc, ok := m.Docs[fileName]
	if !ok {
		return nil, domain.ErrBackupNotFound
	}
	return doc, nil
}

// List enumerates stored snapshots, newest first
func (m *MockBackupStore) List(ctx context.Context) ([]*domain.BackupInfo, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	infos := make([]*domain.BackupInfo, 0, len(m.Docs))
	for _, doc := range m.Docs {
		infos = append(infos, &domain.BackupInfo{
			FileName:   doc.FileName,
			BackedUpAt: doc.BackedUpAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].BackedUpAt.After(infos[j].BackedUpAt) })
	return infos, nil
}

// MockEmailSender records sent mail instead of delivering it
type MockEmailSender struct {
	Sent []MockEmail
	Err  error
}

// MockEmail is one recorded message
type MockEmail struct {
	To      []string
	Subject string
	Body    string
}

// Send records the message
func (m *MockEmailSender) Send(to []string, subject, body string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, MockEmail{To: to, Subject: subject, Body: body})
	return nil
}
