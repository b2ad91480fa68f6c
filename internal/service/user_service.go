package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/domain"
)

// ErrLastAdmin is returned when deleting the only remaining admin account
var ErrLastAdmin = errors.New("cannot delete the last admin account")

// UserService handles admin account management
type UserService struct {
	userRepo domain.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo domain.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateAdminInput contains input for creating an admin account
type CreateAdminInput struct {
	Email       string
	Password    string
	DisplayName string
}

// CreateAdmin registers a new admin account
func (s *UserService) CreateAdmin(input CreateAdminInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidInput
	}
	if len(input.Password) < minPasswordLength {
		return nil, domain.ErrInvalidInput
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if len(displayName) > domain.MaxDisplayNameLength {
		return nil, domain.ErrInvalidInput
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	return s.userRepo.Create(&domain.User{
		Email:        email,
		PasswordHash: hashed,
		DisplayName:  displayName,
	})
}

// GetAdmin retrieves an admin account by ID
func (s *UserService) GetAdmin(id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(id)
}

// ListAdmins lists every admin account
func (s *UserService) ListAdmins() ([]*domain.User, error) {
	return s.userRepo.GetAll()
}

// DeleteAdmin removes an admin account. The last remaining account cannot
// be deleted, or nobody could log in again.
func (s *UserService) DeleteAdmin(id uuid.UUID) error {
	users, err := s.userRepo.GetAll()
	if err != nil {
		return err
	}
	if len(users) <= 1 {
		return ErrLastAdmin
	}
	return s.userRepo.Delete(id)
}
