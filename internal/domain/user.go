package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an admin account. ActiveTokenHash holds the SHA-256 of the one
// session token currently allowed for this user; issuing a new token on
// login invalidates every earlier session.
type User struct {
	ID                uuid.UUID  `json:"id"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	DisplayName       string     `json:"displayName"`
	ActiveTokenHash   *string    `json:"-"`
	ResetTokenHash    *string    `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// UserRepository defines the interface for admin-user persistence operations
type UserRepository interface {
	GetByID(id uuid.UUID) (*User, error)
	GetByEmail(email string) (*User, error)
	GetAll() ([]*User, error)
	Create(user *User) (*User, error)
	Delete(id uuid.UUID) error
	UpdatePassword(id uuid.UUID, passwordHash string) error
	SetActiveTokenHash(id uuid.UUID, tokenHash *string) error
	SetResetToken(id uuid.UUID, tokenHash *string, expires *time.Time) error
}
