package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	resetTokenTTL     = 30 * time.Minute
)

// AuthService handles admin login, session, and password management.
// One session per user: issuing a token pins its hash on the user row and
// every earlier token stops validating.
type AuthService struct {
	userRepo  domain.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// LoginResult carries the issued session token and its owner
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Login verifies credentials and issues a fresh session token, displacing
// any session the user already had.
func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	token, err := s.issueToken(user.ID, expiresAt)
	if err != nil {
		return nil, err
	}

	hash := hashToken(token)
	if err := s.userRepo.SetActiveTokenHash(user.ID, &hash); err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout clears the user's active session
func (s *AuthService) Logout(userID uuid.UUID) error {
	return s.userRepo.SetActiveTokenHash(userID, nil)
}

// VerifyToken checks a session token's signature, expiry, and that it is
// still the user's active session. Returns domain.ErrSessionReplaced when a
// newer login has displaced it.
func (s *AuthService) VerifyToken(token string) (*domain.User, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return nil, domain.ErrUnauthorized
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	hash := hashToken(token)
	if user.ActiveTokenHash == nil || *user.ActiveTokenHash != hash {
		return nil, domain.ErrSessionReplaced
	}

	return user, nil
}

// ChangePassword verifies the current password and swaps in the new one.
// The active session is kept.
func (s *AuthService) ChangePassword(userID uuid.UUID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return domain.ErrInvalidInput
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return domain.ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(userID, string(hashed))
}

// ForgotPassword mints a short-lived reset token for the account. The raw
// token is returned to be delivered out of band; only its hash is stored.
// An unknown email reports success without doing anything, so the endpoint
// cannot be used to probe for accounts.
func (s *AuthService) ForgotPassword(email string) (token string, user *domain.User, err error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err = s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, nil
		}
		return "", nil, err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, err
	}
	token = hex.EncodeToString(raw)

	hash := hashToken(token)
	expires := time.Now().Add(resetTokenTTL)
	if err := s.userRepo.SetResetToken(user.ID, &hash, &expires); err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// ResetPassword consumes a reset token and sets a new password. The reset
// token and any active session are both invalidated.
func (s *AuthService) ResetPassword(email, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return domain.ErrInvalidInput
	}

	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrResetTokenInvalid
		}
		return err
	}

	if user.ResetTokenHash == nil || user.ResetTokenExpires == nil {
		return domain.ErrResetTokenInvalid
	}
	if time.Now().After(*user.ResetTokenExpires) {
		return domain.ErrResetTokenInvalid
	}
	if hashToken(token) != *user.ResetTokenHash {
		return domain.ErrResetTokenInvalid
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(user.ID, string(hashed)); err != nil {
		return err
	}
	if err := s.userRepo.SetResetToken(user.ID, nil, nil); err != nil {
		return err
	}
	return s.userRepo.SetActiveTokenHash(user.ID, nil)
}

func (s *AuthService) issueToken(userID uuid.UUID, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.New().String(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// HashPassword bcrypt-hashes a plain password. Used when seeding admin
// accounts.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
