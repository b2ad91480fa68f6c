package domain

import "errors"

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInternalError      = errors.New("internal error")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrLoanNotFound       = errors.New("loan not found")
	ErrInvestorNotFound   = errors.New("investor not found")
	ErrInvestorClosed     = errors.New("investor account is closed")
	ErrSessionReplaced    = errors.New("session replaced by a newer login")
	ErrResetTokenInvalid  = errors.New("reset token is invalid or expired")
	ErrBackupNotFound     = errors.New("backup not found")
	ErrBackupEmpty        = errors.New("backup contains no loans or investors")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Validation constants
const (
	MaxCustomerNameLength = 200
	MaxDisplayNameLength  = 100
)
