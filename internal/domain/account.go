package domain

import (
	"errors"
	"time"
)

var (
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrSecretNotFound     = errors.New("verification secret not found")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Internal failure categories. Lower-level causes are wrapped alongside
// them so callers can classify with errors.Is without losing the cause.
var (
	ErrHashing          = errors.New("password hashing failed")
	ErrStoreUnavailable = errors.New("account store unavailable")
	ErrTokenSigning     = errors.New("token signing failed")
)

type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// VerificationSecret is the per-account HMAC key for verification tokens.
// It is never returned to clients.
type VerificationSecret struct {
	ID        string
	AccountID string
	Secret    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
