package repository

import (
	"context"

	"github.com/ErlanBelekov/account-service/internal/domain"
)

// AccountRepository is the account store consumed by the usecases.
// Implementations wrap infrastructure failures with domain.ErrStoreUnavailable.
type AccountRepository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// InsertAccount returns domain.ErrAccountExists on a unique email violation,
	// which covers registrations racing past ExistsByEmail.
	InsertAccount(ctx context.Context, email, passwordHash string) (string, error)
	GetPasswordHash(ctx context.Context, email string) (accountID, passwordHash string, err error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	SetVerified(ctx context.Context, id string, verified bool) error

	InsertVerificationSecret(ctx context.Context, accountID, secret string) error
	GetVerificationSecret(ctx context.Context, accountID string) (string, error)

	CountByVerified(ctx context.Context) (verified, unverified int64, err error)

	// WithinTx runs fn against a repository bound to a single transaction.
	// It commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(repo AccountRepository) error) error
}
