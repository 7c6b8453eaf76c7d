package postgres

import (
	"context"
	"errors"

	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/ErlanBelekov/account-service/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountRepository struct {
	pool *pgxpool.Pool
	db   querier
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool, db: pool}
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, storeErr("exists by email", err)
	}
	return exists, nil
}

func (r *AccountRepository) InsertAccount(ctx context.Context, email, passwordHash string) (string, error) {
	var id string
	err := r.db.QueryRow(ctx,
		`INSERT INTO accounts (email, password_hash) VALUES ($1, $2) RETURNING id::text`,
		email, passwordHash,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", domain.ErrAccountExists
		}
		return "", storeErr("insert account", err)
	}
	return id, nil
}

func (r *AccountRepository) GetPasswordHash(ctx context.Context, email string) (string, string, error) {
	var id, hash string
	err := r.db.QueryRow(ctx,
		`SELECT id::text, password_hash FROM accounts WHERE email = $1`, email,
	).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", domain.ErrAccountNotFound
		}
		return "", "", storeErr("get password hash", err)
	}
	return id, hash, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id::text, email, password_hash, verified, created_at, updated_at
		FROM accounts
		WHERE id = $1`, id)
	return scanAccount(row)
}

func (r *AccountRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE accounts SET verified = $2, updated_at = NOW() WHERE id = $1`,
		id, verified,
	)
	if err != nil {
		return storeErr("set verified", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) InsertVerificationSecret(ctx context.Context, accountID, secret string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO verification_secrets (account_id, secret) VALUES ($1, $2)`,
		accountID, secret,
	)
	if err != nil {
		return storeErr("insert verification secret", err)
	}
	return nil
}

func (r *AccountRepository) GetVerificationSecret(ctx context.Context, accountID string) (string, error) {
	var secret string
	err := r.db.QueryRow(ctx,
		`SELECT secret FROM verification_secrets WHERE account_id = $1`, accountID,
	).Scan(&secret)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrSecretNotFound
		}
		return "", storeErr("get verification secret", err)
	}
	return secret, nil
}

func (r *AccountRepository) CountByVerified(ctx context.Context) (int64, int64, error) {
	var verified, unverified int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE verified),
		       COUNT(*) FILTER (WHERE NOT verified)
		FROM accounts`,
	).Scan(&verified, &unverified)
	if err != nil {
		return 0, 0, storeErr("count accounts", err)
	}
	return verified, unverified, nil
}

// WithinTx runs fn against a repository bound to one transaction. Nested
// calls reuse the outer transaction. Errors returned by fn pass through
// unchanged after the rollback.
func (r *AccountRepository) WithinTx(ctx context.Context, fn func(repo repository.AccountRepository) error) (err error) {
	if _, inTx := r.db.(pgx.Tx); inTx {
		return fn(r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storeErr("begin tx", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(&AccountRepository{pool: r.pool, db: tx}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return storeErr("commit tx", err)
	}
	return nil
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Verified, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, storeErr("scan account", err)
	}
	return &a, nil
}
