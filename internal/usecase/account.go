package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ErlanBelekov/account-service/internal/credential"
	"github.com/ErlanBelekov/account-service/internal/domain"
	ctxlog "github.com/ErlanBelekov/account-service/internal/log"
	"github.com/ErlanBelekov/account-service/internal/metrics"
	"github.com/ErlanBelekov/account-service/internal/repository"
	"github.com/ErlanBelekov/account-service/internal/token"
	"github.com/google/uuid"
)

// passwordHasher is satisfied by *credential.Hasher.
type passwordHasher interface {
	Hash(password string) (string, error)
	Compare(password, hash string) bool
}

type RegisterResult struct {
	AccountID         string
	AccessToken       string
	VerificationToken string
}

type LoginResult struct {
	AccountID   string
	AccessToken string
}

type AccountUsecase struct {
	accounts  repository.AccountRepository
	hasher    passwordHasher
	tokens    *token.Issuer
	accessKey []byte
	newSecret func() (string, error)
	logger    *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAccountUsecase(
	accounts repository.AccountRepository,
	hasher passwordHasher,
	tokens *token.Issuer,
	accessKey []byte,
	logger *slog.Logger,
) *AccountUsecase {
	return &AccountUsecase{
		accounts:  accounts,
		hasher:    hasher,
		tokens:    tokens,
		accessKey: accessKey,
		newSecret: credential.NewVerificationSecret,
		logger:    logger.With("component", "account_usecase"),
	}
}

// TokenTTL is the lifetime of both access and verification tokens.
func (u *AccountUsecase) TokenTTL() time.Duration {
	return u.tokens.TTL()
}

// Register creates an account with a hashed password and its verification
// secret in one transaction, then returns an access token signed with the
// service key and a verification token signed with the new secret.
func (u *AccountUsecase) Register(ctx context.Context, email, password string) (*RegisterResult, error) {
	ctx = ctxlog.WithOperation(ctx, "register")

	res, err := u.register(ctx, email, password)
	metrics.RegistrationsTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			u.logger.InfoContext(ctx, "registration rejected, email taken")
		} else {
			u.logger.ErrorContext(ctx, "registration failed", "error", err)
		}
		return nil, err
	}

	u.logger.InfoContext(ctx, "account registered", "account_id", res.AccountID)
	return res, nil
}

func (u *AccountUsecase) register(ctx context.Context, email, password string) (*RegisterResult, error) {
	exists, err := u.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, domain.ErrAccountExists
	}

	start := time.Now()
	hash, err := u.hasher.Hash(password)
	metrics.PasswordHashDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	res := &RegisterResult{}
	err = u.accounts.WithinTx(ctx, func(tx repository.AccountRepository) error {
		// A concurrent registration may insert the same email after the
		// existence check; the unique constraint reports it as ErrAccountExists.
		id, err := tx.InsertAccount(ctx, email, hash)
		if err != nil {
			return fmt.Errorf("insert account: %w", err)
		}

		secret, err := u.newSecret()
		if err != nil {
			return err
		}

		access, err := u.tokens.Issue(id, u.accessKey)
		if err != nil {
			return fmt.Errorf("issue access token: %w: %w", domain.ErrTokenSigning, err)
		}

		if err := tx.InsertVerificationSecret(ctx, id, secret); err != nil {
			return fmt.Errorf("insert verification secret: %w", err)
		}

		verification, err := u.tokens.Issue(id, []byte(secret))
		if err != nil {
			return fmt.Errorf("issue verification token: %w: %w", domain.ErrTokenSigning, err)
		}

		res.AccountID = id
		res.AccessToken = access
		res.VerificationToken = verification
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Activate marks the token's subject as verified. The subject is read from
// the unverified token only to find the account's secret; the token must
// then verify under that secret before anything is written.
func (u *AccountUsecase) Activate(ctx context.Context, rawToken string) error {
	ctx = ctxlog.WithOperation(ctx, "activate")

	accountID, err := u.activate(ctx, rawToken)
	metrics.ActivationsTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			u.logger.InfoContext(ctx, "activation rejected", "account_id", accountID, "reason", err)
		} else {
			u.logger.ErrorContext(ctx, "activation failed", "account_id", accountID, "error", err)
		}
		return err
	}

	u.logger.InfoContext(ctx, "account activated", "account_id", accountID)
	return nil
}

func (u *AccountUsecase) activate(ctx context.Context, rawToken string) (string, error) {
	subject, err := token.PeekSubject(rawToken)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTokenInvalid, err)
	}
	if _, err := uuid.Parse(subject); err != nil {
		return "", fmt.Errorf("%w: subject is not an account id", domain.ErrTokenInvalid)
	}

	secret, err := u.accounts.GetVerificationSecret(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return subject, fmt.Errorf("%w: %w", domain.ErrTokenInvalid, err)
		}
		return subject, fmt.Errorf("get verification secret: %w", err)
	}

	if _, err := u.tokens.Verify(rawToken, []byte(secret)); err != nil {
		return subject, fmt.Errorf("%w: %w", domain.ErrTokenInvalid, err)
	}

	if err := u.accounts.SetVerified(ctx, subject, true); err != nil {
		return subject, fmt.Errorf("set verified: %w", err)
	}
	return subject, nil
}

// Login checks the password against the stored hash and issues a new
// access token. Unknown emails and wrong passwords are indistinguishable.
func (u *AccountUsecase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	ctx = ctxlog.WithOperation(ctx, "login")

	res, err := u.login(ctx, email, password)
	metrics.LoginsTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			u.logger.InfoContext(ctx, "login rejected")
		} else {
			u.logger.ErrorContext(ctx, "login failed", "error", err)
		}
		return nil, err
	}
	return res, nil
}

func (u *AccountUsecase) login(ctx context.Context, email, password string) (*LoginResult, error) {
	id, hash, err := u.accounts.GetPasswordHash(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			// Spend the same bcrypt time as a real comparison.
			u.hasher.Compare(password, u.placeholderHash())
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get password hash: %w", err)
	}

	if !u.hasher.Compare(password, hash) {
		return nil, domain.ErrInvalidCredentials
	}

	access, err := u.tokens.Issue(id, u.accessKey)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w: %w", domain.ErrTokenSigning, err)
	}
	return &LoginResult{AccountID: id, AccessToken: access}, nil
}

// Account returns the account behind an authenticated access token.
func (u *AccountUsecase) Account(ctx context.Context, id string) (*domain.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrAccountNotFound
	}
	a, err := u.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

func (u *AccountUsecase) placeholderHash() string {
	u.dummyOnce.Do(func() {
		u.dummyHash, _ = u.hasher.Hash(uuid.NewString())
	})
	return u.dummyHash
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrAccountExists):
		return "exists"
	case errors.Is(err, domain.ErrTokenInvalid):
		return "invalid_token"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}
