package usecase_test

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/ErlanBelekov/account-service/internal/repository"
	"github.com/google/uuid"
)

// memRepo is an in-memory account store. WithinTx snapshots the maps and
// restores them when fn fails, mimicking a rollback. The *Err fields
// inject failures into single operations.
type memRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account // by id
	secrets  map[string]string          // account id -> secret

	existsErr       error
	insertErr       error
	insertSecretErr error
	getSecretErr    error
	setVerifiedErr  error

	// raceOnInsert makes ExistsByEmail report false even when the email
	// is taken, as if another request inserted it in between.
	raceOnInsert bool
	setVerified  int
}

func newMemRepo() *memRepo {
	return &memRepo{
		accounts: make(map[string]*domain.Account),
		secrets:  make(map[string]string),
	}
}

func (r *memRepo) byEmail(email string) *domain.Account {
	for _, a := range r.accounts {
		if a.Email == email {
			return a
		}
	}
	return nil
}

func (r *memRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsErr != nil {
		return false, r.existsErr
	}
	if r.raceOnInsert {
		return false, nil
	}
	return r.byEmail(email) != nil, nil
}

func (r *memRepo) InsertAccount(_ context.Context, email, passwordHash string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return "", r.insertErr
	}
	if r.byEmail(email) != nil {
		return "", domain.ErrAccountExists
	}
	now := time.Now()
	a := &domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.accounts[a.ID] = a
	return a.ID, nil
}

func (r *memRepo) GetPasswordHash(_ context.Context, email string) (string, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.byEmail(email)
	if a == nil {
		return "", "", domain.ErrAccountNotFound
	}
	return a.ID, a.PasswordHash, nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memRepo) SetVerified(_ context.Context, id string, verified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setVerifiedErr != nil {
		return r.setVerifiedErr
	}
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Verified = verified
	r.setVerified++
	return nil
}

func (r *memRepo) InsertVerificationSecret(_ context.Context, accountID, secret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertSecretErr != nil {
		return r.insertSecretErr
	}
	r.secrets[accountID] = secret
	return nil
}

func (r *memRepo) GetVerificationSecret(_ context.Context, accountID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getSecretErr != nil {
		return "", r.getSecretErr
	}
	s, ok := r.secrets[accountID]
	if !ok {
		return "", domain.ErrSecretNotFound
	}
	return s, nil
}

func (r *memRepo) CountByVerified(_ context.Context) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var v, u int64
	for _, a := range r.accounts {
		if a.Verified {
			v++
		} else {
			u++
		}
	}
	return v, u, nil
}

func (r *memRepo) WithinTx(_ context.Context, fn func(repo repository.AccountRepository) error) error {
	r.mu.Lock()
	accounts := maps.Clone(r.accounts)
	secrets := maps.Clone(r.secrets)
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.accounts = accounts
		r.secrets = secrets
		r.mu.Unlock()
		return err
	}
	return nil
}
