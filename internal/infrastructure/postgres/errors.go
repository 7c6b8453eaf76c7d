package postgres

import (
	"errors"
	"fmt"

	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

func asPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// storeErr tags err as a store failure and names the failed operation.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
