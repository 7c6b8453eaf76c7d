package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ErlanBelekov/account-service/internal/infrastructure/postgres/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Direction selects the goose command run by Migrate.
type Direction string

const (
	MigrateUp     Direction = "up"
	MigrateDown   Direction = "down"
	MigrateStatus Direction = "status"
)

// gooseRun is a seam for tests.
var gooseRun = func(ctx context.Context, db *sql.DB, dir Direction) error {
	switch dir {
	case MigrateUp:
		return goose.UpContext(ctx, db, ".")
	case MigrateDown:
		return goose.DownContext(ctx, db, ".")
	case MigrateStatus:
		return goose.StatusContext(ctx, db, ".")
	default:
		return fmt.Errorf("unknown migration direction %q", dir)
	}
}

// Migrate runs the embedded migrations against the pool through a
// database/sql handle that shares the pool's connections.
func Migrate(ctx context.Context, pool *pgxpool.Pool, dir Direction) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := gooseRun(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate %s: %w", dir, err)
	}
	return nil
}
