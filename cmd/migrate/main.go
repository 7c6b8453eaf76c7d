// migrate applies the embedded schema migrations.
// Run: go run ./cmd/migrate [up|down|status]
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/account-service/internal/infrastructure/postgres"
	"github.com/lmittmann/tint"
)

func main() {
	dir := postgres.MigrateUp
	if len(os.Args) > 1 {
		dir = postgres.Direction(os.Args[1])
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.Kitchen}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, dir); err != nil {
		logger.Error("migration failed", "direction", dir, "error", err)
		pool.Close()
		os.Exit(1)
	}
	logger.Info("migration finished", "direction", dir)
}
