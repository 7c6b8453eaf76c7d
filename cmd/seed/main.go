// seed registers a demo account in the local dev database and prints its
// tokens.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"

	"github.com/ErlanBelekov/account-service/config"
	"github.com/ErlanBelekov/account-service/internal/credential"
	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/ErlanBelekov/account-service/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/account-service/internal/token"
	"github.com/ErlanBelekov/account-service/internal/usecase"
)

const (
	seedEmail    = "seed@test.local"
	seedPassword = "seed-password"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v (run: direnv allow)", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, postgres.MigrateUp); err != nil {
		pool.Close()
		log.Fatalf("migrate: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	uc := usecase.NewAccountUsecase(
		postgres.NewAccountRepository(pool),
		credential.NewHasher(cfg.BcryptCost),
		token.NewIssuer(cfg.TokenIssuer, cfg.TokenTTL),
		[]byte(cfg.AccessTokenSecret),
		logger,
	)

	res, err := uc.Register(ctx, seedEmail, seedPassword)
	switch {
	case errors.Is(err, domain.ErrAccountExists):
		fmt.Printf("Account %s already exists; log in with password %q.\n", seedEmail, seedPassword)
		return
	case err != nil:
		pool.Close()
		log.Fatalf("register: %v", err)
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Email:        %s\n", seedEmail)
	fmt.Printf("  Password:     %s\n", seedPassword)
	fmt.Printf("  Account ID:   %s\n", res.AccountID)
	fmt.Printf("  Token TTL:    %s\n", cfg.TokenTTL)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 - activate the account before the token expires:")
	fmt.Println()
	fmt.Printf("    curl -s 'http://localhost:%s/api/v1/user/activate?token=%s'\n", cfg.Port, url.QueryEscape(res.VerificationToken))
	fmt.Println()
	fmt.Println("  Step 2 - read the account with the access token:")
	fmt.Println()
	fmt.Printf("    curl -s http://localhost:%s/api/v1/user/me -H 'Authorization: Bearer %s'\n", cfg.Port, res.AccessToken)
}
