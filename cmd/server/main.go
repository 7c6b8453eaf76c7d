package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/account-service/config"
	"github.com/ErlanBelekov/account-service/internal/credential"
	"github.com/ErlanBelekov/account-service/internal/health"
	"github.com/ErlanBelekov/account-service/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/account-service/internal/log"
	"github.com/ErlanBelekov/account-service/internal/metrics"
	"github.com/ErlanBelekov/account-service/internal/scheduler"
	"github.com/ErlanBelekov/account-service/internal/token"
	httptransport "github.com/ErlanBelekov/account-service/internal/transport/http"
	"github.com/ErlanBelekov/account-service/internal/transport/http/handler"
	"github.com/ErlanBelekov/account-service/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, postgres.MigrateUp); err != nil {
			stop()
			pool.Close()
			log.Fatalf("migrate: %v", err)
		}
		logger.Info("migrations applied")
	}

	accessKey := []byte(cfg.AccessTokenSecret)
	issuer := token.NewIssuer(cfg.TokenIssuer, cfg.TokenTTL)

	accountRepo := postgres.NewAccountRepository(pool)
	accountUsecase := usecase.NewAccountUsecase(accountRepo, credential.NewHasher(cfg.BcryptCost), issuer, accessKey, logger)
	accountHandler := handler.NewAccountHandler(accountUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(map[string]health.Pinger{"postgres": pool}, logger, prometheus.DefaultRegisterer)

	stats, err := scheduler.NewStatsCollector(accountRepo, metrics.AccountsByState, cfg.StatsCron, logger)
	if err != nil {
		stop()
		pool.Close()
		log.Fatalf("stats collector: %v", err)
	}
	go stats.Start(ctx)

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httptransport.NewRouter(logger, accountHandler, issuer, accessKey, cfg.RequestTimeout),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
