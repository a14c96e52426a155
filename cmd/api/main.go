package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tsukuyomi260/ab-pret-sub001/internal/auth"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/config"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/db"
	ledgerdomain "github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/ledger"
	loandomain "github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/loan"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/quote"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/rate"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/request"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/http/handlers"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/observability"
	postgresrepo "github.com/Tsukuyomi260/ab-pret-sub001/internal/repository/postgres"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/repository/rediscache"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/server"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env, "abpret-api")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	schedule := rate.Default()
	calculator := quote.NewCalculator(schedule, quote.Bounds{
		MinAmountMinor: cfg.LoanMinAmount,
		MaxAmountMinor: cfg.LoanMaxAmount,
	})
	validator := request.NewValidator(schedule, request.Bounds{
		MinAmountMinor: cfg.LoanMinAmount,
		MaxAmountMinor: cfg.LoanMaxAmount,
		MinIncomeMinor: cfg.IncomeMin,
		MaxIncomeMinor: cfg.IncomeMax,
	})

	quoteCache := rediscache.NewQuoteCache(cfg.RedisAddr, cfg.QuoteCacheTTL)
	defer quoteCache.Close()

	loanRepo := postgresrepo.NewLoanRepository(pool)
	lifecycle := loandomain.NewService(loanRepo)
	ledgerService := ledgerdomain.NewService(
		loanRepo,
		postgresrepo.NewPaymentRepository(pool),
		lifecycle,
		logger,
	)
	subsRepo := postgresrepo.NewSubscriptionRepository(pool)

	jwtManager := auth.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSigningKey)
	quoteHandler := handlers.NewQuoteHandler(schedule, calculator, validator, quoteCache)
	loanHandler := handlers.NewLoanHandler(lifecycle, ledgerService, calculator, validator, quoteCache, logger)
	reminderHandler := handlers.NewReminderHandler(lifecycle, subsRepo)

	r := server.NewRouter(cfg, logger, server.Dependencies{
		Pinger:          pool,
		QuoteHandler:    quoteHandler,
		LoanHandler:     loanHandler,
		ReminderHandler: reminderHandler,
		JWTManager:      jwtManager,
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("api server starting", "addr", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	logger.Info("api server stopped")
}
