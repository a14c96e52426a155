package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tsukuyomi260/ab-pret-sub001/internal/config"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/db"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/jobs"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/notification"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/observability"
	postgresrepo "github.com/Tsukuyomi260/ab-pret-sub001/internal/repository/postgres"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env, "abpret-reminderd")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	sender := notification.NewWebPushSender(notification.VAPIDConfig{
		PublicKey:  cfg.VAPIDPublicKey,
		PrivateKey: cfg.VAPIDPrivateKey,
		Subscriber: cfg.VAPIDSubscriber,
	})

	worker := jobs.NewWorker(
		postgresrepo.NewLoanRepository(pool),
		postgresrepo.NewSubscriptionRepository(pool),
		sender,
		logger,
	)

	interval := cfg.ReminderInterval
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("reminder worker started", "interval", interval.String(), "batch_size", cfg.ReminderBatchSize)
	for {
		select {
		case <-sigCtx.Done():
			logger.Info("reminder worker stopped")
			return
		case <-ticker.C:
			runCtx, runCancel := context.WithTimeout(context.Background(), 5*time.Minute)
			err := worker.RunOnce(runCtx, cfg.ReminderBatchSize)
			runCancel()
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("reminder sweep failed", "err", err)
			}
		}
	}
}
