package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/loan"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/reminder"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/notification"
)

type LoanLister interface {
	List(ctx context.Context, f loan.ListFilter) ([]loan.Entity, error)
}

type SubscriptionRepository interface {
	ListByLoan(ctx context.Context, loanID string) ([]notification.Target, error)
	Delete(ctx context.Context, endpoint string) error
}

// Worker sweeps active loans, classifies their reminder window and pushes a
// message for each subscribed target. It never writes ledger or lifecycle
// state; delivery is fire-and-forget with respect to the engine.
type Worker struct {
	loans  LoanLister
	subs   SubscriptionRepository
	sender notification.Sender
	logger *slog.Logger
	now    func() time.Time
}

func NewWorker(loans LoanLister, subs SubscriptionRepository, sender notification.Sender, logger *slog.Logger) *Worker {
	return &Worker{
		loans:  loans,
		subs:   subs,
		sender: sender,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RunOnce performs one sweep over active loans, paging by batchSize.
func (w *Worker) RunOnce(ctx context.Context, batchSize int32) error {
	if batchSize <= 0 {
		batchSize = 100
	}
	now := w.now()

	var offset int32
	for {
		batch, err := w.loans.List(ctx, loan.ListFilter{
			Status: loan.StatusActive,
			Limit:  batchSize,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		for i := range batch {
			w.remind(ctx, &batch[i], now)
		}

		if int32(len(batch)) < batchSize {
			return nil
		}
		offset += batchSize
	}
}

func (w *Worker) remind(ctx context.Context, l *loan.Entity, now time.Time) {
	c := reminder.Classify(l, now)
	if c.Window == reminder.WindowNone {
		return
	}

	msg := reminder.BuildMessage(l, c.Window, c.DaysUntilDue)
	payload, _ := json.Marshal(msg)

	targets, err := w.subs.ListByLoan(ctx, l.ID)
	if err != nil {
		w.logger.Error("listing push targets failed", "loan_id", l.ID, "err", err)
		return
	}

	for _, target := range targets {
		err := w.sender.Send(ctx, target, payload)
		switch {
		case errors.Is(err, notification.ErrTargetGone):
			if delErr := w.subs.Delete(ctx, target.Endpoint); delErr != nil {
				w.logger.Error("removing gone push target failed", "loan_id", l.ID, "err", delErr)
			} else {
				w.logger.Info("removed gone push target", "loan_id", l.ID)
			}
		case err != nil:
			// Transient failure. Logged and dropped; the next sweep retries.
			w.logger.Warn("push delivery failed", "loan_id", l.ID, "window", c.Window, "err", err)
		default:
			w.logger.Info("reminder sent", "loan_id", l.ID, "window", c.Window, "days_until_due", c.DaysUntilDue)
		}
	}
}
