package postgres

import (
	"context"

	"github.com/Tsukuyomi260/ab-pret-sub001/internal/notification"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubscriptionRepository stores the push delivery targets the reminder sweep
// fans out to.
type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

func (r *SubscriptionRepository) Create(ctx context.Context, loanID string, target notification.Target) error {
	q := `
INSERT INTO push_subscriptions (loan_id, endpoint, p256dh, auth, created_at)
VALUES ($1,$2,$3,$4,NOW())
ON CONFLICT (endpoint) DO UPDATE SET loan_id = EXCLUDED.loan_id, p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth
`
	_, err := r.pool.Exec(ctx, q, loanID, target.Endpoint, target.P256dh, target.Auth)
	return err
}

func (r *SubscriptionRepository) ListByLoan(ctx context.Context, loanID string) ([]notification.Target, error) {
	q := `SELECT endpoint, p256dh, auth FROM push_subscriptions WHERE loan_id = $1`
	rows, err := r.pool.Query(ctx, q, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notification.Target, 0)
	for rows.Next() {
		var t notification.Target
		if err := rows.Scan(&t.Endpoint, &t.P256dh, &t.Auth); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a target, typically after the transport reported it
// permanently gone.
func (r *SubscriptionRepository) Delete(ctx context.Context, endpoint string) error {
	q := `DELETE FROM push_subscriptions WHERE endpoint = $1`
	_, err := r.pool.Exec(ctx, q, endpoint)
	return err
}
