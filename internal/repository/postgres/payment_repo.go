package postgres

import (
	"context"
	"errors"

	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/ledger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) GetByDedupeHash(ctx context.Context, dedupeHash []byte) (*ledger.Payment, error) {
	q := `
SELECT id, loan_id, amount_minor, reference, dedupe_hash, applied_at
FROM payments WHERE dedupe_hash = $1
`
	out := &ledger.Payment{}
	err := r.pool.QueryRow(ctx, q, dedupeHash).Scan(
		&out.ID, &out.LoanID, &out.AmountMinor, &out.Reference, &out.DedupeHash, &out.AppliedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Append inserts a payment row. The unique index on dedupe_hash is the
// database-side idempotency backstop: a concurrent duplicate lands on the
// conflict clause and becomes a no-op.
func (r *PaymentRepository) Append(ctx context.Context, p ledger.Payment) error {
	q := `
INSERT INTO payments (id, loan_id, amount_minor, reference, dedupe_hash, applied_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (dedupe_hash) DO NOTHING
`
	_, err := r.pool.Exec(ctx, q, p.ID, p.LoanID, p.AmountMinor, p.Reference, p.DedupeHash, p.AppliedAt)
	return err
}

func (r *PaymentRepository) SumByLoan(ctx context.Context, loanID string) (int64, error) {
	q := `SELECT COALESCE(SUM(amount_minor), 0)::bigint FROM payments WHERE loan_id = $1`
	var sum int64
	if err := r.pool.QueryRow(ctx, q, loanID).Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}

func (r *PaymentRepository) ListByLoan(ctx context.Context, loanID string) ([]ledger.Payment, error) {
	q := `
SELECT id, loan_id, amount_minor, reference, dedupe_hash, applied_at
FROM payments WHERE loan_id = $1
ORDER BY applied_at ASC
`
	rows, err := r.pool.Query(ctx, q, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ledger.Payment, 0)
	for rows.Next() {
		var p ledger.Payment
		if err := rows.Scan(&p.ID, &p.LoanID, &p.AmountMinor, &p.Reference, &p.DedupeHash, &p.AppliedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
