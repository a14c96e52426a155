package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/loan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LoanRepository struct {
	pool *pgxpool.Pool
}

func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `id, principal_minor, duration_days, rate_percent, interest_minor,
       total_due_minor, status, created_at, due_date, updated_at`

func (r *LoanRepository) Create(ctx context.Context, in loan.CreateInput) (*loan.Entity, error) {
	q := `
INSERT INTO loans (
  id, principal_minor, duration_days, rate_percent, interest_minor,
  total_due_minor, status, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING ` + loanColumns
	out := &loan.Entity{}
	err := r.pool.QueryRow(ctx, q,
		in.ID, in.PrincipalMinor, in.DurationDays, in.RatePercent, in.InterestMinor,
		in.TotalDueMinor, in.Status, in.CreatedAt,
	).Scan(
		&out.ID, &out.PrincipalMinor, &out.DurationDays, &out.RatePercent, &out.InterestMinor,
		&out.TotalDueMinor, &out.Status, &out.CreatedAt, &out.DueDate, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LoanRepository) GetByID(ctx context.Context, id string) (*loan.Entity, error) {
	q := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	out := &loan.Entity{}
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&out.ID, &out.PrincipalMinor, &out.DurationDays, &out.RatePercent, &out.InterestMinor,
		&out.TotalDueMinor, &out.Status, &out.CreatedAt, &out.DueDate, &out.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, loan.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LoanRepository) List(ctx context.Context, f loan.ListFilter) ([]loan.Entity, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + loanColumns + ` FROM loans WHERE 1=1`)

	args := []any{}
	argPos := 1
	if f.Status != "" {
		builder.WriteString(" AND status = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.Status)
		argPos++
	}
	builder.WriteString(" ORDER BY created_at DESC")
	builder.WriteString(" LIMIT $")
	builder.WriteString(strconv.Itoa(argPos))
	args = append(args, f.Limit)
	argPos++
	builder.WriteString(" OFFSET $")
	builder.WriteString(strconv.Itoa(argPos))
	args = append(args, f.Offset)

	rows, err := r.pool.Query(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]loan.Entity, 0)
	for rows.Next() {
		var item loan.Entity
		if err := rows.Scan(
			&item.ID, &item.PrincipalMinor, &item.DurationDays, &item.RatePercent, &item.InterestMinor,
			&item.TotalDueMinor, &item.Status, &item.CreatedAt, &item.DueDate, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LoanRepository) UpdateStatus(ctx context.Context, id string, from, to loan.Status) error {
	q := `UPDATE loans SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`
	tag, err := r.pool.Exec(ctx, q, id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return loan.ErrInvalidTransition
	}
	return nil
}

func (r *LoanRepository) Disburse(ctx context.Context, id string, dueDate time.Time) error {
	q := `UPDATE loans SET status = $3, due_date = $2, updated_at = NOW() WHERE id = $1 AND status = $4`
	tag, err := r.pool.Exec(ctx, q, id, dueDate, loan.StatusActive, loan.StatusApproved)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return loan.ErrInvalidTransition
	}
	return nil
}
