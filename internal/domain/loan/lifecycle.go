package loan

import (
	"context"
	"fmt"
	"time"

	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/quote"
	"github.com/google/uuid"
)

// transitions is the lifecycle graph. Transitions are monotonic: nothing
// leaves a terminal status, and nothing moves backward.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusActive},
	StatusActive:   {StatusCompleted},
}

// CanTransition reports whether from -> to is a legal lifecycle edge.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Service owns loan status. It is the only writer of Status; the repayment
// ledger drives the active -> completed edge through Complete.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Create persists a pending loan from a frozen quote. Every amount is copied
// verbatim; in particular TotalDueMinor is the quote's total, untouched.
func (s *Service) Create(ctx context.Context, q quote.LoanQuote) (*Entity, error) {
	created, err := s.repo.Create(ctx, CreateInput{
		ID:             uuid.New().String(),
		PrincipalMinor: q.PrincipalMinor,
		DurationDays:   q.DurationDays,
		RatePercent:    q.RatePercent,
		InterestMinor:  q.InterestMinor,
		TotalDueMinor:  q.TotalDueMinor,
		Status:         StatusPending,
		CreatedAt:      s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := VerifyQuoteIntegrity(created, q); err != nil {
		return nil, err
	}
	return created, nil
}

// Approve moves a pending loan to approved.
func (s *Service) Approve(ctx context.Context, id string) (*Entity, error) {
	return s.transition(ctx, id, StatusApproved)
}

// Reject moves a pending loan to rejected, a terminal status.
func (s *Service) Reject(ctx context.Context, id string) (*Entity, error) {
	return s.transition(ctx, id, StatusRejected)
}

// Disburse moves an approved loan to active and stamps its due date as
// creation time plus the loan duration.
func (s *Service) Disburse(ctx context.Context, id string) (*Entity, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(current.Status, StatusActive) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, StatusActive)
	}

	dueDate := current.CreatedAt.AddDate(0, 0, current.DurationDays)
	if err := s.repo.Disburse(ctx, id, dueDate); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Complete moves an active loan to completed. It is not exposed on the HTTP
// surface; the repayment ledger calls it when the remaining balance reaches
// zero.
func (s *Service) Complete(ctx context.Context, id string) (*Entity, error) {
	return s.transition(ctx, id, StatusCompleted)
}

func (s *Service) Get(ctx context.Context, id string) (*Entity, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Entity, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) transition(ctx context.Context, id string, to Status) (*Entity, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(current.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, id, current.Status, to); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// VerifyQuoteIntegrity checks that a loan still carries the exact total due
// of the quote that created it. A mismatch is a defect in the engine and is
// reported, never corrected.
func VerifyQuoteIntegrity(l *Entity, q quote.LoanQuote) error {
	if l.TotalDueMinor != q.TotalDueMinor {
		return &IntegrityError{
			LoanID:        l.ID,
			QuoteTotalDue: q.TotalDueMinor,
			LoanTotalDue:  l.TotalDueMinor,
		}
	}
	return nil
}
