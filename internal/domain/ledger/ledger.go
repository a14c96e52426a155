package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/loan"
	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
)

// ErrLoanNotActive is returned when a payment targets a loan that is not in
// the active status. No ledger mutation happens in that case.
var ErrLoanNotActive = errors.New("loan not active")

// Payment is a single applied repayment event. Reference is the caller's
// idempotency key; DedupeHash is its stable per-loan fingerprint.
type Payment struct {
	ID          string    `json:"id"`
	LoanID      string    `json:"loan_id"`
	AmountMinor int64     `json:"amount_minor"`
	Reference   string    `json:"reference"`
	DedupeHash  []byte    `json:"-"`
	AppliedAt   time.Time `json:"applied_at"`
}

// RepaymentState is derived from the payment log and the loan's frozen total
// due. It is never stored independently.
type RepaymentState struct {
	LoanID         string `json:"loan_id"`
	TotalDueMinor  int64  `json:"total_due_minor"`
	PaidMinor      int64  `json:"paid_minor"`
	RemainingMinor int64  `json:"remaining_minor"`
}

type PaymentRepository interface {
	GetByDedupeHash(ctx context.Context, dedupeHash []byte) (*Payment, error)
	Append(ctx context.Context, p Payment) error
	SumByLoan(ctx context.Context, loanID string) (int64, error)
	ListByLoan(ctx context.Context, loanID string) ([]Payment, error)
}

// ErrPaymentNotFound is the GetByDedupeHash miss result.
var ErrPaymentNotFound = errors.New("payment not found")

type LoanReader interface {
	GetByID(ctx context.Context, id string) (*loan.Entity, error)
}

type Lifecycle interface {
	Complete(ctx context.Context, id string) (*loan.Entity, error)
}

// Service accumulates payments against loans. Operations on the same loan id
// are mutually exclusive; different loans proceed independently.
type Service struct {
	loans    LoanReader
	payments PaymentRepository
	life     Lifecycle
	logger   *slog.Logger
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(loans LoanReader, payments PaymentRepository, life Lifecycle, logger *slog.Logger) *Service {
	return &Service{
		loans:    loans,
		payments: payments,
		life:     life,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		locks:    map[string]*sync.Mutex{},
	}
}

// PaymentHash derives the stable dedupe fingerprint for a payment reference
// scoped to a loan.
func PaymentHash(loanID, reference string) []byte {
	input := fmt.Sprintf("%s:%s", strings.TrimSpace(loanID), strings.TrimSpace(reference))
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(input))
	return h.Sum(nil)
}

// ApplyPayment appends a payment and recomputes the repayment state.
// Replaying an already-applied reference returns the current state without
// double-counting. Reaching a zero remainder on an active loan drives the
// lifecycle to completed.
func (s *Service) ApplyPayment(ctx context.Context, loanID string, amountMinor int64, reference string) (*RepaymentState, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, errors.New("missing payment reference")
	}
	if amountMinor <= 0 {
		return nil, errors.New("payment amount must be positive")
	}

	unlock := s.lock(loanID)
	defer unlock()

	l, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	// Replay of a known reference is a no-op whatever the loan's status by
	// now: the original application may have completed the loan.
	hash := PaymentHash(loanID, reference)
	if existing, err := s.payments.GetByDedupeHash(ctx, hash); err == nil && existing != nil {
		return s.state(ctx, l)
	} else if err != nil && !errors.Is(err, ErrPaymentNotFound) {
		return nil, err
	}

	if l.Status != loan.StatusActive {
		return nil, fmt.Errorf("%w: status %s", ErrLoanNotActive, l.Status)
	}

	if err := s.payments.Append(ctx, Payment{
		ID:          uuid.New().String(),
		LoanID:      loanID,
		AmountMinor: amountMinor,
		Reference:   strings.TrimSpace(reference),
		DedupeHash:  hash,
		AppliedAt:   s.now(),
	}); err != nil {
		return nil, err
	}

	state, err := s.state(ctx, l)
	if err != nil {
		return nil, err
	}

	if state.RemainingMinor == 0 && l.Status == loan.StatusActive {
		if _, err := s.life.Complete(ctx, loanID); err != nil {
			return nil, err
		}
	}

	return state, nil
}

// GetRepaymentState derives the current paid/remaining amounts for a loan of
// any status.
func (s *Service) GetRepaymentState(ctx context.Context, loanID string) (*RepaymentState, error) {
	l, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return s.state(ctx, l)
}

func (s *Service) ListPayments(ctx context.Context, loanID string) ([]Payment, error) {
	if _, err := s.loans.GetByID(ctx, loanID); err != nil {
		return nil, err
	}
	return s.payments.ListByLoan(ctx, loanID)
}

func (s *Service) state(ctx context.Context, l *loan.Entity) (*RepaymentState, error) {
	paid, err := s.payments.SumByLoan(ctx, l.ID)
	if err != nil {
		return nil, err
	}

	remaining := l.TotalDueMinor - paid
	if remaining < 0 {
		// Overpayment is clamped, not rejected. The payment log keeps the
		// full amounts so the books stay auditable.
		s.logger.Warn("overpayment clamped",
			"loan_id", l.ID, "total_due_minor", l.TotalDueMinor, "paid_minor", paid)
		remaining = 0
	}

	return &RepaymentState{
		LoanID:         l.ID,
		TotalDueMinor:  l.TotalDueMinor,
		PaidMinor:      paid,
		RemainingMinor: remaining,
	}, nil
}

func (s *Service) lock(loanID string) func() {
	s.mu.Lock()
	m, ok := s.locks[loanID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[loanID] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}
