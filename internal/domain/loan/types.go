package loan

import (
	"context"
	"errors"
	"time"
)

// Status is the lifecycle stage of a loan.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

var validStatuses = map[Status]struct{}{
	StatusPending:   {},
	StatusApproved:  {},
	StatusRejected:  {},
	StatusActive:    {},
	StatusCompleted: {},
}

func (s Status) Valid() bool {
	_, ok := validStatuses[s]
	return ok
}

// Terminal reports whether no further transition is legal from s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

var (
	ErrNotFound          = errors.New("loan not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// IntegrityError reports a loan whose stored total disagrees with the quote
// that created it. It indicates a defect in the engine, never bad input, and
// must be surfaced, not corrected.
type IntegrityError struct {
	LoanID        string
	QuoteTotalDue int64
	LoanTotalDue  int64
}

func (e *IntegrityError) Error() string {
	return "loan total due diverged from originating quote"
}

// Entity is a loan record. TotalDueMinor is write-once: it is copied verbatim
// from the originating quote and no code path recomputes it afterwards.
type Entity struct {
	ID             string    `json:"id"`
	PrincipalMinor int64     `json:"principal_minor"`
	DurationDays   int       `json:"duration_days"`
	RatePercent    int64     `json:"rate_percent"`
	InterestMinor  int64     `json:"interest_minor"`
	TotalDueMinor  int64     `json:"total_due_minor"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	DueDate        time.Time `json:"due_date"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CreateInput struct {
	ID             string
	PrincipalMinor int64
	DurationDays   int
	RatePercent    int64
	InterestMinor  int64
	TotalDueMinor  int64
	Status         Status
	CreatedAt      time.Time
	DueDate        time.Time
}

type ListFilter struct {
	Status Status
	Limit  int32
	Offset int32
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Entity, error)
	GetByID(ctx context.Context, id string) (*Entity, error)
	List(ctx context.Context, f ListFilter) ([]Entity, error)
	// UpdateStatus moves a loan from one status to another. It must be
	// conditional on the current status so a concurrent transition loses
	// cleanly, and reports ErrInvalidTransition when the guard fails.
	UpdateStatus(ctx context.Context, id string, from, to Status) error
	// Disburse is UpdateStatus(approved, active) plus stamping the due date,
	// in one conditional write.
	Disburse(ctx context.Context, id string, dueDate time.Time) error
}
