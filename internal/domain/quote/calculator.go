package quote

import (
	"errors"
	"fmt"

	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/rate"
	"github.com/shopspring/decimal"
)

// ErrAmountOutOfRange is returned when the requested principal falls outside
// the configured bounds.
var ErrAmountOutOfRange = errors.New("principal out of range")

// LoanQuote is the frozen output of pricing a request. It is computed exactly
// once; the total due recorded here is the amount to collect at repayment,
// never recomputed downstream.
type LoanQuote struct {
	PrincipalMinor int64 `json:"principal_minor"`
	DurationDays   int   `json:"duration_days"`
	RatePercent    int64 `json:"rate_percent"`
	InterestMinor  int64 `json:"interest_minor"`
	TotalDueMinor  int64 `json:"total_due_minor"`
}

type Bounds struct {
	MinAmountMinor int64
	MaxAmountMinor int64
}

// Calculator is the single place interest math happens.
type Calculator struct {
	schedule *rate.Schedule
	bounds   Bounds
}

func NewCalculator(schedule *rate.Schedule, bounds Bounds) *Calculator {
	return &Calculator{schedule: schedule, bounds: bounds}
}

var oneHundred = decimal.NewFromInt(100)

// Quote prices a request. It is a pure function: identical inputs always
// yield an identical LoanQuote. The rounding rule (half-up to the minor
// unit) is applied exactly once, here.
func (c *Calculator) Quote(principalMinor int64, durationDays int) (LoanQuote, error) {
	if principalMinor < c.bounds.MinAmountMinor || principalMinor > c.bounds.MaxAmountMinor {
		return LoanQuote{}, fmt.Errorf("%w: %d not in [%d,%d]",
			ErrAmountOutOfRange, principalMinor, c.bounds.MinAmountMinor, c.bounds.MaxAmountMinor)
	}

	ratePercent, err := c.schedule.RateFor(durationDays)
	if err != nil {
		return LoanQuote{}, err
	}

	interest := decimal.NewFromInt(principalMinor).
		Mul(decimal.NewFromInt(ratePercent)).
		Div(oneHundred).
		Round(0)
	interestMinor := interest.IntPart()

	return LoanQuote{
		PrincipalMinor: principalMinor,
		DurationDays:   durationDays,
		RatePercent:    ratePercent,
		InterestMinor:  interestMinor,
		TotalDueMinor:  principalMinor + interestMinor,
	}, nil
}
