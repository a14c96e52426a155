package request

import "github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/rate"

// Code identifies a single validation failure.
type Code string

const (
	CodeAmountTooLow    Code = "amount_too_low"
	CodeAmountTooHigh   Code = "amount_too_high"
	CodeInvalidDuration Code = "invalid_duration"
	CodeIncomeTooLow    Code = "income_too_low"
	CodeIncomeTooHigh   Code = "income_too_high"
)

// Result carries every violation found, so a caller can surface all of them
// at once instead of fixing them one round-trip at a time.
type Result struct {
	Codes []Code `json:"codes"`
}

func (r Result) OK() bool {
	return len(r.Codes) == 0
}

func (r Result) Has(code Code) bool {
	for _, c := range r.Codes {
		if c == code {
			return true
		}
	}
	return false
}

type Bounds struct {
	MinAmountMinor int64
	MaxAmountMinor int64
	MinIncomeMinor int64
	MaxIncomeMinor int64
}

// Validator checks a loan request against configured bounds. It performs no
// I/O and never mutates state.
type Validator struct {
	schedule *rate.Schedule
	bounds   Bounds
}

func NewValidator(schedule *rate.Schedule, bounds Bounds) *Validator {
	return &Validator{schedule: schedule, bounds: bounds}
}

// Validate runs every check independently; it never short-circuits.
func (v *Validator) Validate(principalMinor int64, durationDays int, monthlyIncomeMinor int64) Result {
	out := Result{Codes: []Code{}}

	if principalMinor < v.bounds.MinAmountMinor {
		out.Codes = append(out.Codes, CodeAmountTooLow)
	}
	if principalMinor > v.bounds.MaxAmountMinor {
		out.Codes = append(out.Codes, CodeAmountTooHigh)
	}
	if !v.schedule.Contains(durationDays) {
		out.Codes = append(out.Codes, CodeInvalidDuration)
	}
	if monthlyIncomeMinor < v.bounds.MinIncomeMinor {
		out.Codes = append(out.Codes, CodeIncomeTooLow)
	}
	if monthlyIncomeMinor > v.bounds.MaxIncomeMinor {
		out.Codes = append(out.Codes, CodeIncomeTooHigh)
	}

	return out
}
