package rate

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownDuration is returned when a duration falls outside every tier.
var ErrUnknownDuration = errors.New("unknown loan duration")

// Tier maps a contiguous range of loan durations (in days, inclusive on both
// ends) to a single interest rate.
type Tier struct {
	MinDurationDays int
	MaxDurationDays int
	RatePercent     int64
}

// Schedule is the canonical duration-to-rate table. It is the only source of
// truth for interest rates: quoting and any display logic must go through it.
type Schedule struct {
	tiers []Tier
}

// Default returns the product rate table.
func Default() *Schedule {
	s, err := NewSchedule([]Tier{
		{MinDurationDays: 1, MaxDurationDays: 5, RatePercent: 6},
		{MinDurationDays: 6, MaxDurationDays: 10, RatePercent: 10},
		{MinDurationDays: 11, MaxDurationDays: 15, RatePercent: 15},
		{MinDurationDays: 16, MaxDurationDays: 25, RatePercent: 22},
		{MinDurationDays: 26, MaxDurationDays: 30, RatePercent: 25},
	})
	if err != nil {
		panic(fmt.Sprintf("default rate schedule invalid: %v", err))
	}
	return s
}

// NewSchedule validates that the tiers partition a contiguous duration domain
// with no gaps or overlaps, so every legal duration resolves to exactly one
// tier.
func NewSchedule(tiers []Tier) (*Schedule, error) {
	if len(tiers) == 0 {
		return nil, errors.New("rate schedule requires at least one tier")
	}

	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinDurationDays < sorted[j].MinDurationDays
	})

	for i, t := range sorted {
		if t.MinDurationDays <= 0 {
			return nil, fmt.Errorf("tier %d: min duration must be positive", i)
		}
		if t.MaxDurationDays < t.MinDurationDays {
			return nil, fmt.Errorf("tier %d: max duration before min", i)
		}
		if t.RatePercent < 0 {
			return nil, fmt.Errorf("tier %d: negative rate", i)
		}
		if i > 0 {
			prev := sorted[i-1]
			if t.MinDurationDays != prev.MaxDurationDays+1 {
				return nil, fmt.Errorf("tiers %d and %d do not partition the duration domain", i-1, i)
			}
		}
	}

	return &Schedule{tiers: sorted}, nil
}

// RateFor resolves a duration to its tier's rate.
func (s *Schedule) RateFor(durationDays int) (int64, error) {
	for _, t := range s.tiers {
		if durationDays >= t.MinDurationDays && durationDays <= t.MaxDurationDays {
			return t.RatePercent, nil
		}
	}
	return 0, fmt.Errorf("%w: %d days", ErrUnknownDuration, durationDays)
}

// Contains reports whether a duration belongs to the legal domain.
func (s *Schedule) Contains(durationDays int) bool {
	_, err := s.RateFor(durationDays)
	return err == nil
}

// Tiers returns a copy of the table, for display surfaces.
func (s *Schedule) Tiers() []Tier {
	out := make([]Tier, len(s.tiers))
	copy(out, s.tiers)
	return out
}
