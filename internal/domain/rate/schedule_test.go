package rate

import (
	"errors"
	"testing"
)

func TestRateForResolvesEveryTier(t *testing.T) {
	s := Default()

	cases := []struct {
		days int
		want int64
	}{
		{1, 6}, {5, 6},
		{6, 10}, {10, 10},
		{11, 15}, {15, 15},
		{16, 22}, {25, 22},
		{26, 25}, {30, 25},
	}
	for _, tc := range cases {
		got, err := s.RateFor(tc.days)
		if err != nil {
			t.Fatalf("RateFor(%d): unexpected error: %v", tc.days, err)
		}
		if got != tc.want {
			t.Fatalf("RateFor(%d) = %d, want %d", tc.days, got, tc.want)
		}
	}
}

func TestRateForUnknownDuration(t *testing.T) {
	s := Default()
	for _, days := range []int{-1, 0, 31, 365} {
		_, err := s.RateFor(days)
		if !errors.Is(err, ErrUnknownDuration) {
			t.Fatalf("RateFor(%d): expected ErrUnknownDuration, got %v", days, err)
		}
		if s.Contains(days) {
			t.Fatalf("Contains(%d) should be false", days)
		}
	}
}

func TestNewScheduleRejectsGaps(t *testing.T) {
	_, err := NewSchedule([]Tier{
		{MinDurationDays: 1, MaxDurationDays: 5, RatePercent: 6},
		{MinDurationDays: 7, MaxDurationDays: 10, RatePercent: 10},
	})
	if err == nil {
		t.Fatal("expected error for gap between tiers")
	}
}

func TestNewScheduleRejectsOverlaps(t *testing.T) {
	_, err := NewSchedule([]Tier{
		{MinDurationDays: 1, MaxDurationDays: 5, RatePercent: 6},
		{MinDurationDays: 5, MaxDurationDays: 10, RatePercent: 10},
	})
	if err == nil {
		t.Fatal("expected error for overlapping tiers")
	}
}

func TestNewScheduleRejectsEmpty(t *testing.T) {
	if _, err := NewSchedule(nil); err == nil {
		t.Fatal("expected error for empty tier list")
	}
}
