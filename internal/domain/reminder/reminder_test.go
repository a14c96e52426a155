package reminder

import (
	"strings"
	"testing"
	"time"

	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/loan"
)

func TestClassifyWindowEdges(t *testing.T) {
	cases := []struct {
		days int
		want Window
	}{
		{-10, WindowNone},
		{-1, WindowNone},
		{0, WindowDueToday},
		{1, WindowUpcoming},
		{2, WindowUpcoming},
		{3, WindowUpcoming},
		{4, WindowNone},
		{30, WindowNone},
	}
	for _, tc := range cases {
		if got := ClassifyWindow(tc.days); got != tc.want {
			t.Fatalf("ClassifyWindow(%d) = %s, want %s", tc.days, got, tc.want)
		}
	}
}

func TestDaysUntilDueUsesCalendarDays(t *testing.T) {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		now  time.Time
		want int
	}{
		{"three days before", time.Date(2026, 3, 7, 9, 30, 0, 0, time.UTC), 3},
		{"late evening before", time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC), 1},
		{"morning of due date", time.Date(2026, 3, 10, 0, 1, 0, 0, time.UTC), 0},
		{"evening of due date", time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC), 0},
		{"one day overdue", time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC), -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DaysUntilDue(due, tc.now); got != tc.want {
				t.Fatalf("DaysUntilDue = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	now := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	l := &loan.Entity{
		ID:      "l-1",
		DueDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	c := Classify(l, now)
	if c.LoanID != "l-1" || c.DaysUntilDue != 2 || c.Window != WindowUpcoming {
		t.Fatalf("unexpected classification: %+v", c)
	}
}

func TestBuildMessageVariants(t *testing.T) {
	l := &loan.Entity{
		ID:             "l-1",
		PrincipalMinor: 5000,
		TotalDueMinor:  5500,
	}

	today := BuildMessage(l, WindowDueToday, 0)
	if today.Title == "" || !strings.Contains(today.Body, "aujourd'hui") {
		t.Fatalf("unexpected due-today message: %+v", today)
	}
	if !strings.Contains(today.Body, "5500") {
		t.Fatalf("message should carry the frozen total due: %+v", today)
	}

	upcoming := BuildMessage(l, WindowUpcoming, 3)
	if !strings.Contains(upcoming.Body, "dans 3 jours") {
		t.Fatalf("unexpected upcoming message: %+v", upcoming)
	}

	singular := BuildMessage(l, WindowUpcoming, 1)
	if !strings.Contains(singular.Body, "dans 1 jour") || strings.Contains(singular.Body, "jours") {
		t.Fatalf("expected singular day form: %+v", singular)
	}

	none := BuildMessage(l, WindowNone, 10)
	if none.Title != "" || none.Body != "" {
		t.Fatalf("no message expected outside a reminder window: %+v", none)
	}
}
