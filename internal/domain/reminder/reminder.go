package reminder

import (
	"fmt"
	"time"

	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/loan"
)

// Window classifies how urgently a borrower should be reminded.
type Window string

const (
	WindowNone     Window = "none"
	WindowUpcoming Window = "upcoming"
	WindowDueToday Window = "due_today"
)

// upcomingDays is the size of the pre-due reminder window.
const upcomingDays = 3

// Message is a rendered reminder, ready for the notification transport.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Classification is what the reminder sweep derives for one loan.
type Classification struct {
	LoanID       string `json:"loan_id"`
	DaysUntilDue int    `json:"days_until_due"`
	Window       Window `json:"window"`
}

// DaysUntilDue is the calendar-day distance between now and the due date,
// both taken as UTC dates. Negative when overdue.
func DaysUntilDue(dueDate, now time.Time) int {
	due := truncateToDay(dueDate)
	today := truncateToDay(now)
	return int(due.Sub(today).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ClassifyWindow is the single definition of the reminder window rule.
func ClassifyWindow(daysUntilDue int) Window {
	switch {
	case daysUntilDue == 0:
		return WindowDueToday
	case daysUntilDue > 0 && daysUntilDue <= upcomingDays:
		return WindowUpcoming
	default:
		return WindowNone
	}
}

// Classify derives a loan's reminder state at a given instant.
func Classify(l *loan.Entity, now time.Time) Classification {
	days := DaysUntilDue(l.DueDate, now)
	return Classification{
		LoanID:       l.ID,
		DaysUntilDue: days,
		Window:       ClassifyWindow(days),
	}
}

// BuildMessage renders the reminder text for a loan in a reminder window.
// It is pure: no I/O, no sending.
func BuildMessage(l *loan.Entity, window Window, daysUntilDue int) Message {
	switch window {
	case WindowDueToday:
		return Message{
			Title: "Rappel de remboursement",
			Body: fmt.Sprintf("Votre prêt de %d FCFA arrive à échéance aujourd'hui. Montant dû : %d FCFA.",
				l.PrincipalMinor, l.TotalDueMinor),
		}
	case WindowUpcoming:
		day := "jours"
		if daysUntilDue == 1 {
			day = "jour"
		}
		return Message{
			Title: "Rappel de remboursement",
			Body: fmt.Sprintf("Votre prêt de %d FCFA arrive à échéance dans %d %s. Montant dû : %d FCFA.",
				l.PrincipalMinor, daysUntilDue, day, l.TotalDueMinor),
		}
	default:
		return Message{}
	}
}
