package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/reminder"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/notification"
	"github.com/gin-gonic/gin"
)

type SubscriptionStore interface {
	Create(ctx context.Context, loanID string, target notification.Target) error
	Delete(ctx context.Context, endpoint string) error
}

type ReminderHandler struct {
	loans LifecycleService
	subs  SubscriptionStore
	now   func() time.Time
}

func NewReminderHandler(loans LifecycleService, subs SubscriptionStore) *ReminderHandler {
	return &ReminderHandler{
		loans: loans,
		subs:  subs,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ClassifyReminder reports a loan's reminder window and rendered message
// without sending anything. `now` may be overridden for admin inspection.
func (h *ReminderHandler) ClassifyReminder(c *gin.Context) {
	l, err := h.loans.Get(c.Request.Context(), c.Param("loanId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}

	now := h.now()
	if raw := strings.TrimSpace(c.Query("now")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_now"})
			return
		}
		now = parsed
	}

	classification := reminder.Classify(l, now)
	msg := reminder.BuildMessage(l, classification.Window, classification.DaysUntilDue)

	c.JSON(http.StatusOK, gin.H{
		"loan_id":        classification.LoanID,
		"days_until_due": classification.DaysUntilDue,
		"window":         classification.Window,
		"message":        msg,
	})
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256dh   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

func (h *ReminderHandler) Subscribe(c *gin.Context) {
	loanID := c.Param("loanId")
	if _, err := h.loans.Get(c.Request.Context(), loanID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}

	var in subscribeRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}

	err := h.subs.Create(c.Request.Context(), loanID, notification.Target{
		Endpoint: in.Endpoint,
		P256dh:   in.P256dh,
		Auth:     in.Auth,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "subscribe_failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "subscribed"})
}

func (h *ReminderHandler) Unsubscribe(c *gin.Context) {
	endpoint := strings.TrimSpace(c.Query("endpoint"))
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_endpoint"})
		return
	}

	if err := h.subs.Delete(c.Request.Context(), endpoint); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unsubscribe_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unsubscribed"})
}
