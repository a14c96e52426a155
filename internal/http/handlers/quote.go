package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/quote"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/rate"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/request"
	"github.com/gin-gonic/gin"
)

// QuoteCache is the optional read-through cache in front of the calculator.
type QuoteCache interface {
	Get(ctx context.Context, principalMinor int64, durationDays int) (*quote.LoanQuote, bool)
	Set(ctx context.Context, q quote.LoanQuote) error
}

type QuoteHandler struct {
	schedule  *rate.Schedule
	calc      *quote.Calculator
	validator *request.Validator
	cache     QuoteCache
}

func NewQuoteHandler(schedule *rate.Schedule, calc *quote.Calculator, validator *request.Validator, cache QuoteCache) *QuoteHandler {
	return &QuoteHandler{schedule: schedule, calc: calc, validator: validator, cache: cache}
}

type quoteRequest struct {
	PrincipalMinor int64 `json:"principal_minor" binding:"required"`
	DurationDays   int   `json:"duration_days" binding:"required"`
}

func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var in quoteRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}

	q, err := priceQuote(c.Request.Context(), h.calc, h.cache, in.PrincipalMinor, in.DurationDays)
	if err != nil {
		writeQuoteError(c, err)
		return
	}

	c.JSON(http.StatusOK, q)
}

type validateRequest struct {
	PrincipalMinor     int64 `json:"principal_minor"`
	DurationDays       int   `json:"duration_days"`
	MonthlyIncomeMinor int64 `json:"monthly_income_minor"`
}

func (h *QuoteHandler) ValidateRequest(c *gin.Context) {
	var in validateRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}

	res := h.validator.Validate(in.PrincipalMinor, in.DurationDays, in.MonthlyIncomeMinor)
	c.JSON(http.StatusOK, gin.H{
		"valid": res.OK(),
		"codes": res.Codes,
	})
}

func (h *QuoteHandler) GetRateSchedule(c *gin.Context) {
	tiers := h.schedule.Tiers()
	out := make([]gin.H, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, gin.H{
			"min_duration_days": t.MinDurationDays,
			"max_duration_days": t.MaxDurationDays,
			"rate_percent":      t.RatePercent,
		})
	}
	c.JSON(http.StatusOK, gin.H{"tiers": out})
}

// priceQuote is the one quote path shared by the quote endpoint and loan
// creation: cache lookup first, calculator on miss. Caching is safe because
// the calculator is deterministic.
func priceQuote(ctx context.Context, calc *quote.Calculator, cache QuoteCache, principalMinor int64, durationDays int) (quote.LoanQuote, error) {
	if cache != nil {
		if cached, ok := cache.Get(ctx, principalMinor, durationDays); ok {
			return *cached, nil
		}
	}

	q, err := calc.Quote(principalMinor, durationDays)
	if err != nil {
		return quote.LoanQuote{}, err
	}

	if cache != nil {
		_ = cache.Set(ctx, q)
	}
	return q, nil
}

func writeQuoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, rate.ErrUnknownDuration):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_duration"})
	case errors.Is(err, quote.ErrAmountOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount_out_of_range"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "quote_failed"})
	}
}
