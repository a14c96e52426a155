package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/ledger"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/loan"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/quote"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/request"
	"github.com/gin-gonic/gin"
)

type LifecycleService interface {
	Create(ctx context.Context, q quote.LoanQuote) (*loan.Entity, error)
	Approve(ctx context.Context, id string) (*loan.Entity, error)
	Reject(ctx context.Context, id string) (*loan.Entity, error)
	Disburse(ctx context.Context, id string) (*loan.Entity, error)
	Get(ctx context.Context, id string) (*loan.Entity, error)
	List(ctx context.Context, f loan.ListFilter) ([]loan.Entity, error)
}

type LedgerService interface {
	ApplyPayment(ctx context.Context, loanID string, amountMinor int64, reference string) (*ledger.RepaymentState, error)
	GetRepaymentState(ctx context.Context, loanID string) (*ledger.RepaymentState, error)
	ListPayments(ctx context.Context, loanID string) ([]ledger.Payment, error)
}

type LoanHandler struct {
	lifecycle LifecycleService
	ledger    LedgerService
	calc      *quote.Calculator
	validator *request.Validator
	cache     QuoteCache
	logger    *slog.Logger
}

func NewLoanHandler(lifecycle LifecycleService, ledgerSvc LedgerService, calc *quote.Calculator, validator *request.Validator, cache QuoteCache, logger *slog.Logger) *LoanHandler {
	return &LoanHandler{
		lifecycle: lifecycle,
		ledger:    ledgerSvc,
		calc:      calc,
		validator: validator,
		cache:     cache,
		logger:    logger,
	}
}

type createLoanRequest struct {
	PrincipalMinor     int64 `json:"principal_minor" binding:"required"`
	DurationDays       int   `json:"duration_days" binding:"required"`
	MonthlyIncomeMinor int64 `json:"monthly_income_minor"`
}

// CreateLoan validates the request, prices it and persists the pending loan
// in one pass, so the stored total due always comes from the same frozen
// quote the caller saw.
func (h *LoanHandler) CreateLoan(c *gin.Context) {
	var in createLoanRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}

	res := h.validator.Validate(in.PrincipalMinor, in.DurationDays, in.MonthlyIncomeMinor)
	if !res.OK() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation_failed", "codes": res.Codes})
		return
	}

	q, err := priceQuote(c.Request.Context(), h.calc, h.cache, in.PrincipalMinor, in.DurationDays)
	if err != nil {
		writeQuoteError(c, err)
		return
	}

	created, err := h.lifecycle.Create(c.Request.Context(), q)
	if err != nil {
		h.writeLoanError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *LoanHandler) GetLoan(c *gin.Context) {
	l, err := h.lifecycle.Get(c.Request.Context(), c.Param("loanId"))
	if err != nil {
		h.writeLoanError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *LoanHandler) ListLoans(c *gin.Context) {
	limit, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("limit", "50")), 10, 32)
	offset, _ := strconv.ParseInt(strings.TrimSpace(c.DefaultQuery("offset", "0")), 10, 32)

	status := loan.Status(strings.TrimSpace(c.Query("status")))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status"})
		return
	}

	items, err := h.lifecycle.List(c.Request.Context(), loan.ListFilter{
		Status: status,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		h.writeLoanError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": items})
}

func (h *LoanHandler) ApproveLoan(c *gin.Context) {
	h.transition(c, h.lifecycle.Approve)
}

func (h *LoanHandler) RejectLoan(c *gin.Context) {
	h.transition(c, h.lifecycle.Reject)
}

func (h *LoanHandler) DisburseLoan(c *gin.Context) {
	h.transition(c, h.lifecycle.Disburse)
}

func (h *LoanHandler) transition(c *gin.Context, op func(context.Context, string) (*loan.Entity, error)) {
	l, err := op(c.Request.Context(), c.Param("loanId"))
	if err != nil {
		h.writeLoanError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

type paymentRequest struct {
	AmountMinor int64  `json:"amount_minor" binding:"required"`
	Reference   string `json:"reference" binding:"required"`
}

func (h *LoanHandler) ApplyPayment(c *gin.Context) {
	var in paymentRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}

	state, err := h.ledger.ApplyPayment(c.Request.Context(), c.Param("loanId"), in.AmountMinor, in.Reference)
	if err != nil {
		h.writeLoanError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *LoanHandler) GetRepaymentState(c *gin.Context) {
	state, err := h.ledger.GetRepaymentState(c.Request.Context(), c.Param("loanId"))
	if err != nil {
		h.writeLoanError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *LoanHandler) ListPayments(c *gin.Context) {
	payments, err := h.ledger.ListPayments(c.Request.Context(), c.Param("loanId"))
	if err != nil {
		h.writeLoanError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

func (h *LoanHandler) writeLoanError(c *gin.Context, err error) {
	var integrity *loan.IntegrityError
	switch {
	case errors.As(err, &integrity):
		// A financial-correctness defect in the engine itself. Surfaced and
		// escalated, never corrected in place.
		h.logger.Error("loan total diverged from quote",
			"alert", "data_integrity",
			"loan_id", integrity.LoanID,
			"quote_total_due", integrity.QuoteTotalDue,
			"loan_total_due", integrity.LoanTotalDue)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "data_integrity"})
	case errors.Is(err, loan.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, loan.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid_transition"})
	case errors.Is(err, ledger.ErrLoanNotActive):
		c.JSON(http.StatusConflict, gin.H{"error": "loan_not_active"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
