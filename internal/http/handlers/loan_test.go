package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/ledger"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/loan"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/quote"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/rate"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/domain/request"
	"github.com/gin-gonic/gin"
)

type lifecycleMock struct {
	created   *loan.Entity
	createErr error
	getLoan   *loan.Entity
}

func (m *lifecycleMock) Create(_ context.Context, q quote.LoanQuote) (*loan.Entity, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = &loan.Entity{
		ID:             "loan-1",
		PrincipalMinor: q.PrincipalMinor,
		DurationDays:   q.DurationDays,
		RatePercent:    q.RatePercent,
		InterestMinor:  q.InterestMinor,
		TotalDueMinor:  q.TotalDueMinor,
		Status:         loan.StatusPending,
	}
	return m.created, nil
}

func (m *lifecycleMock) Approve(_ context.Context, _ string) (*loan.Entity, error) {
	return nil, loan.ErrInvalidTransition
}

func (m *lifecycleMock) Reject(_ context.Context, _ string) (*loan.Entity, error) {
	return nil, loan.ErrInvalidTransition
}

func (m *lifecycleMock) Disburse(_ context.Context, _ string) (*loan.Entity, error) {
	return nil, loan.ErrInvalidTransition
}

func (m *lifecycleMock) Get(_ context.Context, _ string) (*loan.Entity, error) {
	if m.getLoan == nil {
		return nil, loan.ErrNotFound
	}
	return m.getLoan, nil
}

func (m *lifecycleMock) List(_ context.Context, _ loan.ListFilter) ([]loan.Entity, error) {
	return []loan.Entity{}, nil
}

type ledgerMock struct {
	applyErr error
	state    *ledger.RepaymentState
}

func (m *ledgerMock) ApplyPayment(_ context.Context, loanID string, _ int64, _ string) (*ledger.RepaymentState, error) {
	if m.applyErr != nil {
		return nil, m.applyErr
	}
	return m.state, nil
}

func (m *ledgerMock) GetRepaymentState(_ context.Context, _ string) (*ledger.RepaymentState, error) {
	return m.state, nil
}

func (m *ledgerMock) ListPayments(_ context.Context, _ string) ([]ledger.Payment, error) {
	return []ledger.Payment{}, nil
}

func newTestLoanHandler(life *lifecycleMock, led *ledgerMock) *LoanHandler {
	schedule := rate.Default()
	calc := quote.NewCalculator(schedule, quote.Bounds{MinAmountMinor: 1000, MaxAmountMinor: 500000})
	validator := request.NewValidator(schedule, request.Bounds{
		MinAmountMinor: 1000,
		MaxAmountMinor: 500000,
		MinIncomeMinor: 10000,
		MaxIncomeMinor: 10000000,
	})
	return NewLoanHandler(life, led, calc, validator, nil, slog.Default())
}

func performJSON(handler gin.HandlerFunc, method, path string, body any, params gin.Params) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	c.Request = httptest.NewRequest(method, path, &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params
	handler(c)
	return w
}

func TestCreateLoanFreezesQuoteTotal(t *testing.T) {
	life := &lifecycleMock{}
	h := newTestLoanHandler(life, &ledgerMock{})

	w := performJSON(h.CreateLoan, http.MethodPost, "/v1/loans", gin.H{
		"principal_minor":      5000,
		"duration_days":        10,
		"monthly_income_minor": 50000,
	}, nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if life.created == nil || life.created.TotalDueMinor != 5500 {
		t.Fatalf("expected loan created with total due 5500: %+v", life.created)
	}
}

func TestCreateLoanReturnsAllValidationCodes(t *testing.T) {
	h := newTestLoanHandler(&lifecycleMock{}, &ledgerMock{})

	w := performJSON(h.CreateLoan, http.MethodPost, "/v1/loans", gin.H{
		"principal_minor":      500,
		"duration_days":        90,
		"monthly_income_minor": 200,
	}, nil)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	var out struct {
		Codes []string `json:"codes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(out.Codes) != 3 {
		t.Fatalf("expected 3 validation codes, got %v", out.Codes)
	}
}

func TestApplyPaymentOnNonActiveLoanMapsToConflict(t *testing.T) {
	led := &ledgerMock{applyErr: ledger.ErrLoanNotActive}
	h := newTestLoanHandler(&lifecycleMock{}, led)

	w := performJSON(h.ApplyPayment, http.MethodPost, "/v1/loans/loan-1/payments", gin.H{
		"amount_minor": 1000,
		"reference":    "ref-1",
	}, gin.Params{{Key: "loanId", Value: "loan-1"}})

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestIntegrityErrorMapsToServerError(t *testing.T) {
	life := &lifecycleMock{createErr: &loan.IntegrityError{LoanID: "loan-1", QuoteTotalDue: 5500, LoanTotalDue: 5600}}
	h := newTestLoanHandler(life, &ledgerMock{})

	w := performJSON(h.CreateLoan, http.MethodPost, "/v1/loans", gin.H{
		"principal_minor":      5000,
		"duration_days":        10,
		"monthly_income_minor": 50000,
	}, nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var out struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Error != "data_integrity" {
		t.Fatalf("expected data_integrity error code, got %q", out.Error)
	}
}
