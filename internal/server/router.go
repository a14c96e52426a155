package server

import (
	"log/slog"
	"net/http"

	"github.com/Tsukuyomi260/ab-pret-sub001/internal/auth"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/config"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/http/handlers"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/http/middleware"
	"github.com/Tsukuyomi260/ab-pret-sub001/internal/version"
	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	Pinger          handlers.Pinger
	QuoteHandler    *handlers.QuoteHandler
	LoanHandler     *handlers.LoanHandler
	ReminderHandler *handlers.ReminderHandler
	JWTManager      *auth.JWTManager
}

func NewRouter(cfg config.Config, logger *slog.Logger, deps Dependencies) *gin.Engine {
	if cfg.Env == "prod" || cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		logger.Info("request", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.Next()
	})

	health := handlers.NewHealthHandler(deps.Pinger)
	meta := handlers.NewMetaHandler(cfg.Env, version.Version)

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/v1/meta", meta.GetMeta)

	if deps.QuoteHandler != nil {
		r.GET("/v1/rates", deps.QuoteHandler.GetRateSchedule)
		r.POST("/v1/quotes", deps.QuoteHandler.CreateQuote)
		r.POST("/v1/requests/validate", deps.QuoteHandler.ValidateRequest)
	}

	if deps.LoanHandler != nil {
		borrowerGroup := r.Group("/v1")
		borrowerGroup.POST("/loans", deps.LoanHandler.CreateLoan)
		borrowerGroup.GET("/loans/:loanId", deps.LoanHandler.GetLoan)
		borrowerGroup.POST("/loans/:loanId/payments", deps.LoanHandler.ApplyPayment)
		borrowerGroup.GET("/loans/:loanId/repayment", deps.LoanHandler.GetRepaymentState)
		borrowerGroup.GET("/loans/:loanId/payments", deps.LoanHandler.ListPayments)

		if deps.ReminderHandler != nil {
			borrowerGroup.GET("/loans/:loanId/reminder", deps.ReminderHandler.ClassifyReminder)
			borrowerGroup.POST("/loans/:loanId/subscriptions", deps.ReminderHandler.Subscribe)
			borrowerGroup.DELETE("/loans/:loanId/subscriptions", deps.ReminderHandler.Unsubscribe)
		}

		if deps.JWTManager != nil {
			adminGroup := r.Group("/v1/admin")
			adminGroup.Use(middleware.RequireAuth(deps.JWTManager), middleware.RequireRole(auth.RoleAdmin))
			adminGroup.GET("/loans", deps.LoanHandler.ListLoans)
			adminGroup.POST("/loans/:loanId/approve", deps.LoanHandler.ApproveLoan)
			adminGroup.POST("/loans/:loanId/reject", deps.LoanHandler.RejectLoan)
			adminGroup.POST("/loans/:loanId/disburse", deps.LoanHandler.DisburseLoan)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})

	return r
}
