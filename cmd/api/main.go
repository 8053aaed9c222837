package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sjperalta/bailbooks-api/internal/advisor"
	"github.com/sjperalta/bailbooks-api/internal/config"
	"github.com/sjperalta/bailbooks-api/internal/database"
	"github.com/sjperalta/bailbooks-api/internal/handlers"
	"github.com/sjperalta/bailbooks-api/internal/jobs"
	"github.com/sjperalta/bailbooks-api/internal/metrics"
	"github.com/sjperalta/bailbooks-api/internal/middleware"
	"github.com/sjperalta/bailbooks-api/internal/repository"
	"github.com/sjperalta/bailbooks-api/internal/services"
	"github.com/sjperalta/bailbooks-api/internal/storage"
	"github.com/sjperalta/bailbooks-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Bail Books API
// @version 1.0
// @description Premium quotes, payment plans and collections for bail bond cases

// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment, cfg.LogLevel)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics.Init()

	db, err := database.Connect(cfg.DatabaseURL, cfg.IsProduction())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	var adv advisor.Advisor
	if cfg.AdvisorURL != "" {
		adv = advisor.NewClient(cfg.AdvisorURL, cfg.AdvisorTimeout)
		logger.Info("Term recommendations enabled", "url", cfg.AdvisorURL)
	}

	svcs := services.NewServices(repos, worker, store, cfg, adv)
	if err := svcs.Job.RegisterSchedules(cfg.AgingDigestCron); err != nil {
		logger.Error("Failed to schedule jobs", "error", err)
		os.Exit(1)
	}

	h := handlers.NewHandlers(svcs)
	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Everything else requires a token; viewers are read-only
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.GET("/cases", h.Case.Index)
			protected.GET("/cases/:case_id", h.Case.Show)
			protected.GET("/cases/:case_id/quote", h.Case.Quote)
			protected.GET("/cases/:case_id/ledger", h.Installment.Ledger)
			protected.GET("/cases/:case_id/totals", h.Installment.Totals)
			protected.GET("/cases/:case_id/statement", h.Report.CaseStatement)

			protected.GET("/installments", h.Installment.Index)
			protected.GET("/installments/:installment_id", h.Installment.Show)

			protected.GET("/expenses", h.Books.ExpenseIndex)
			protected.GET("/expenses/:expense_id", h.Books.ExpenseShow)
			protected.GET("/deposits", h.Books.DepositIndex)
			protected.GET("/deposits/:deposit_id", h.Books.DepositShow)

			protected.GET("/dashboard", h.Report.Dashboard)
			protected.GET("/reports/aging", h.Report.Aging)
			protected.GET("/reports/overdue_csv", h.Report.OverdueCSV)
			protected.GET("/reports/profit_and_loss", h.Report.ProfitAndLoss)
			protected.GET("/exports/tracker", h.Report.Tracker)

			protected.GET("/audits", h.Audit.Index)
			protected.GET("/jobs/status", h.Job.Status)

			writer := protected.Group("")
			writer.Use(middleware.RequireWriter())
			{
				writer.POST("/quotes", h.Quote.Create)

				writer.POST("/cases", h.Case.Create)
				writer.PATCH("/cases/:case_id", h.Case.Update)
				writer.POST("/cases/:case_id/plan/preview", h.Plan.Preview)
				writer.POST("/cases/:case_id/plan", h.Plan.Generate)
				writer.POST("/cases/:case_id/installments", h.Installment.RecordManual)
				writer.POST("/cases/:case_id/installments/cancel_pending", h.Installment.CancelPending)

				writer.POST("/installments/:installment_id/pay", h.Installment.Pay)
				writer.POST("/installments/:installment_id/fail", h.Installment.Fail)
				writer.POST("/installments/:installment_id/cancel", h.Installment.Cancel)

				writer.POST("/expenses", h.Books.ExpenseCreate)
				writer.PATCH("/expenses/:expense_id", h.Books.ExpenseUpdate)
				writer.DELETE("/expenses/:expense_id", h.Books.ExpenseDelete)
				writer.POST("/deposits", h.Books.DepositCreate)
				writer.PATCH("/deposits/:deposit_id", h.Books.DepositUpdate)
				writer.DELETE("/deposits/:deposit_id", h.Books.DepositDelete)
			}

			admin := protected.Group("")
			admin.Use(middleware.RequireRole(middleware.RoleAdmin))
			{
				admin.POST("/jobs/:name/run", h.Job.Run)
			}
		}
	}

	return router
}
