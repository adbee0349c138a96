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

	"github.com/vanroute/vanroute-api/internal/config"
	"github.com/vanroute/vanroute-api/internal/database"
	"github.com/vanroute/vanroute-api/internal/handlers"
	"github.com/vanroute/vanroute-api/internal/jobs"
	"github.com/vanroute/vanroute-api/internal/middleware"
	"github.com/vanroute/vanroute-api/internal/repository"
	"github.com/vanroute/vanroute-api/internal/services"
	"github.com/vanroute/vanroute-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

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

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, cfg, db)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs, cfg)

	// Initialize handlers
	h := handlers.NewHandlers(svcs, worker)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
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
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
		}

		// Maintenance tasks (cron secret, not user auth)
		tasks := v1.Group("/tasks")
		tasks.Use(middleware.RequireCronSecret(cfg.CronJobSecret))
		{
			tasks.POST("/update-overdue-payments", h.Task.UpdateOverduePayments)
		}

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.GET("/auth/me", h.Auth.Me)

			// Operational introspection, admin users only
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/worker-stats", h.Task.WorkerStats)
			}

			// Fleet registry
			schools := protected.Group("/schools")
			{
				schools.GET("", h.School.Index)
				schools.POST("", h.School.Create)
				schools.GET("/:school_id", h.School.Show)
				schools.PUT("/:school_id", h.School.Update)
				schools.DELETE("/:school_id", h.School.Delete)
			}

			drivers := protected.Group("/drivers")
			{
				drivers.GET("", h.Driver.Index)
				drivers.POST("", h.Driver.Create)
				drivers.GET("/:driver_id", h.Driver.Show)
				drivers.PUT("/:driver_id", h.Driver.Update)
				drivers.DELETE("/:driver_id", h.Driver.Delete)
			}

			vans := protected.Group("/vans")
			{
				vans.GET("", h.Van.Index)
				vans.POST("", h.Van.Create)
				vans.GET("/:van_id", h.Van.Show)
				vans.PUT("/:van_id", h.Van.Update)
				vans.DELETE("/:van_id", h.Van.Delete)
			}

			routes := protected.Group("/routes")
			{
				routes.GET("", h.Route.Index)
				routes.POST("", h.Route.Create)
				routes.GET("/:route_id", h.Route.Show)
				routes.PUT("/:route_id", h.Route.Update)
				routes.DELETE("/:route_id", h.Route.Delete)
				routes.PUT("/:route_id/students", h.Route.AssignStudents)
			}

			students := protected.Group("/students")
			{
				students.GET("", h.Student.Index)
				students.POST("", h.Student.Create)
				students.GET("/:student_id", h.Student.Show)
				students.PUT("/:student_id", h.Student.Update)
				students.DELETE("/:student_id", h.Student.Delete)
			}

			guardians := protected.Group("/guardians")
			{
				guardians.GET("", h.Guardian.Index)
				guardians.POST("", h.Guardian.Create)
				guardians.GET("/:guardian_id", h.Guardian.Show)
				guardians.PUT("/:guardian_id", h.Guardian.Update)
				guardians.DELETE("/:guardian_id", h.Guardian.Delete)
			}

			// Contracts and their derived payment schedules
			contracts := protected.Group("/contracts")
			{
				contracts.GET("", h.Contract.Index)
				contracts.POST("", h.Contract.Create)
				contracts.GET("/:contract_id", h.Contract.Show)
				contracts.PATCH("/:contract_id", h.Contract.Update)
				contracts.DELETE("/:contract_id", h.Contract.Delete)
				contracts.GET("/:contract_id/payments", h.Payment.IndexByContract)
			}

			// Payments
			payments := protected.Group("/payments")
			{
				payments.GET("/overdue", h.Payment.Overdue)
				payments.GET("/:payment_id", h.Payment.Show)
				payments.POST("/:payment_id/settle", h.Payment.Settle)
				payments.POST("/:payment_id/cancel", h.Payment.Cancel)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) {
	interval := time.Duration(cfg.SweepIntervalMinutes) * time.Minute

	// Flip lapsed pending obligations to overdue; run once at startup so a
	// redeploy catches up immediately.
	worker.ScheduleEveryImmediate(interval, func(ctx context.Context) error {
		logger.Info("[Job] Sweeping overdue payments...")
		_, err := svcs.Payment.SweepOverdue(ctx)
		return err
	})

	logger.Info("Scheduled recurring jobs", "sweep_interval", interval)
}
