package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"

	"github.com/aipress24/kyc-engine/internal/blobs"
	"github.com/aipress24/kyc-engine/internal/config"
	"github.com/aipress24/kyc-engine/internal/database"
	"github.com/aipress24/kyc-engine/internal/forms"
	"github.com/aipress24/kyc-engine/internal/handlers"
	"github.com/aipress24/kyc-engine/internal/logging"
	"github.com/aipress24/kyc-engine/internal/middleware"
	"github.com/aipress24/kyc-engine/internal/ontology"
	"github.com/aipress24/kyc-engine/internal/routes"
	"github.com/aipress24/kyc-engine/internal/services"
	"github.com/aipress24/kyc-engine/internal/survey"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	// Local development overrides, ignored when absent
	_ = godotenv.Load()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Survey meta-model, loaded once and immutable
	model, err := survey.Load(cfg.SurveyPath)
	if err != nil {
		slog.Error("failed to load survey workbook", "path", cfg.SurveyPath, "error", err)
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logging.LevelFromEnv()}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Services
	registry, err := ontology.NewRegistry(database.DB)
	if err != nil {
		slog.Error("ontology registry init failed", "error", err)
		os.Exit(1)
	}
	orgs := services.NewOrgResolver(database.DB)
	builder := forms.NewBuilder(model, registry, orgs.Names)
	uploads := blobs.NewStore(database.DB)
	uploads.StartCleanup(time.Hour, cfg.BlobRetention)
	profiles := services.NewProfileService(database.DB)
	clones := services.NewCloneService(database.DB)
	dispatcher := services.SlogDispatcher{}
	commit := services.NewCommitService(database.DB, model, builder, uploads, profiles, clones, orgs, dispatcher)
	admin := services.NewAdminService(database.DB, model, clones, orgs, dispatcher)
	vis := services.NewVisibilityService(model, registry, profiles)

	// Handlers
	kycHandler := handlers.NewKYCHandler(cfg, database.DB, model, builder, registry, uploads, profiles, commit, vis)
	adminHandler := handlers.NewAdminHandler(cfg, admin)
	healthHandler := handlers.NewHealthHandler(model)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, kycHandler, adminHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "profiles", len(model.Profiles))
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
