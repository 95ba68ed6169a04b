package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/gmattworld/applibry-api/internal/association"
	"github.com/gmattworld/applibry-api/internal/config"
	"github.com/gmattworld/applibry-api/internal/database"
	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/handlers"
	"github.com/gmattworld/applibry-api/internal/integrations/nattypad"
	"github.com/gmattworld/applibry-api/internal/logging"
	"github.com/gmattworld/applibry-api/internal/mailer"
	"github.com/gmattworld/applibry-api/internal/middleware"
	"github.com/gmattworld/applibry-api/internal/routes"
	"github.com/gmattworld/applibry-api/internal/services"
	"github.com/gmattworld/applibry-api/internal/storage"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Console logging until the database sink is available
	stdoutHandler := logging.Setup(cfg.LogFormat, cfg.LogLevel)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" && cfg.DBPassword == "" {
		slog.Error("DATABASE_URL or DB_PASSWORD environment variable is required")
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
	if err := database.SeedAccessControl(context.Background(), database.DB); err != nil {
		slog.Error("access control seed failed", "error", err)
		os.Exit(1)
	}

	// ERROR+ records are also batched into system_logs
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdoutHandler, pgLogHandler)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	// Infrastructure
	var mail mailer.Mailer = mailer.LogMailer{}
	if cfg.MailHost != "" {
		mail = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:        cfg.MailHost,
			Port:        cfg.MailPort,
			Username:    cfg.MailUsername,
			Password:    cfg.MailPassword,
			FromAddress: cfg.MailFrom,
			FromName:    cfg.MailFromName,
			FrontendURL: cfg.FrontendURL,
		})
	} else {
		slog.Warn("MAIL_HOST not set, emails will only be logged")
	}

	store, err := storage.NewLocalStore(cfg.StorageDir, cfg.StoragePublicURL, cfg.MaxFileSizeMB*1024*1024)
	if err != nil {
		slog.Error("storage init failed", "dir", cfg.StorageDir, "error", err)
		os.Exit(1)
	}

	nattypadClient := nattypad.NewClient(nattypad.Config{
		BaseURL:      cfg.NattyPadBaseURL,
		ClientID:     cfg.NattyPadClientID,
		ClientSecret: cfg.NattyPadClientSecret,
	}, nattypad.NewTokenCache(cfg.NattyPadTokenTTL))

	// Services
	assoc := association.NewManager(database.DB)
	authService := services.NewAuthService(database.DB, cfg, mail)
	userService := services.NewUserService(database.DB, assoc, mail)
	appService := services.NewAppService(database.DB, assoc, store)
	libraryService := services.NewLibraryService(database.DB, assoc)

	// Handlers
	h := routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Health:      handlers.NewHealthHandler(),
		Account:     handlers.NewAccountHandler(userService, libraryService, appService),
		App:         handlers.NewAppHandler(appService),
		Category:    handlers.NewCategoryHandler(services.NewCategoryService(database.DB, assoc, store)),
		Tag:         handlers.NewTagHandler(services.NewTagService(database.DB)),
		Platform:    handlers.NewPlatformHandler(services.NewPlatformService(database.DB)),
		Role:        handlers.NewRoleHandler(services.NewRoleService(database.DB, assoc)),
		Permission:  handlers.NewPermissionHandler(services.NewPermissionService(database.DB, assoc)),
		User:        handlers.NewUserHandler(userService),
		Analytics:   handlers.NewAnalyticsHandler(services.NewAnalyticsService(database.DB, assoc), services.NewLookupService(database.DB)),
		Integration: handlers.NewIntegrationHandler(nattypadClient),
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "applibry-api",
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${respHeader:X-Request-ID}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, database.DB, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	slog.SetDefault(slog.New(stdoutHandler))
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

// customErrorHandler renders errors that escape the handlers (routing
// misses, body limit, panics) in the standard error envelope.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Success:    false,
		Message:    message,
		StatusCode: code,
	})
}
