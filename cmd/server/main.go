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

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/config"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/database"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/ingest"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/logging"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/routes"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdoutHandler := logging.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o750); err != nil {
		slog.Error("failed to create upload directory", "path", cfg.UploadDir, "error", err)
		os.Exit(1)
	}

	// Store backend
	stores, logSink, err := openStores(context.Background(), cfg)
	if err != nil {
		slog.Error("store initialization failed", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	// ERROR+ logs to the system_logs table, 30-day retention
	var storeLogHandler *logging.StoreHandler
	cleanupDone := make(chan struct{})
	if logSink != nil {
		storeLogHandler = logging.NewStoreHandler(logSink)
		slog.SetDefault(slog.New(logging.NewMultiHandler(stdoutHandler, storeLogHandler)))
		logging.StartCleanup(logSink, cleanupDone)
	}

	// Shared rate limiter counters when Redis is configured
	var limiterStorage fiber.Storage
	if rdb := database.NewRedisClient(cfg); rdb != nil {
		limiterStorage = middleware.NewRedisStorage(rdb)
	}

	// Services
	authService := services.NewAuthService(stores, cfg)
	agentService := services.NewAgentService(stores, authService)
	distributionService := services.NewDistributionService(stores)
	taskService := services.NewTaskService(stores)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	agentHandler := handlers.NewAgentHandler(agentService)
	uploadHandler := handlers.NewUploadHandler(distributionService, cfg.UploadDir)
	taskHandler := handlers.NewTaskHandler(taskService)
	healthHandler := handlers.NewHealthHandler(stores.Ping, cfg.StoreDriver)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app; body limit leaves room for multipart framing around a
	// maximum-size upload
	app := fiber.New(fiber.Config{
		BodyLimit:             ingest.MaxUploadSize + 1<<20,
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: cfg.IsProduction(),
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
	routes.Setup(app, cfg, authService, limiterStorage, authHandler, agentHandler, uploadHandler, taskHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "driver", cfg.StoreDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	if storeLogHandler != nil {
		storeLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	if limiterStorage != nil {
		if err := limiterStorage.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := stores.Close(ctx); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("server stopped")
}
