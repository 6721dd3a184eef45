package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"docqa/docs"
	"docqa/internal/config"
	"docqa/internal/extractor"
	handlers "docqa/internal/http/handler"
	"docqa/internal/http/middleware"
	"docqa/internal/logging"
	tracing "docqa/internal/otel"
	"docqa/internal/qa"
	"docqa/internal/service"
	"docqa/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Document QA API
// @version 1.0
// @description Upload a document, then ask questions answered from its text.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	logger := logging.New(os.Stdout, cfg.Log.Location(), cfg.Log.Level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, logger)
	if err != nil {
		logger.Error("tracing_init_failed", "error", err)
		os.Exit(1)
	}

	// Optional S3-compatible store holding checkpoint artifacts
	var store storage.Storage
	if cfg.MinIO.Endpoint != "" {
		store, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			logger.Warn("artifact_store_unavailable", "endpoint", cfg.MinIO.Endpoint, "error", err)
			store = nil
		}
	}

	// A failed load is not fatal: /upload keeps working and /ask reports the model as unavailable
	engine, _ := qa.Load(ctx, cfg.Model, qa.Artifacts{
		Dir:    cfg.Model.Dir,
		Store:  store,
		Prefix: cfg.MinIO.Prefix,
	}, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := service.NewMetrics(reg)
	if err != nil {
		logger.Error("metrics_init_failed", "error", err)
		os.Exit(1)
	}

	extractors := extractor.NewRegistry(extractor.NewPDF(logger), extractor.NewText())
	svc := service.NewQAService(extractors, engine, service.Options{
		MaxContextChars: cfg.MaxContextChars,
		Metrics:         metrics,
	})

	app, err := newApp(cfg, svc, reg, logger)
	if err != nil {
		logger.Error("app_init_failed", "error", err)
		os.Exit(1)
	}

	go func() {
		addr := ":" + cfg.Port
		logger.Info("server_starting", "addr", addr, "extensions", extractors.Extensions(), "model_ready", engine.Ready())
		if err := app.Listen(addr); err != nil {
			logger.Error("server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("server_stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing_shutdown_failed", "error", err)
	}
	if err := engine.Close(); err != nil {
		logger.Error("model_close_failed", "error", err)
	}
}

// newApp builds the Fiber application with middleware and routes wired.
func newApp(cfg *config.AppConfig, svc service.QAService, reg *prometheus.Registry, logger *slog.Logger) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             cfg.MaxUploadBytes,
		DisableStartupMessage: true,
	})

	prom, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, err
	}

	app.Use(fiberrecover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/health")
	})))
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(prom.Handler())

	handlers.RegisterRoutes(app, svc, reg, logger)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host", cfg.AppHost)
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	return app, nil
}
