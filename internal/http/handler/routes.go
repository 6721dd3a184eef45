package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"docqa/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, svc service.QAService, gatherer prometheus.Gatherer, logger *slog.Logger) {
	app.Post("/upload", Upload(svc, logger))
	app.Post("/ask", Ask(svc, logger))

	app.Get("/health", HealthCheck(svc))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", MetricsHandler(gatherer))
}
