package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docqa/internal/model"
	"docqa/internal/service"
)

// HealthCheck godoc
// @Summary Readiness
// @Description Reports whether the question answering model is loaded.
// @Tags ops
// @Produce json
// @Success 200 {object} model.HealthResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /health [get]
func HealthCheck(svc service.QAService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !svc.Ready() {
			return writeError(c, fiber.StatusServiceUnavailable, msgModelUnavailable)
		}
		return c.JSON(model.HealthResponse{Status: "healthy", Model: svc.Checkpoint()})
	}
}

// LivenessProbe answers 200 while the process is serving.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// MetricsHandler exposes g in the Prometheus text format.
func MetricsHandler(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
