package http

import (
	"github.com/labstack/echo/v4"

	"github.com/xiaoying/sales-assistant/internal/api/metrics"
	"github.com/xiaoying/sales-assistant/internal/infrastructure/http/handlers"
)

// RegisterProbes mounts the unauthenticated operational endpoints: liveness,
// readiness and the Prometheus scrape endpoint.
func RegisterProbes(e *echo.Echo, checks map[string]handlers.Check) {
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", metrics.Handler())
}
