package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mission-service/prometheus"
)

// HealthCheck handles the health check endpoint
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": "mission-service",
	})
}

// MetricsHandler exposes the Prometheus metrics endpoint
func MetricsHandler(c echo.Context) error {
	prometheus.GetPrometheusHandler().ServeHTTP(c.Response(), c.Request())
	return nil
}
