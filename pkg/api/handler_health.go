package api

import (
	"context"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
)

const (
	healthStatusOK        = "ok"
	healthStatusUnhealthy = "unhealthy"
)

// healthHandler handles GET /health.
// The key-value store is the only hard dependency checked; the LLM service
// and storefront are external and excluded so an upstream outage does not
// get this process restarted.
func (s *Server) healthHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, _, err := s.store.Get(reqCtx, "health-probe"); err != nil {
		return c.JSON(http.StatusServiceUnavailable,
			&HealthResponse{Status: healthStatusUnhealthy, Error: err.Error()})
	}
	return c.JSON(http.StatusOK, &HealthResponse{Status: healthStatusOK})
}
