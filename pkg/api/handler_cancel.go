package api

import (
	"fmt"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/8090-inc/xrx-sample-apps/pkg/kv"
)

// cancelAgentHandler handles POST /cancel-reasoning-agent/:task_id.
// Marks the task cancelled in the key-value store; the executor observes
// the marker at its next checkpoint. Idempotent, and deliberately without
// an existence check: the caller already holds the task ID, and cancelling
// a finished or unknown task is harmless.
func (s *Server) cancelAgentHandler(c *echo.Context) error {
	taskID := c.Param("task_id")
	if taskID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task id is required")
	}

	if err := s.store.Set(c.Request().Context(), kv.CancelKey(taskID), kv.StatusCancelled); err != nil {
		slog.Error("failed to record cancellation", "task_id", taskID, "error", err)
		return c.JSON(http.StatusInternalServerError,
			&CancelResponse{Detail: fmt.Sprintf("An error occurred: %s", err)})
	}

	slog.Info("task marked cancelled", "task_id", taskID)
	return c.JSON(http.StatusOK, &CancelResponse{Detail: fmt.Sprintf("Task %s cancelled", taskID)})
}
