package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/8090-inc/xrx-sample-apps/pkg/agent"
	"github.com/8090-inc/xrx-sample-apps/pkg/kv"
	"github.com/8090-inc/xrx-sample-apps/pkg/models"
	"github.com/8090-inc/xrx-sample-apps/pkg/session"
)

// runAgentHandler handles POST /run-reasoning-agent.
// Starts a reasoning run and streams its frames as server-sent events. The
// task ID is returned in the X-Task-ID header so the caller can cancel the
// run while the stream is open.
func (s *Server) runAgentHandler(c *echo.Context) error {
	// 1. Bind and validate the request
	var req RunAgentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !req.Action.IsZero() && req.Action.Type != models.ActionTypeTool {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("unsupported action type %q", req.Action.Type))
	}

	// 2. Admit the task. The run must survive a client disconnect, so it
	// gets a context detached from the request's cancellation; stopping a
	// run goes through the cancel endpoint instead.
	taskID := uuid.NewString()
	runCtx := context.WithoutCancel(c.Request().Context())
	if err := s.store.Set(runCtx, taskID, kv.StatusRunning); err != nil {
		slog.Error("failed to admit task", "task_id", taskID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not register task")
	}
	slog.Info("starting reasoning run", "task_id", taskID, "messages", len(req.Messages))

	// 3. Start the traversal
	frames, err := s.runner.Run(runCtx, agent.RunRequest{
		TaskID:   taskID,
		Messages: req.Messages,
		Session:  session.NewFromMap(req.Session),
		Action:   req.Action,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// 4. Stream frames as server-sent events
	res := c.Response()
	header := res.Header()
	header.Set(echo.HeaderContentType, "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Task-ID", taskID)
	res.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(res)
	disconnected := false
	for frame := range frames {
		if disconnected {
			// Keep draining so the run can finish; the executor is only
			// stopped through the cancel endpoint.
			continue
		}
		if _, err := fmt.Fprintf(res, "data: %s\n\n", frame); err != nil {
			slog.Error("writing frame failed, draining remainder", "task_id", taskID, "error", err)
			disconnected = true
			continue
		}
		if err := rc.Flush(); err != nil {
			slog.Error("flushing frame failed, draining remainder", "task_id", taskID, "error", err)
			disconnected = true
		}
	}

	slog.Info("reasoning run stream closed", "task_id", taskID)
	return nil
}
