package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/8090-inc/xrx-sample-apps/pkg/kv"
	"github.com/8090-inc/xrx-sample-apps/pkg/models"
)

func newRunRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/run-reasoning-agent", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestRunAgentHandler(t *testing.T) {
	t.Run("streams frames as server-sent events", func(t *testing.T) {
		runner := &stubRunner{frames: [][]byte{
			[]byte(`{"node":"Routing","output":"call-tool"}`),
			[]byte(`{"node":"CustomerResponse","output":"Here you go"}`),
		}}
		store := kv.NewMemoryStore()
		s := NewServer(runner, store)

		req := newRunRequest(`{
			"messages": [{"role": "user", "content": "what pizzas do you have?"}],
			"session": {"guid": "abc-123"},
			"action": {}
		}`)
		rec := httptest.NewRecorder()
		c := echo.New().NewContext(req, rec)

		require.NoError(t, s.runAgentHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
		assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

		taskID := rec.Header().Get("X-Task-ID")
		_, err := uuid.Parse(taskID)
		require.NoError(t, err, "X-Task-ID must be a UUID")

		assert.Equal(t,
			"data: {\"node\":\"Routing\",\"output\":\"call-tool\"}\n\n"+
				"data: {\"node\":\"CustomerResponse\",\"output\":\"Here you go\"}\n\n",
			rec.Body.String())

		// The task was admitted before the run started.
		status, ok, err := store.Get(context.Background(), taskID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, kv.StatusRunning, status)

		// The runner received the decoded request.
		got := runner.request()
		assert.Equal(t, taskID, got.TaskID)
		require.Len(t, got.Messages, 1)
		assert.Equal(t, models.RoleUser, got.Messages[0].Role)
		assert.Equal(t, "abc-123", got.Session.GetString("guid"))
		assert.True(t, got.Action.IsZero())
	})

	t.Run("forwards the frontend action", func(t *testing.T) {
		runner := &stubRunner{}
		s := NewServer(runner, kv.NewMemoryStore())

		req := newRunRequest(`{
			"messages": [],
			"session": {},
			"action": {"type": "tool", "details": {"tool": "get_product_details", "parameters": {"product_id": 101}}}
		}`)
		rec := httptest.NewRecorder()
		c := echo.New().NewContext(req, rec)

		require.NoError(t, s.runAgentHandler(c))

		got := runner.request()
		assert.Equal(t, models.ActionTypeTool, got.Action.Type)
		assert.Equal(t, "get_product_details", got.Action.Details.Tool)
		assert.Equal(t, map[string]any{"product_id": float64(101)}, got.Action.Details.Parameters)
	})

	t.Run("rejects unknown action types", func(t *testing.T) {
		s := NewServer(&stubRunner{}, kv.NewMemoryStore())

		req := newRunRequest(`{"messages": [], "session": {}, "action": {"type": "navigate"}}`)
		rec := httptest.NewRecorder()
		c := echo.New().NewContext(req, rec)

		err := s.runAgentHandler(c)
		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, "expected echo.HTTPError")
		assert.Equal(t, http.StatusBadRequest, he.Code)
		assert.Contains(t, fmt.Sprint(he.Message), "navigate")
	})

	t.Run("rejects malformed bodies", func(t *testing.T) {
		s := NewServer(&stubRunner{}, kv.NewMemoryStore())

		rec := httptest.NewRecorder()
		c := echo.New().NewContext(newRunRequest(`{not json`), rec)

		err := s.runAgentHandler(c)
		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("runner rejection maps to 400", func(t *testing.T) {
		s := NewServer(&stubRunner{err: errors.New("cannot start")}, kv.NewMemoryStore())

		rec := httptest.NewRecorder()
		c := echo.New().NewContext(newRunRequest(`{"messages": [], "session": {}}`), rec)

		err := s.runAgentHandler(c)
		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("store failure maps to 500", func(t *testing.T) {
		s := NewServer(&stubRunner{}, &failingStore{err: errors.New("kv unavailable")})

		rec := httptest.NewRecorder()
		c := echo.New().NewContext(newRunRequest(`{"messages": [], "session": {}}`), rec)

		err := s.runAgentHandler(c)
		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, he.Code)
	})
}
