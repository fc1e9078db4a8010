package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/8090-inc/xrx-sample-apps/pkg/agent"
	"github.com/8090-inc/xrx-sample-apps/pkg/kv"
)

func TestServer_Routes(t *testing.T) {
	s := NewServer(&stubRunner{}, kv.NewMemoryStore())

	t.Run("unknown path returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/nope", nil)
		rec := httptest.NewRecorder()
		s.echo.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("security headers are set", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		s.echo.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	})

	t.Run("run endpoint rejects malformed bodies", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/run-reasoning-agent", strings.NewReader("{not json"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		s.echo.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	s := NewServer(&stubRunner{}, kv.NewMemoryStore())
	require.NoError(t, s.Shutdown(context.Background()))
}

// stubRunner replays canned frames and records the request it was started
// with.
type stubRunner struct {
	mu      sync.Mutex
	frames  [][]byte
	err     error
	lastReq agent.RunRequest
}

func (r *stubRunner) Run(_ context.Context, req agent.RunRequest) (<-chan []byte, error) {
	r.mu.Lock()
	r.lastReq = req
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make(chan []byte, len(r.frames))
	for _, frame := range r.frames {
		out <- frame
	}
	close(out)
	return out, nil
}

func (r *stubRunner) request() agent.RunRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastReq
}

// failingStore errors on every operation.
type failingStore struct{ err error }

func (s *failingStore) Set(context.Context, string, string) error { return s.err }

func (s *failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, s.err
}
