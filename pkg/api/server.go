// Package api exposes the reasoning agent over HTTP: a streaming run
// endpoint, a cancellation endpoint and a health check.
package api

import (
	"context"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/8090-inc/xrx-sample-apps/pkg/agent"
	"github.com/8090-inc/xrx-sample-apps/pkg/kv"
)

// AgentRunner starts one reasoning run and streams encoded frames until the
// run finishes. Implemented by agent.Runner; tests substitute a stub.
type AgentRunner interface {
	Run(ctx context.Context, req agent.RunRequest) (<-chan []byte, error)
}

// Server is the HTTP server for the reasoning agent.
type Server struct {
	echo   *echo.Echo
	http   *http.Server
	runner AgentRunner
	store  kv.Store
}

// NewServer builds the server and registers its routes.
func NewServer(runner AgentRunner, store kv.Store) *Server {
	s := &Server{runner: runner, store: store}

	e := echo.New()
	e.Use(requestLogger(), securityHeaders())
	e.POST("/run-reasoning-agent", s.runAgentHandler)
	e.POST("/cancel-reasoning-agent/:task_id", s.cancelAgentHandler)
	e.GET("/health", s.healthHandler)
	s.echo = e
	return s
}

// Start listens on addr and serves until Shutdown or a listener error.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

// Shutdown stops the server, waiting for in-flight requests up to the
// context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
