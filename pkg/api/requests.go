package api

import (
	"github.com/8090-inc/xrx-sample-apps/pkg/models"
)

// RunAgentRequest is the body of POST /run-reasoning-agent.
type RunAgentRequest struct {
	// Messages is the conversation so far, oldest first.
	Messages []models.Message `json:"messages"`
	// Session carries arbitrary per-conversation state; it is echoed back
	// in every frame.
	Session map[string]any `json:"session"`
	// Action optionally records a frontend tool interaction that the
	// traversal should start from instead of the router.
	Action models.Action `json:"action"`
}
