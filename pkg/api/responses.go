package api

// CancelResponse is returned by POST /cancel-reasoning-agent/:task_id.
type CancelResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
