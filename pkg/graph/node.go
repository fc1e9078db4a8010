package graph

import (
	"context"
	"fmt"

	"github.com/8090-inc/xrx-sample-apps/pkg/kv"
	"github.com/8090-inc/xrx-sample-apps/pkg/models"
	"github.com/8090-inc/xrx-sample-apps/pkg/session"
)

// ExecContext carries the per-traversal collaborators every activation can
// reach: the task identifier, the request's session and the KV store used
// for status and cancellation.
type ExecContext struct {
	TaskID  string
	Session *session.Session
	Store   kv.Store
}

// EmitFunc delivers one intermediate result from a node's Process to the
// consumer. Results are forwarded in call order.
type EmitFunc func(Result)

// Node is one vertex of the reasoning graph.
//
// Process runs the node's work, emitting zero or more results; the last
// emitted result is handed to Successors to derive the next activations.
// Returning an error terminates the whole traversal. Successors returning
// an empty slice marks the node terminal on this path. CheckForContinue
// runs between Process and Successors; returning false suppresses successor
// expansion for this node only.
type Node interface {
	ID() string
	Process(ctx context.Context, ec *ExecContext, messages []models.Message, input Input, emit EmitFunc) error
	Successors(last Result) ([]Successor, error)
	CheckForContinue(ctx context.Context, ec *ExecContext) (bool, error)
}

// Successor names the next node to activate and the input it receives.
// Nodes that fan out to several successors must give each one its own deep
// copy of the memory.
type Successor struct {
	ID    string
	Input Input
}

// BaseNode supplies the identifier and the default cancellation poll shared
// by concrete nodes.
type BaseNode struct {
	NodeID string
}

// ID returns the node identifier.
func (b BaseNode) ID() string {
	return b.NodeID
}

// CheckForContinue polls the cancellation key for the task and reports
// whether successor expansion may proceed.
func (b BaseNode) CheckForContinue(ctx context.Context, ec *ExecContext) (bool, error) {
	value, ok, err := ec.Store.Get(ctx, kv.CancelKey(ec.TaskID))
	if err != nil {
		return false, fmt.Errorf("poll cancellation for task %s: %w", ec.TaskID, err)
	}
	if ok && value == kv.StatusCancelled {
		return false, nil
	}
	return true, nil
}
