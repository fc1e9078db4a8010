// Package kv provides the shared key-value store used for task status
// bookkeeping and cross-process cancellation of reasoning runs.
package kv

import "context"

// Task status values. The bare task ID key tracks the run lifecycle; the
// task-prefixed key carries only the cancellation marker. The two keys are
// deliberately distinct so a cancellation request never clobbers the
// lifecycle state the stream consumer writes on drain.
const (
	StatusRunning         = "running"
	StatusFinishedSuccess = "finished-with-success"
	StatusFinishedError   = "finished-with-error"
	StatusCancelled       = "cancelled"
)

// CancelKey returns the key polled for cooperative cancellation of a task.
func CancelKey(taskID string) string {
	return "task-" + taskID
}

// Store is the contract between the executor and the external key-value
// store. Writes are last-writer-wins; the store is eventual rather than
// transactional, so a cancellation written concurrently with a node
// expansion may only take effect on the next expansion.
type Store interface {
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Get reads the value under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}
