package graph

import "fmt"

// Result is one unit of node output. Normal results carry the producing
// node's identifier under "node" and usually "output", "reason" and
// "memory"; error results carry a single "error" key.
type Result map[string]any

// ErrorResult builds the terminal error result for a traversal.
func ErrorResult(message string) Result {
	return Result{"error": message}
}

// NodeFailure builds the error result reported when a node's processing
// fails.
func NodeFailure(nodeID string) Result {
	return ErrorResult(fmt.Sprintf("An error occurred in node %s", nodeID))
}

// IsError reports whether the result is a terminal error frame.
func (r Result) IsError() bool {
	_, ok := r["error"]
	return ok
}

// Node returns the identifier of the node that produced the result, or ""
// for error results.
func (r Result) Node() string {
	id, _ := r["node"].(string)
	return id
}

// Output returns the result's output value, which may be a string or a
// structured object depending on the node.
func (r Result) Output() any {
	return r["output"]
}

// Reason returns the node's stated reason for its output, if any.
func (r Result) Reason() string {
	reason, _ := r["reason"].(string)
	return reason
}

// Memory returns the memory attached to the result, or nil.
func (r Result) Memory() Memory {
	switch m := r["memory"].(type) {
	case Memory:
		return m
	case map[string]any:
		return Memory(m)
	default:
		return nil
	}
}
