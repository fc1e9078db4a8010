package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/8090-inc/xrx-sample-apps/pkg/kv"
	"github.com/8090-inc/xrx-sample-apps/pkg/models"
)

// DefaultMaxVisitedNodes bounds the total number of activations in one
// traversal, counting re-visits of the same identifier.
const DefaultMaxVisitedNodes = 40

// TraverseRequest describes one traversal: where to start, the conversation
// handed to every node, and the start node's input.
type TraverseRequest struct {
	StartNode string
	Messages  []models.Message
	Input     Input
	// MaxNodes overrides DefaultMaxVisitedNodes when positive.
	MaxNodes int
}

// Traverse walks the graph from the requested start node and returns a
// channel of results in production order. Successors of a node run
// concurrently; results of a single node arrive in emit order, and a
// successor's results never precede its parent's last result.
//
// The channel is closed when the traversal finishes. On a normal drain the
// task's status key is set to finished-with-success; an error result is the
// last value delivered and the status key will be finished-with-error. The
// caller must drain the channel.
func (g *Graph) Traverse(ctx context.Context, ec *ExecContext, req TraverseRequest) <-chan Result {
	maxNodes := req.MaxNodes
	if maxNodes <= 0 {
		maxNodes = DefaultMaxVisitedNodes
	}
	t := &traversal{
		graph:    g,
		maxNodes: maxNodes,
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	out := make(chan Result)
	go t.executeNode(ctx, ec, req.StartNode, req.Messages, req.Input)
	go t.consume(ctx, ec, out)
	return out
}

// traversal holds the shared state of one walk: the multi-producer result
// queue, the activation counter and the visit counter, all guarded by mu,
// plus the done signal that fires exactly once when no activations remain
// or the walk terminates early.
type traversal struct {
	graph    *Graph
	maxNodes int

	mu      sync.Mutex
	queue   []Result
	active  int
	visited int

	notify   chan struct{}
	done     chan struct{}
	doneOnce sync.Once
}

// executeNode runs one activation: account for it, run the node's Process,
// poll for cancellation, then launch all successors in parallel and wait
// for them. Any failure terminates the traversal with a single error
// result.
func (t *traversal) executeNode(ctx context.Context, ec *ExecContext, nodeID string, messages []models.Message, input Input) {
	t.mu.Lock()
	t.active++
	exceeded := t.visited > t.maxNodes
	if !exceeded {
		t.visited++
	}
	t.mu.Unlock()

	if exceeded {
		t.terminate(ctx, ec, ErrorResult(fmt.Sprintf("Number of nodes in the search exceeds %d. Breaking the search.", t.maxNodes)))
		t.finishActivation()
		return
	}

	node, ok := t.graph.Node(nodeID)
	if !ok {
		t.fail(ctx, ec, nodeID, fmt.Errorf("node %s is not registered", nodeID))
		t.finishActivation()
		return
	}

	var last Result
	emit := func(r Result) {
		t.enqueue(r)
		last = r
	}
	if err := node.Process(ctx, ec, messages, input, emit); err != nil {
		t.fail(ctx, ec, nodeID, err)
		t.finishActivation()
		return
	}

	proceed, err := node.CheckForContinue(ctx, ec)
	if err != nil {
		t.fail(ctx, ec, nodeID, err)
		t.finishActivation()
		return
	}

	var successors []Successor
	if proceed {
		successors, err = node.Successors(last)
		if err != nil {
			t.fail(ctx, ec, nodeID, err)
			t.finishActivation()
			return
		}
	} else {
		slog.Info("task cancelled, skipping successors", "task_id", ec.TaskID, "node", nodeID)
	}

	var wg sync.WaitGroup
	for _, s := range successors {
		wg.Add(1)
		go func(s Successor) {
			defer wg.Done()
			t.executeNode(ctx, ec, s.ID, messages, s.Input)
		}(s)
	}
	wg.Wait()

	t.finishActivation()
}

// consume drains the queue into out until the traversal is done and the
// queue is empty, then records success. An error result is forwarded and
// ends the stream immediately; in-flight activations terminate on their
// own and their residual results are dropped.
func (t *traversal) consume(ctx context.Context, ec *ExecContext, out chan<- Result) {
	defer close(out)
	for {
		if r, ok := t.dequeue(); ok {
			out <- r
			if r.IsError() {
				return
			}
			continue
		}
		select {
		case <-t.done:
			for {
				r, ok := t.dequeue()
				if !ok {
					break
				}
				out <- r
				if r.IsError() {
					return
				}
			}
			if err := ec.Store.Set(ctx, ec.TaskID, kv.StatusFinishedSuccess); err != nil {
				slog.Error("failed to record task success", "task_id", ec.TaskID, "error", err)
			}
			return
		case <-t.notify:
		}
	}
}

// fail records a node failure: the status key goes to finished-with-error,
// a single error result is enqueued, and the done signal fires so the
// consumer stops after forwarding it.
func (t *traversal) fail(ctx context.Context, ec *ExecContext, nodeID string, cause error) {
	slog.Error("node processing failed", "task_id", ec.TaskID, "node", nodeID, "error", cause)
	t.terminate(ctx, ec, NodeFailure(nodeID))
}

func (t *traversal) terminate(ctx context.Context, ec *ExecContext, errResult Result) {
	if err := ec.Store.Set(ctx, ec.TaskID, kv.StatusFinishedError); err != nil {
		slog.Error("failed to record task failure", "task_id", ec.TaskID, "error", err)
	}
	t.enqueue(errResult)
	t.signalDone()
}

func (t *traversal) finishActivation() {
	t.mu.Lock()
	t.active--
	idle := t.active == 0
	t.mu.Unlock()
	if idle {
		t.signalDone()
	}
}

func (t *traversal) signalDone() {
	t.doneOnce.Do(func() { close(t.done) })
}

func (t *traversal) enqueue(r Result) {
	t.mu.Lock()
	t.queue = append(t.queue, r)
	t.mu.Unlock()
	select {
	case t.notify <- struct{}{}:
	default:
	}
}

func (t *traversal) dequeue() (Result, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.queue) == 0 {
		return nil, false
	}
	r := t.queue[0]
	t.queue = t.queue[1:]
	return r, true
}
