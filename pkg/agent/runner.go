package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/8090-inc/xrx-sample-apps/pkg/graph"
	"github.com/8090-inc/xrx-sample-apps/pkg/kv"
	"github.com/8090-inc/xrx-sample-apps/pkg/llm"
	"github.com/8090-inc/xrx-sample-apps/pkg/models"
	"github.com/8090-inc/xrx-sample-apps/pkg/session"
	"github.com/8090-inc/xrx-sample-apps/pkg/tools"
)

// Announcement of a frontend tool action, appended to the conversation before
// the traversal re-enters at the execute-tool node.
const userToolCallPrompt = `### Action taken my the user on the frontend

Tool: %s
Parameters: %s

### User current status
<awaiting next steps>
`

// RunnerConfig carries everything a Runner needs to assemble the reasoning
// graph for a request.
type RunnerConfig struct {
	LLM   *llm.Client
	Tools *tools.Registry
	Store kv.Store

	// StoreInfo and ServiceTask are spliced into the routing and customer
	// response prompts.
	StoreInfo   string
	ServiceTask string

	// Images populates product image URLs on widget payloads. Nil disables
	// image population.
	Images WidgetImagePopulator
	// ShopGID builds customer-facing order confirmation links.
	ShopGID string
}

// Runner turns one conversational request into a stream of response frames by
// walking the reasoning graph.
type Runner struct {
	cfg RunnerConfig
}

// NewRunner returns a Runner for the given configuration.
func NewRunner(cfg RunnerConfig) *Runner {
	return &Runner{cfg: cfg}
}

// RunRequest is one conversational turn: the task identifier used for status
// and cancellation keys, the conversation so far, the caller's session, and
// an optional frontend action that re-enters the graph at tool execution.
type RunRequest struct {
	TaskID   string
	Messages []models.Message
	Session  *session.Session
	Action   models.Action
}

// Run starts a traversal for the request and returns a channel of encoded
// response frames in production order. An error frame, when one occurs, is
// the last frame delivered. The channel is closed when the run finishes; the
// caller must drain it.
//
// A request without an action enters the graph at routing with empty memory.
// A request with a tool action records the action in the conversation and
// enters at tool execution instead, so the tool result flows through the
// same widget, summary and routing path as an agent-initiated call.
func (r *Runner) Run(ctx context.Context, req RunRequest) (<-chan []byte, error) {
	if req.Session == nil {
		req.Session = session.New()
	}
	messages := models.CloneMessages(req.Messages)
	start := NodeRouting
	input := graph.Input{Memory: graph.Memory{}}

	if !req.Action.IsZero() {
		if req.Action.Type != models.ActionTypeTool {
			return nil, fmt.Errorf("unsupported action type %q", req.Action.Type)
		}
		actionMsg, err := actionMessage(req.Action)
		if err != nil {
			return nil, fmt.Errorf("encoding action parameters: %w", err)
		}
		messages = append(messages, actionMsg)
		start = NodeExecuteTool
		input.Tool = req.Action.Details.Tool
		input.Parameters = req.Action.Details.Parameters
		slog.Info("entering graph at tool execution", "task_id", req.TaskID, "tool", input.Tool)
	}

	ec := &graph.ExecContext{TaskID: req.TaskID, Session: req.Session, Store: r.cfg.Store}
	results := r.buildGraph().Traverse(ctx, ec, graph.TraverseRequest{
		StartNode: start,
		Messages:  messages,
		Input:     input,
	})

	frames := make(chan []byte)
	go func() {
		defer close(frames)
		for result := range results {
			if result.IsError() {
				frame, err := json.Marshal(result)
				if err != nil {
					slog.Error("encoding error frame failed", "task_id", req.TaskID, "error", err)
					return
				}
				frames <- frame
				return
			}
			frame, err := FormatResult(result, req.Session)
			if err != nil {
				slog.Error("formatting result failed", "task_id", req.TaskID, "node", result.Node(), "error", err)
				frame, _ = json.Marshal(graph.ErrorResult(err.Error()))
				frames <- frame
				return
			}
			frames <- frame
		}
	}()
	return frames, nil
}

// buildGraph assembles a fresh graph per run; nodes are stateless between
// runs but cheap enough not to share.
func (r *Runner) buildGraph() *graph.Graph {
	g := graph.New()
	g.AddNode(NewRouting(r.cfg.LLM, r.cfg.Tools, r.cfg.StoreInfo, r.cfg.ServiceTask))
	g.AddNode(NewChooseTool(r.cfg.LLM, r.cfg.Tools))
	g.AddNode(NewIdentifyToolParams(r.cfg.LLM, r.cfg.Tools))
	g.AddNode(NewExecuteTool(r.cfg.Tools))
	g.AddNode(NewConvertNaturalLanguage(r.cfg.LLM))
	g.AddNode(NewCustomerResponse(r.cfg.LLM, r.cfg.StoreInfo, r.cfg.ServiceTask))
	g.AddNode(NewTaskDescriptionResponse(r.cfg.LLM, r.cfg.Tools))
	g.AddNode(NewWidget(r.cfg.Images, r.cfg.ShopGID))

	g.AddEdge(NodeRouting, NodeCustomerResponse)
	g.AddEdge(NodeRouting, NodeTaskDescription)
	g.AddEdge(NodeRouting, NodeChooseTool)
	g.AddEdge(NodeChooseTool, NodeIdentifyToolParams)
	g.AddEdge(NodeChooseTool, NodeCustomerResponse)
	g.AddEdge(NodeIdentifyToolParams, NodeExecuteTool)
	g.AddEdge(NodeExecuteTool, NodeWidget)
	g.AddEdge(NodeExecuteTool, NodeConvertNaturalLanguage)
	g.AddEdge(NodeConvertNaturalLanguage, NodeRouting)
	return g
}

// actionMessage renders a frontend tool action as a user turn so the models
// see what the user did between requests.
func actionMessage(action models.Action) (models.Message, error) {
	params := action.Details.Parameters
	if params == nil {
		params = map[string]any{}
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return models.Message{}, err
	}
	return models.Message{
		Role:    models.RoleUser,
		Content: fmt.Sprintf(userToolCallPrompt, action.Details.Tool, encoded),
	}, nil
}
