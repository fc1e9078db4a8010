package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/8090-inc/xrx-sample-apps/pkg/graph"
	"github.com/8090-inc/xrx-sample-apps/pkg/models"
	"github.com/8090-inc/xrx-sample-apps/pkg/tools"
)

// widgetCapable lists the tools whose output has a visual representation.
// Their results fan out to the Widget node in addition to the natural
// language conversion.
var widgetCapable = map[string]bool{
	"get_products":          true,
	"get_product_details":   true,
	"add_item_to_cart":      true,
	"delete_item_from_cart": true,
	"get_cart_summary":      true,
	"submit_cart_for_order": true,
	"get_order_status":      true,
}

// ExecuteTool invokes the requested tool against the request session and
// carries its output into the graph.
type ExecuteTool struct {
	graph.BaseNode
	tools *tools.Registry
}

// NewExecuteTool builds the tool executor.
func NewExecuteTool(registry *tools.Registry) *ExecuteTool {
	return &ExecuteTool{
		BaseNode: graph.BaseNode{NodeID: NodeExecuteTool},
		tools:    registry,
	}
}

func (n *ExecuteTool) Process(ctx context.Context, ec *graph.ExecContext, _ []models.Message, input graph.Input, emit graph.EmitFunc) error {
	tool, ok := n.tools.Get(input.Tool)
	if !ok {
		return fmt.Errorf("tool %q is not registered", input.Tool)
	}

	slog.Info("executing tool", "tool", input.Tool, "task_id", ec.TaskID)
	response, err := tool.Call(ctx, ec.Session, input.Parameters)
	if err != nil {
		return fmt.Errorf("tool %s: %w", input.Tool, err)
	}

	// Structured tool replies travel as objects; anything else stays a
	// plain string.
	var output any
	if err := json.Unmarshal([]byte(response), &output); err != nil {
		output = response
	}

	parameters := input.Parameters
	if parameters == nil {
		parameters = map[string]any{}
	}
	emit(graph.Result{
		"node":       n.ID(),
		"reason":     "Output of tool",
		"output":     output,
		"tool":       input.Tool,
		"parameters": parameters,
		"memory":     input.Memory,
	})
	return nil
}

// Successors always converts the output to natural language; tools with a
// visual representation additionally render a widget. Each branch gets its
// own deep copy of the payload.
func (n *ExecuteTool) Successors(last graph.Result) ([]graph.Successor, error) {
	tool, _ := last["tool"].(string)
	parameters, _ := last["parameters"].(map[string]any)
	output := last.Output()
	memory := last.Memory()

	branch := func() graph.Input {
		return graph.Input{
			Output:     graph.CloneValue(output),
			Tool:       tool,
			Parameters: graph.CloneMap(parameters),
			Memory:     memory.Clone(),
		}
	}

	var successors []graph.Successor
	if widgetCapable[tool] {
		successors = append(successors, graph.Successor{ID: NodeWidget, Input: branch()})
	}
	successors = append(successors, graph.Successor{ID: NodeConvertNaturalLanguage, Input: branch()})
	return successors, nil
}
