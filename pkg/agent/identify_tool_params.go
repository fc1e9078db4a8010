package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/8090-inc/xrx-sample-apps/pkg/graph"
	"github.com/8090-inc/xrx-sample-apps/pkg/llm"
	"github.com/8090-inc/xrx-sample-apps/pkg/models"
	"github.com/8090-inc/xrx-sample-apps/pkg/tools"
)

const identifyParamsPrompt = `You an expert at identifying and mapping parameters from a conversation and memory to a function call.

## Tool to identify:
{tool}

## Reason for choosing this tool:
{reason}

## Parameters required to identify:
{parameters}

## Conversation so far:
{conversation}

## Output Format
You must return a perfectly formatted JSON object which can be serialized with the following keys:
- 'reason': a string explaining why you chose the value for each parameter.
- 'parameters': a dictionary representing the parameter keys and values.

The 'parameters' key must contain the exact type of parameter as defined in the tool description. For instance, if the tool description specifies an integer, you must return a single integer. Returning a list of integers would be incorrect because the tool expects a single integer, not a list of integers.

For example, if the parameters required to identify are "product_id: int" and "product_name: string", you must return:

- Correct: { "product_id": 5, "product_name": "Pizza" }
- Incorrect: { "product_id": [5, 10, 15], "product_name": "Pizza" }
`

// IdentifyToolParams fills in the argument values for the chosen tool from
// the conversation. Tools without declared parameters skip the model call
// entirely.
type IdentifyToolParams struct {
	graph.BaseNode
	llm   *llm.Client
	tools *tools.Registry
}

// NewIdentifyToolParams builds the parameter identifier.
func NewIdentifyToolParams(client *llm.Client, registry *tools.Registry) *IdentifyToolParams {
	return &IdentifyToolParams{
		BaseNode: graph.BaseNode{NodeID: NodeIdentifyToolParams},
		llm:      client,
		tools:    registry,
	}
}

func (n *IdentifyToolParams) Process(ctx context.Context, _ *graph.ExecContext, messages []models.Message, input graph.Input, emit graph.EmitFunc) error {
	tool, ok := n.tools.Get(input.Tool)
	if !ok {
		return fmt.Errorf("tool %q is not registered", input.Tool)
	}

	reason := input.Reason
	if reason == "" {
		reason = "No reason provided"
	}

	parameters := map[string]any{}
	replyReason := ""
	if params := tool.Parameters(); len(params) > 0 {
		var descs strings.Builder
		for _, p := range params {
			descs.WriteString(p.Description)
			descs.WriteString("\n")
		}
		system := strings.ReplaceAll(identifyParamsPrompt, "{parameters}", descs.String())
		system = strings.ReplaceAll(system, "{tool}", input.Tool)
		system = strings.ReplaceAll(system, "{reason}", reason)
		system = spliceConversation(system, messages, input.Memory)

		reply, err := n.llm.CompleteJSON(ctx, promptMessages(system), llm.DefaultTemperature)
		if err != nil {
			return fmt.Errorf("identify tool params completion: %w", err)
		}
		replyReason, _ = reply["reason"].(string)
		if values, ok := reply["parameters"].(map[string]any); ok {
			parameters = values
		}
	}

	emit(graph.Result{
		"node":   n.ID(),
		"reason": replyReason,
		"tool":   input.Tool,
		"output": parameters,
		"memory": input.Memory,
	})
	return nil
}

// Successors always hands the identified parameters to ExecuteTool.
func (n *IdentifyToolParams) Successors(last graph.Result) ([]graph.Successor, error) {
	tool, _ := last["tool"].(string)
	parameters, _ := last["output"].(map[string]any)
	return []graph.Successor{{
		ID: NodeExecuteTool,
		Input: graph.Input{
			Tool:       tool,
			Parameters: parameters,
			Memory:     last.Memory(),
		},
	}}, nil
}
