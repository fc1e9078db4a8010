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

const chooseToolPrompt = `You are an expert at deciding which tool to use to generate a response to the customer from the assistant.
If the tool output is already in the conversation, don't use the tool again.
Keep track of previous tool calls and their results. If a tool call fails or produces unexpected results, do not repeat the same call without modification. Instead, analyze the error, report it to the user, and suggest an alternative action.
Maintain awareness of the full conversation history. Use this context to avoid repeating information or asking for details that have already been provided. Regularly summarize the current state of the order to ensure consistency.

## Tools
You have access to the following tools.

{tools}

## Historical Conversation

Here is the conversation so far:

{conversation}

## Output Format
You must return a perfectly formatted JSON object which can be serialized with the following keys:
- 'reason': a string explaining which tool is the correct tool for the situation.
- 'tool': a string representing the tool to use.

The 'reason' string should follow a pattern like below:
"The previous tool calls accomplished <diagnosis of previous tool calls here>. Based on these previous actions, the correct tool to call is <tool name here>. When I call this tool, I will use the following parameters: <description of tool parameter inputs here>"

If it is clear that a tool should not be called in this situation, simply state why in the 'reason' key and place a blank string "" in the 'tool' key.

## Rules
- Never assume an id input if it is not provided in the context or previous tool calls.
- Always use the exact values returned by the previous tools. Do not modify or create new values.
- Provide all information in the JSON object. Any other text is strictly forbidden.
- If you're unsure about any information, use the appropriate tool to verify rather than making assumptions.
`

// ChooseTool picks which tool to run next, or none when responding
// directly is the right move.
type ChooseTool struct {
	graph.BaseNode
	llm    *llm.Client
	prompt string
}

// NewChooseTool builds the tool chooser over the registry's full listing.
func NewChooseTool(client *llm.Client, registry *tools.Registry) *ChooseTool {
	return &ChooseTool{
		BaseNode: graph.BaseNode{NodeID: NodeChooseTool},
		llm:      client,
		prompt:   strings.ReplaceAll(chooseToolPrompt, "{tools}", registry.Describe()),
	}
}

func (n *ChooseTool) Process(ctx context.Context, _ *graph.ExecContext, messages []models.Message, input graph.Input, emit graph.EmitFunc) error {
	system := spliceConversation(n.prompt, messages, input.Memory)
	reply, err := n.llm.CompleteJSON(ctx, promptMessages(system), llm.DefaultTemperature)
	if err != nil {
		return fmt.Errorf("choose tool completion: %w", err)
	}

	reason, ok := reply["reason"]
	if !ok {
		return fmt.Errorf("choose tool reply missing reason: %v", reply)
	}
	tool, ok := reply["tool"]
	if !ok {
		return fmt.Errorf("choose tool reply missing tool: %v", reply)
	}

	reasonStr, _ := reason.(string)
	toolStr, _ := tool.(string)
	emit(graph.Result{
		"node":   n.ID(),
		"reason": reasonStr,
		"output": toolStr,
		"memory": input.Memory,
	})
	return nil
}

// Successors hands a chosen tool to IdentifyToolParams; a blank choice goes
// straight to CustomerResponse. Models sometimes answer "tool(arg)", so
// anything from the first parenthesis on is dropped.
func (n *ChooseTool) Successors(last graph.Result) ([]graph.Successor, error) {
	tool, _ := last["output"].(string)
	if i := strings.Index(tool, "("); i >= 0 {
		tool = tool[:i]
	}

	input := graph.Input{Reason: last.Reason(), Memory: last.Memory()}
	if tool != "" {
		input.Tool = tool
		return []graph.Successor{{ID: NodeIdentifyToolParams, Input: input}}, nil
	}
	return []graph.Successor{{ID: NodeCustomerResponse, Input: input}}, nil
}
