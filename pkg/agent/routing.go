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

const routingPrompt = `You an expert at determining if you have enough information to generate a response to the user from the assistant.

## Store information
{store_info}

## Customer Service Task
{customer_service_task}

## Tools
You have access to the following tools:
{tools}

## Conversation

Here is the conversation so far:

{conversation}

## Output Format
You must return a perfectly formatted JSON object which can be serialized with the following keys:
- 'reason': a string explaining why you chose to either call a tool or respond to the customer.
- 'next-action': a string representing the next action to take. This will be 'call-tool' or 'respond-to-customer'.

The 'reason' string should follow a logical step by step pattern like below:
"The historical conversation showed <diagnosis of conversation so far>. The previous tool calls accomplished <diagnosis of tool calls so far>. Based on these previous tool calls and all available information, I am choosing to
<description of the tool call or response to the customer>"

Your JSON output should not have more than the two keys 'reason' and 'next-action'.

## Rules
Whenever a customer is asking questions about something in the shop, you should only respond if:
1. You are certain of the answer based on the output of tools
2. You have tried to find the information via tools and it is not available.
`

// Routing decides whether the agent already has enough information to
// answer the customer or needs to call a tool first.
type Routing struct {
	graph.BaseNode
	llm    *llm.Client
	prompt string
}

// NewRouting builds the router. The tool listing, store information and
// service task are spliced into the system prompt once at construction.
func NewRouting(client *llm.Client, registry *tools.Registry, storeInfo, serviceTask string) *Routing {
	prompt := strings.ReplaceAll(routingPrompt, "{tools}", registry.Signatures())
	prompt = strings.ReplaceAll(prompt, "{store_info}", storeInfo)
	prompt = strings.ReplaceAll(prompt, "{customer_service_task}", serviceTask)
	return &Routing{
		BaseNode: graph.BaseNode{NodeID: NodeRouting},
		llm:      client,
		prompt:   prompt,
	}
}

func (n *Routing) Process(ctx context.Context, _ *graph.ExecContext, messages []models.Message, input graph.Input, emit graph.EmitFunc) error {
	system := spliceConversation(n.prompt, messages, input.Memory)
	reply, err := n.llm.CompleteJSON(ctx, promptMessages(system), llm.DefaultTemperature)
	if err != nil {
		return fmt.Errorf("routing completion: %w", err)
	}

	nextAction, _ := reply["next-action"].(string)
	reason, _ := reply["reason"].(string)
	emit(graph.Result{
		"node":   n.ID(),
		"output": nextAction,
		"reason": reason,
		"memory": input.Memory,
	})
	return nil
}

// Successors routes "respond-to-customer" to CustomerResponse and
// "call-tool" to TaskDescriptionResponse plus ChooseTool. The waiting
// message is only wanted before the first tool call of a turn, so the
// task-description flag is set from whether the tool cache is still empty.
// The CustomerResponse branch receives the memory without the flag.
func (n *Routing) Successors(last graph.Result) ([]graph.Successor, error) {
	nextAction, _ := last["output"].(string)
	memory := last.Memory()

	var successors []graph.Successor
	if strings.Contains(nextAction, "respond-to-customer") {
		successors = append(successors, graph.Successor{
			ID:    NodeCustomerResponse,
			Input: graph.Input{Memory: memory.Clone()},
		})
	}

	flagged := memory.Clone()
	flagged[memTaskDescription] = len(toolCache(flagged)) == 0

	if strings.Contains(nextAction, "call-tool") {
		successors = append(successors,
			graph.Successor{ID: NodeTaskDescription, Input: graph.Input{Memory: flagged.Clone()}},
			graph.Successor{ID: NodeChooseTool, Input: graph.Input{Memory: flagged.Clone()}},
		)
	}
	return successors, nil
}
