package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/8090-inc/xrx-sample-apps/pkg/graph"
	"github.com/8090-inc/xrx-sample-apps/pkg/llm"
	"github.com/8090-inc/xrx-sample-apps/pkg/models"
	"github.com/8090-inc/xrx-sample-apps/pkg/tools"
)

const taskDescriptionPrompt = `Your job is to generate a brief, personalized waiting message for the customer.
The message should be vague about the specific tasks that you will be performing in the future but should acknowledge that you are working on their request. Use the conversation context and previous tool calls (if provided) to make the response more relevant and personal.
Make it five words or less.

## Tools
Here are the tools which you will be using in the future to help solve the customer's request.
You should never tell the customer about the tools or mention them. Only use this information to help you generate the waiting message to the customer response.

{tools}

## Conversation

Here is the conversation so far:

{conversation}

## Tone and Style
Make sure your response is extremely human like. No one would say something like "processing this request" or "I'm working on this request". They would say things like "Ok one second" or "let me check on that" or "let me check that order quickly". Use this style in your response.

## Output Format:
You must return a perfectly formatted JSON object which can be serialized with the following keys:
- 'reason': a string explaining why you chose this waiting message.
- 'response': the waiting message for the customer.

Keep the response brief, friendly, and reassuring. Do not provide specific details about
the tasks being performed, but you may vaguely reference the type of information being gathered
or actions being taken if it's relevant to the customer's last request.

You do not have any other teammates working on the task, so do not reference anyone but yourself.

If tool calls have been made, use this information to make your response more specific
without revealing exact details of the operations being performed.
`

// TaskDescriptionResponse speaks a short waiting message while tools run.
// It only fires on the first tool call of a turn; otherwise it stays
// silent and the path ends without a result.
type TaskDescriptionResponse struct {
	graph.BaseNode
	llm    *llm.Client
	prompt string
}

// NewTaskDescriptionResponse builds the waiting-message node.
func NewTaskDescriptionResponse(client *llm.Client, registry *tools.Registry) *TaskDescriptionResponse {
	return &TaskDescriptionResponse{
		BaseNode: graph.BaseNode{NodeID: NodeTaskDescription},
		llm:      client,
		prompt:   strings.ReplaceAll(taskDescriptionPrompt, "{tools}", registry.Signatures()),
	}
}

func (n *TaskDescriptionResponse) Process(ctx context.Context, _ *graph.ExecContext, messages []models.Message, input graph.Input, emit graph.EmitFunc) error {
	proceed, _ := input.Memory[memTaskDescription].(bool)
	if !proceed {
		slog.Info("waiting message suppressed, tools already ran this turn")
		return nil
	}

	system := spliceConversation(n.prompt, messages, input.Memory)
	reply, err := n.llm.CompleteJSON(ctx, promptMessages(system), llm.FocusedTemperature)
	if err != nil {
		return fmt.Errorf("task description completion: %w", err)
	}

	reason, ok := reply["reason"]
	if !ok {
		return fmt.Errorf("task description reply missing reason: %v", reply)
	}
	response, ok := reply["response"]
	if !ok {
		return fmt.Errorf("task description reply missing response: %v", reply)
	}

	reasonStr, _ := reason.(string)
	responseStr, _ := response.(string)
	emit(graph.Result{
		"node":   n.ID(),
		"reason": reasonStr,
		"output": responseStr,
		"memory": input.Memory,
	})
	return nil
}

// Successors returns none; the waiting message ends the path.
func (n *TaskDescriptionResponse) Successors(graph.Result) ([]graph.Successor, error) {
	return nil, nil
}
