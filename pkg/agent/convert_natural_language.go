package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/8090-inc/xrx-sample-apps/pkg/graph"
	"github.com/8090-inc/xrx-sample-apps/pkg/llm"
	"github.com/8090-inc/xrx-sample-apps/pkg/models"
)

const convertNaturalLanguagePrompt = `You are an expert technical communicator who can read tool outputs and describe them with perfect english.
Your job is to convert the result of a tool to a plain english description. You will also have access to the messages between the User and the Agent. Use these messages to influence your description. Do not worry if a tool call result is not pertinent to the conversation, you are still in charge of making a description for all of the information in the tool call result.

Integer values for products, orders, and carts should always be included in the description. These are critical for downstream tasks, so the description should include the IDs. Any mistake on the copying of these IDs in your description will result in a catastrophic system failure. Make sure to double check all IDs in your reasoning output before providing them in the description.

## Conversation

Here is the conversation so far:

{conversation}

## Tool Call Result

Tool: {tool}

Input: {tool_input}

Output:
{tool_output}

## Output Format:
You must return a perfectly formatted JSON object which can be serialized with the following keys:
- 'reason': a string explaining why you chose the value for description.
- 'description': the natural language description of the tool call result following the sentence structure "Calling <tool here> with input <tool_input> returned <tool_output>. Relevant information to the conversation might include <relevant information>".

## Rules
- Do not describe the tool in the 'description'.
- Your 'description' string in the JSON response
should not include a dictionary of information, it should read like a sentence a human would understand.
- Ensure that all IDs are included in the 'description' if they are produced in the tool output.
- All information provided in the tool output must be included in the 'description'.
- Your response must ONLY be JSON output. Any other text is strictly forbidden.
`

// ConvertNaturalLanguage turns a raw tool output into prose and records the
// call in the memory's tool cache, then loops back to the router.
type ConvertNaturalLanguage struct {
	graph.BaseNode
	llm *llm.Client
}

// NewConvertNaturalLanguage builds the converter.
func NewConvertNaturalLanguage(client *llm.Client) *ConvertNaturalLanguage {
	return &ConvertNaturalLanguage{
		BaseNode: graph.BaseNode{NodeID: NodeConvertNaturalLanguage},
		llm:      client,
	}
}

func (n *ConvertNaturalLanguage) Process(ctx context.Context, _ *graph.ExecContext, messages []models.Message, input graph.Input, emit graph.EmitFunc) error {
	toolOutput, err := json.Marshal(input.Output)
	if err != nil {
		return fmt.Errorf("encode tool output: %w", err)
	}
	parameters := input.Parameters
	if parameters == nil {
		parameters = map[string]any{}
	}
	toolInput, err := json.Marshal(parameters)
	if err != nil {
		return fmt.Errorf("encode tool input: %w", err)
	}

	system := strings.ReplaceAll(convertNaturalLanguagePrompt, "{tool}", input.Tool)
	system = strings.ReplaceAll(system, "{tool_output}", string(toolOutput))
	system = strings.ReplaceAll(system, "{tool_input}", string(toolInput))
	system = spliceConversation(system, messages, input.Memory)

	reply, err := n.llm.CompleteJSON(ctx, promptMessages(system), llm.DefaultTemperature)
	if err != nil {
		return fmt.Errorf("convert natural language completion: %w", err)
	}
	description, _ := reply["description"].(string)
	reason, _ := reply["reason"].(string)

	memory := input.Memory
	if memory == nil {
		memory = graph.Memory{}
	}
	memory[memToolCache] = append(toolCache(memory), map[string]any{
		"tool":        input.Tool,
		"input":       string(toolInput),
		"output":      string(toolOutput),
		"description": description,
	})

	emit(graph.Result{
		"node":   n.ID(),
		"reason": reason,
		"tool":   input.Tool,
		"output": description,
		"memory": memory,
	})
	return nil
}

// Successors loops back to the router with the updated memory.
func (n *ConvertNaturalLanguage) Successors(last graph.Result) ([]graph.Successor, error) {
	tool, _ := last["tool"].(string)
	return []graph.Successor{{
		ID: NodeRouting,
		Input: graph.Input{
			Tool:   tool,
			Output: last.Output(),
			Memory: last.Memory(),
		},
	}}, nil
}
