// Package agent implements the conversational reasoning agent: the concrete
// node graph, the runner that drives one traversal per request, and the
// formatter that renders traversal results into outbound frames.
package agent

import (
	"fmt"
	"strings"

	"github.com/8090-inc/xrx-sample-apps/pkg/graph"
	"github.com/8090-inc/xrx-sample-apps/pkg/llm"
	"github.com/8090-inc/xrx-sample-apps/pkg/models"
)

// Node identifiers. These appear in outbound frames, so they are part of
// the wire contract with the frontend.
const (
	NodeRouting                = "Routing"
	NodeChooseTool             = "ChooseTool"
	NodeIdentifyToolParams     = "IdentifyToolParams"
	NodeExecuteTool            = "ExecuteTool"
	NodeConvertNaturalLanguage = "ConvertNaturalLanguage"
	NodeCustomerResponse       = "CustomerResponse"
	NodeTaskDescription        = "TaskDescriptionResponse"
	NodeWidget                 = "Widget"
)

// Memory keys shared across nodes.
const (
	// memToolCache holds the tool calls made this turn, each entry
	// {tool, input, output, description}.
	memToolCache = "tool-output-cache"
	// memTaskDescription flags whether the waiting-message node should
	// speak. Set by the router, read by TaskDescriptionResponse.
	memTaskDescription = "task-description-to-customer"
)

// toolCachePrompt is appended to the rendered conversation when tools have
// already run this turn, so prompts see the same transcript the customer
// frames do.
const toolCachePrompt = `
assistant:
### Tools Used Before Responding to Customer

{tool_output_cache}
`

// toolCache returns the memory's tool call entries, oldest first.
func toolCache(mem graph.Memory) []any {
	if mem == nil {
		return nil
	}
	entries, _ := mem[memToolCache].([]any)
	return entries
}

// cacheLines renders tool cache entries as "* tool: description" lines.
func cacheLines(entries []any) string {
	var b strings.Builder
	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		tool, _ := entry["tool"].(string)
		description, _ := entry["description"].(string)
		fmt.Fprintf(&b, "* %s: %s\n", tool, description)
	}
	return b.String()
}

// conversationText renders the conversation as one "role: content" line per
// message, followed by the tool cache block when tools have already run.
func conversationText(messages []models.Message, mem graph.Memory) string {
	var b strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	if lines := cacheLines(toolCache(mem)); lines != "" {
		b.WriteString(strings.ReplaceAll(toolCachePrompt, "{tool_output_cache}", lines))
	}
	return b.String()
}

// spliceConversation substitutes the rendered conversation into a system
// prompt template.
func spliceConversation(prompt string, messages []models.Message, mem graph.Memory) string {
	return strings.ReplaceAll(prompt, "{conversation}", conversationText(messages, mem))
}

// promptMessages wraps a finished system prompt into the two-message shape
// every reasoning completion uses.
func promptMessages(system string) []models.Message {
	return []models.Message{
		{Role: models.RoleSystem, Content: system},
		{Role: models.RoleUser, Content: llm.DefaultUserTurn},
	}
}
