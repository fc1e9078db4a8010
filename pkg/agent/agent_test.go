package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/8090-inc/xrx-sample-apps/pkg/graph"
	"github.com/8090-inc/xrx-sample-apps/pkg/llm"
	"github.com/8090-inc/xrx-sample-apps/pkg/models"
	"github.com/8090-inc/xrx-sample-apps/pkg/session"
	"github.com/8090-inc/xrx-sample-apps/pkg/tools"
)

func TestToolCache(t *testing.T) {
	t.Run("nil memory", func(t *testing.T) {
		assert.Nil(t, toolCache(nil))
	})

	t.Run("missing key", func(t *testing.T) {
		assert.Nil(t, toolCache(graph.Memory{}))
	})

	t.Run("entries", func(t *testing.T) {
		mem := graph.Memory{memToolCache: []any{
			map[string]any{"tool": "get_products", "description": "listed products"},
		}}
		entries := toolCache(mem)
		require.Len(t, entries, 1)
	})
}

func TestCacheLines(t *testing.T) {
	entries := []any{
		map[string]any{"tool": "get_products", "description": "Listed all products."},
		map[string]any{"tool": "add_item_to_cart", "description": "Added a pizza."},
		"not a map",
	}
	assert.Equal(t,
		"* get_products: Listed all products.\n* add_item_to_cart: Added a pizza.\n",
		cacheLines(entries))
	assert.Equal(t, "", cacheLines(nil))
}

func TestConversationText(t *testing.T) {
	messages := []models.Message{
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello"},
	}

	t.Run("without tool cache", func(t *testing.T) {
		text := conversationText(messages, graph.Memory{})
		assert.Equal(t, "user: hi\nassistant: hello\n", text)
	})

	t.Run("with tool cache", func(t *testing.T) {
		mem := graph.Memory{memToolCache: []any{
			map[string]any{"tool": "get_products", "description": "Listed all products."},
		}}
		text := conversationText(messages, mem)
		assert.True(t, strings.HasPrefix(text, "user: hi\nassistant: hello\n"))
		assert.Contains(t, text, "assistant:\n### Tools Used Before Responding to Customer\n\n* get_products: Listed all products.\n")
	})
}

func TestPromptMessages(t *testing.T) {
	msgs := promptMessages("system prompt")
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleSystem, msgs[0].Role)
	assert.Equal(t, "system prompt", msgs[0].Content)
	assert.Equal(t, models.RoleUser, msgs[1].Role)
	assert.Equal(t, llm.DefaultUserTurn, msgs[1].Content)
}

// staticChat answers every completion with the same content and records the
// requests it received.
type staticChat struct {
	mu       sync.Mutex
	content  string
	err      error
	requests []openai.ChatCompletionRequest
}

func (c *staticChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		return openai.ChatCompletionResponse{}, c.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: c.content}},
		},
	}, nil
}

func (c *staticChat) requestCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

func (c *staticChat) lastRequest(t *testing.T) openai.ChatCompletionRequest {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.requests)
	return c.requests[len(c.requests)-1]
}

// systemPrompt extracts the system message of a recorded request.
func systemPrompt(t *testing.T, req openai.ChatCompletionRequest) string {
	t.Helper()
	require.NotEmpty(t, req.Messages)
	require.Equal(t, "system", req.Messages[0].Role)
	return req.Messages[0].Content
}

// scriptRule matches a completion request by fragments of its system prompt.
// Rules are evaluated in order; the first rule whose fragments all appear
// answers the request.
type scriptRule struct {
	contains []string
	reply    string
}

// scriptedChat scripts a whole traversal's completions. Matching on prompt
// content rather than call order keeps the script stable while sibling
// branches run concurrently.
type scriptedChat struct {
	mu       sync.Mutex
	rules    []scriptRule
	requests []openai.ChatCompletionRequest
}

func (c *scriptedChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)

	if len(req.Messages) == 0 {
		return openai.ChatCompletionResponse{}, errors.New("request without messages")
	}
	system := req.Messages[0].Content
	for _, rule := range c.rules {
		matched := true
		for _, fragment := range rule.contains {
			if !strings.Contains(system, fragment) {
				matched = false
				break
			}
		}
		if matched {
			return openai.ChatCompletionResponse{
				Choices: []openai.ChatCompletionChoice{
					{Message: openai.ChatCompletionMessage{Content: rule.reply}},
				},
			}, nil
		}
	}
	return openai.ChatCompletionResponse{}, fmt.Errorf("no scripted reply for prompt: %.120s", system)
}

func (c *scriptedChat) prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.requests))
	for _, req := range c.requests {
		if len(req.Messages) > 0 {
			out = append(out, req.Messages[0].Content)
		}
	}
	return out
}

// newStaticLLM wraps a canned completion into a client.
func newStaticLLM(content string) (*llm.Client, *staticChat) {
	chat := &staticChat{content: content}
	return llm.NewWithChatClient(chat, "test-model"), chat
}

// collectResults returns an emit function that appends into the returned
// slice. Process is synchronous, so no locking is needed.
func collectResults() (graph.EmitFunc, *[]graph.Result) {
	results := &[]graph.Result{}
	return func(r graph.Result) { *results = append(*results, r) }, results
}

// newToolRegistry builds the canned storefront tools the node tests run
// against.
func newToolRegistry() *tools.Registry {
	getProducts := tools.NewFuncTool(
		"get_products",
		"Retrieves all of the products sold at the store.",
		nil,
		func(context.Context, *session.Session, map[string]any) (string, error) {
			return `{"101": {"product_title": "Margherita Pizza"}}`, nil
		})
	getDetails := tools.NewFuncTool(
		"get_product_details",
		"Retrieves the details of a product.",
		[]tools.Parameter{{Name: "product_id", Description: "product_id (int): The ID of the product."}},
		func(_ context.Context, _ *session.Session, params map[string]any) (string, error) {
			return fmt.Sprintf(`{"product_id": %v, "product_title": "Margherita Pizza"}`, params["product_id"]), nil
		})
	getWeather := tools.NewFuncTool(
		"get_current_weather",
		"Retrieves the current weather for a city.",
		[]tools.Parameter{{Name: "city", Description: "city (string): The city to get the weather for."}},
		func(context.Context, *session.Session, map[string]any) (string, error) {
			return "sunny", nil
		})
	return tools.NewRegistry(getProducts, getDetails, getWeather)
}

func testMessages() []models.Message {
	return []models.Message{{Role: models.RoleUser, Content: "what pizzas do you have?"}}
}
