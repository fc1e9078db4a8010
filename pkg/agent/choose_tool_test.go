package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/8090-inc/xrx-sample-apps/pkg/graph"
)

func TestChooseTool_Process(t *testing.T) {
	t.Run("emits the chosen tool", func(t *testing.T) {
		client, chat := newStaticLLM(`{"reason": "the customer wants the menu", "tool": "get_products"}`)
		node := NewChooseTool(client, newToolRegistry())
		emit, results := collectResults()

		err := node.Process(context.Background(), nil, testMessages(), graph.Input{Memory: graph.Memory{}}, emit)
		require.NoError(t, err)

		require.Len(t, *results, 1)
		result := (*results)[0]
		assert.Equal(t, NodeChooseTool, result.Node())
		assert.Equal(t, "get_products", result.Output())
		assert.Equal(t, "the customer wants the menu", result.Reason())

		prompt := systemPrompt(t, chat.lastRequest(t))
		assert.Contains(t, prompt, "### get_products\nRetrieves all of the products sold at the store.")
		assert.Contains(t, prompt, "- product_id (int): The ID of the product.")
		assert.Contains(t, prompt, "user: what pizzas do you have?\n")
	})

	t.Run("missing tool key fails the node", func(t *testing.T) {
		client, _ := newStaticLLM(`{"reason": "no tool applies"}`)
		node := NewChooseTool(client, newToolRegistry())
		emit, results := collectResults()

		err := node.Process(context.Background(), nil, testMessages(), graph.Input{}, emit)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing tool")
		assert.Empty(t, *results)
	})

	t.Run("missing reason key fails the node", func(t *testing.T) {
		client, _ := newStaticLLM(`{"tool": "get_products"}`)
		node := NewChooseTool(client, newToolRegistry())
		emit, _ := collectResults()

		err := node.Process(context.Background(), nil, testMessages(), graph.Input{}, emit)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing reason")
	})
}

func TestChooseTool_Successors(t *testing.T) {
	client, _ := newStaticLLM(`{}`)
	node := NewChooseTool(client, newToolRegistry())

	t.Run("tool chosen", func(t *testing.T) {
		successors, err := node.Successors(graph.Result{
			"node": NodeChooseTool, "output": "get_products", "reason": "menu", "memory": graph.Memory{},
		})
		require.NoError(t, err)
		require.Len(t, successors, 1)
		assert.Equal(t, NodeIdentifyToolParams, successors[0].ID)
		assert.Equal(t, "get_products", successors[0].Input.Tool)
		assert.Equal(t, "menu", successors[0].Input.Reason)
	})

	t.Run("call syntax is stripped to the tool name", func(t *testing.T) {
		successors, err := node.Successors(graph.Result{
			"node": NodeChooseTool, "output": "get_product_details(101)", "memory": graph.Memory{},
		})
		require.NoError(t, err)
		require.Len(t, successors, 1)
		assert.Equal(t, NodeIdentifyToolParams, successors[0].ID)
		assert.Equal(t, "get_product_details", successors[0].Input.Tool)
	})

	t.Run("blank choice goes to the customer response", func(t *testing.T) {
		successors, err := node.Successors(graph.Result{
			"node": NodeChooseTool, "output": "", "reason": "nothing to call", "memory": graph.Memory{},
		})
		require.NoError(t, err)
		require.Len(t, successors, 1)
		assert.Equal(t, NodeCustomerResponse, successors[0].ID)
		assert.Equal(t, "nothing to call", successors[0].Input.Reason)
		assert.Equal(t, "", successors[0].Input.Tool)
	})
}
