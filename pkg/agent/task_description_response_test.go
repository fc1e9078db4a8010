package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/8090-inc/xrx-sample-apps/pkg/graph"
	"github.com/8090-inc/xrx-sample-apps/pkg/llm"
)

func TestTaskDescriptionResponse_Process(t *testing.T) {
	t.Run("speaks a waiting message on the first tool call", func(t *testing.T) {
		client, chat := newStaticLLM(`{"reason": "keeping it casual", "response": "Let me check on that"}`)
		node := NewTaskDescriptionResponse(client, newToolRegistry())
		emit, results := collectResults()

		mem := graph.Memory{memTaskDescription: true}
		err := node.Process(context.Background(), nil, testMessages(), graph.Input{Memory: mem}, emit)
		require.NoError(t, err)

		require.Len(t, *results, 1)
		result := (*results)[0]
		assert.Equal(t, NodeTaskDescription, result.Node())
		assert.Equal(t, "Let me check on that", result.Output())
		assert.Equal(t, "keeping it casual", result.Reason())

		req := chat.lastRequest(t)
		assert.InDelta(t, llm.FocusedTemperature, req.Temperature, 0.001)
		prompt := systemPrompt(t, req)
		assert.Contains(t, prompt, "get_products()")
		assert.Contains(t, prompt, "user: what pizzas do you have?\n")
	})

	t.Run("stays silent after the first tool call", func(t *testing.T) {
		client, chat := newStaticLLM(`unused`)
		node := NewTaskDescriptionResponse(client, newToolRegistry())
		emit, results := collectResults()

		mem := graph.Memory{memTaskDescription: false}
		err := node.Process(context.Background(), nil, testMessages(), graph.Input{Memory: mem}, emit)
		require.NoError(t, err)
		assert.Empty(t, *results)
		assert.Zero(t, chat.requestCount())
	})

	t.Run("stays silent without the flag", func(t *testing.T) {
		client, chat := newStaticLLM(`unused`)
		node := NewTaskDescriptionResponse(client, newToolRegistry())
		emit, results := collectResults()

		err := node.Process(context.Background(), nil, testMessages(), graph.Input{Memory: graph.Memory{}}, emit)
		require.NoError(t, err)
		assert.Empty(t, *results)
		assert.Zero(t, chat.requestCount())
	})

	t.Run("missing response key fails the node", func(t *testing.T) {
		client, _ := newStaticLLM(`{"reason": "r"}`)
		node := NewTaskDescriptionResponse(client, newToolRegistry())
		emit, _ := collectResults()

		err := node.Process(context.Background(), nil, testMessages(), graph.Input{Memory: graph.Memory{memTaskDescription: true}}, emit)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing response")
	})
}

func TestTaskDescriptionResponse_Successors(t *testing.T) {
	client, _ := newStaticLLM(`{}`)
	node := NewTaskDescriptionResponse(client, newToolRegistry())
	successors, err := node.Successors(graph.Result{"node": NodeTaskDescription})
	require.NoError(t, err)
	assert.Empty(t, successors)
}
