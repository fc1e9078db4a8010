package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneMessages(t *testing.T) {
	original := []Message{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi there"},
	}

	cloned := CloneMessages(original)
	require.Equal(t, original, cloned)

	// Appending to the clone must not grow into the original's backing array.
	cloned = append(cloned, Message{Role: RoleUser, Content: "one more"})
	cloned[0].Content = "changed"
	assert.Equal(t, "hello", original[0].Content)
	assert.Len(t, original, 2)
}

func TestActionDecoding(t *testing.T) {
	t.Run("tool action", func(t *testing.T) {
		var a Action
		err := json.Unmarshal([]byte(`{"type":"tool","details":{"tool":"get_products","parameters":{"product_id":5}}}`), &a)
		require.NoError(t, err)
		assert.False(t, a.IsZero())
		assert.Equal(t, ActionTypeTool, a.Type)
		assert.Equal(t, "get_products", a.Details.Tool)
		assert.Equal(t, float64(5), a.Details.Parameters["product_id"])
	})

	t.Run("absent action is zero", func(t *testing.T) {
		var a Action
		assert.True(t, a.IsZero())
	})
}
