// Package llm calls an OpenAI-compatible chat completions endpoint and
// decodes the model's JSON replies.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
	openai "github.com/sashabaranov/go-openai"

	"github.com/8090-inc/xrx-sample-apps/pkg/models"
)

// DefaultUserTurn is appended as the final user message of every completion
// request so the model answers with its next JSON turn rather than
// continuing the transcript.
const DefaultUserTurn = "<awaiting your next JSON response>"

// Temperatures used by the reasoning nodes.
const (
	DefaultTemperature float32 = 0.9
	FocusedTemperature float32 = 0.7
)

// ChatClient captures the subset of the go-openai client the reasoning
// agent uses. Tests substitute a fake.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client issues JSON-mode chat completions against a configured model.
type Client struct {
	chat  ChatClient
	model string
}

// New builds a client for an OpenAI-compatible API. baseURL may be empty to
// use the provider default.
func New(apiKey, baseURL, modelID string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("llm api key is required")
	}
	if modelID == "" {
		return nil, errors.New("llm model id is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{chat: openai.NewClientWithConfig(cfg), model: modelID}, nil
}

// NewWithChatClient builds a client around an existing ChatClient, used by
// tests to avoid network calls.
func NewWithChatClient(chat ChatClient, modelID string) *Client {
	return &Client{chat: chat, model: modelID}
}

// Complete sends the messages to the model in JSON-object mode and returns
// the raw text of the first choice.
func (c *Client) Complete(ctx context.Context, messages []models.Message, temperature float32) (string, error) {
	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}
	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    chatMessages,
		Temperature: temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteJSON sends the messages and decodes the reply as a JSON object,
// repairing near-JSON output before giving up.
func (c *Client) CompleteJSON(ctx context.Context, messages []models.Message, temperature float32) (map[string]any, error) {
	content, err := c.Complete(ctx, messages, temperature)
	if err != nil {
		return nil, err
	}
	return DecodeObject(content)
}

// DecodeObject parses an LLM reply as a JSON object. Models occasionally
// emit unquoted keys or trailing commas; those replies are repaired and
// parsed again before the error is surfaced.
func DecodeObject(content string) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(content)
		if repairErr != nil {
			return nil, fmt.Errorf("decode llm response: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &out); err != nil {
			return nil, fmt.Errorf("decode repaired llm response: %w", err)
		}
	}
	return out, nil
}
