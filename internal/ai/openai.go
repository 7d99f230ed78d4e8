package ai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// Compile-time interface check.
var _ Client = (*OpenAIClient)(nil)

// OpenAIClient implements Client against any OpenAI-compatible Chat
// Completions endpoint (OpenAI, DashScope, DeepSeek, ...).
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates an OpenAIClient. An empty BaseURL keeps the
// go-openai default (api.openai.com).
func NewOpenAIClient(cfg ProviderConfig) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

// Complete generates text with the Chat Completions API.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	slog.Debug("calling OpenAI-compatible API", "model", c.model)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai complete: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai complete: no choices returned: %w", ErrEmptyCompletion)
	}

	text, err := cleanCompletion(resp.Choices[0].Message.Content)
	if err != nil {
		return "", fmt.Errorf("openai complete: %w", err)
	}
	return text, nil
}
