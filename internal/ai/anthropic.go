package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Compile-time interface check.
var _ Client = (*AnthropicClient)(nil)

const anthropicAPIURL = "https://api.anthropic.com/v1/messages"

// AnthropicClient implements Client using the Anthropic Messages API.
type AnthropicClient struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

// NewAnthropicClient creates an AnthropicClient. BaseURL, when set, replaces
// the full Messages API URL.
func NewAnthropicClient(cfg ProviderConfig) *AnthropicClient {
	url := anthropicAPIURL
	if cfg.BaseURL != "" {
		url = cfg.BaseURL
	}
	return &AnthropicClient{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		url:    url,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// anthropicRequest is the request body for the Anthropic Messages API.
type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

// anthropicMessage is a single message in the Anthropic request.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the response body from the Anthropic Messages API.
type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete makes an HTTP request to the Anthropic Messages API and returns
// the text content from the first content block.
func (c *AnthropicClient) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	reqBody := anthropicRequest{
		Model:     c.model,
		MaxTokens: 1024,
		System:    systemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: userMessage},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("anthropic complete: marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("anthropic complete: creating request: %w", err)
	}

	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("content-type", "application/json")

	slog.Debug("calling Anthropic API", "model", c.model)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic complete: sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("anthropic complete: reading response body: %w", err)
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("anthropic complete: parsing response (status %d): %w", resp.StatusCode, err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("anthropic complete: API error (status %d): %s", resp.StatusCode, apiResp.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic complete: unexpected status code: %d", resp.StatusCode)
	}

	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("anthropic complete: no content blocks returned: %w", ErrEmptyCompletion)
	}

	text, err := cleanCompletion(apiResp.Content[0].Text)
	if err != nil {
		return "", fmt.Errorf("anthropic complete: %w", err)
	}
	return text, nil
}
