package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Client is the interface that all language model providers must implement.
type Client interface {
	// Complete sends a two-role prompt (system instructions plus one user
	// message) and returns the generated text.
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// ErrEmptyCompletion is returned when the provider answers without any text.
var ErrEmptyCompletion = errors.New("empty completion")

// NewClient creates the appropriate provider based on config.
func NewClient(cfg ProviderConfig) (Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg), nil
	case "anthropic":
		return NewAnthropicClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}

// cleanCompletion trims surrounding whitespace and rejects empty output.
func cleanCompletion(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
