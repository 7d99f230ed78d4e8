package ai

import "time"

// ProviderConfig holds the configuration needed to create a Client.
type ProviderConfig struct {
	Provider string // "openai" | "anthropic"
	APIKey   string
	BaseURL  string // OpenAI-compatible endpoint; empty selects the provider default
	Model    string
	Timeout  time.Duration
}

// defaultTimeout bounds a single completion when ProviderConfig.Timeout is
// unset.
const defaultTimeout = 60 * time.Second
