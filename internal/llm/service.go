package llm

import (
	"context"
)

// Service defines the interface for language model operations. The model is
// treated as a pure text-in/text-out collaborator; any structure in the
// output is the caller's concern.
type Service interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config represents language model client configuration
type Config struct {
	Provider string `json:"provider"` // gemini, openai, anthropic, ollama
	Model    string `json:"model"`
	APIKey   string `json:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
}

// Provider constants for supported backends
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Default models per provider
const (
	ModelGeminiFlash = "gemini-1.5-flash"
	ModelGPT4oMini   = "gpt-4o-mini"
	ModelClaude      = "claude-3-5-sonnet-latest"
	ModelLlama3      = "llama3"
)
