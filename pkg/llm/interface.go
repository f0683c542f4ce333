package llm

import "context"

// Oracle is the interface for the text-classification LLM backend.
// Implement this interface to add new providers (OpenAI, Ollama, etc.).
// All parsing and retry robustness lives in the classify engine; an Oracle
// just runs one prompt and returns the raw model output.
type Oracle interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ProviderType represents the LLM provider type
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)
