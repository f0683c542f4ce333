package llm

import "fmt"

// Config holds LLM provider configuration
type Config struct {
	Provider ProviderType // "openai" or "ollama"

	// OpenAI config
	OpenAIAPIKey string
	OpenAIModel  string // e.g., "gpt-4o-mini"

	// Ollama config
	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3", "mistral"
}

// NewOracle creates an Oracle based on the config.
// This is the factory function - switch provider by changing config.Provider.
func NewOracle(cfg Config) (Oracle, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the OpenAI provider")
		}
		return NewOpenAIOracle(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil

	case ProviderOllama:
		return NewOllamaOracle(cfg.OllamaBaseURL, cfg.OllamaModel), nil

	default:
		// Default to OpenAI if an API key is available, otherwise Ollama
		if cfg.OpenAIAPIKey != "" {
			return NewOpenAIOracle(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
		}
		return NewOllamaOracle(cfg.OllamaBaseURL, cfg.OllamaModel), nil
	}
}
