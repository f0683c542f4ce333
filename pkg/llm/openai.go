package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const openAIDefaultModel = "gpt-4o-mini"

// OpenAIOracle implements Oracle using the official OpenAI SDK.
// The client is built once per process lifetime and injected everywhere
// the classify engine needs it.
type OpenAIOracle struct {
	model  string
	client openai.Client
}

// NewOpenAIOracle creates a new OpenAI-backed oracle
func NewOpenAIOracle(apiKey, model string) *OpenAIOracle {
	if model == "" {
		model = openAIDefaultModel
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
		// The classify engine owns retry policy; don't let the SDK retry too.
		option.WithMaxRetries(0),
	)

	return &OpenAIOracle{
		model:  model,
		client: client,
	}
}

// Complete runs one chat completion and returns the raw model output
func (o *OpenAIOracle) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(0.3),
		// Large batches of 20 emails need ~1500-2000 output tokens
		MaxTokens: openai.Int(2000),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openai API error (%d): %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
