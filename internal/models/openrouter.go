package models

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// NewOpenRouterModel creates a chat model routed through OpenRouter, for
// running scenes against models x.ai does not serve.
func NewOpenRouterModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (model.LLM, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL("https://openrouter.ai/api/v1"),
	)

	return &openaiModel{
		name:               fmt.Sprintf("openrouter/%s", modelName),
		client:             &client,
		versionHeaderValue: userAgentFor("openrouter"),
	}, nil
}
