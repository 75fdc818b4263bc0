package models

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// NewGrokModel creates a chat model backed by x.ai's OpenAI-compatible API.
// The modelName picks the Grok variant, e.g. "grok-3-mini".
func NewGrokModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (model.LLM, error) {
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
		option.WithBaseURL("https://api.x.ai/v1"),
	)

	return &openaiModel{
		name:               modelName,
		client:             &client,
		versionHeaderValue: userAgentFor("grok"),
	}, nil
}
