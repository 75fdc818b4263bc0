package models

import (
	"strings"

	"github.com/openai/openai-go/v3"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// buildChatParams converts an ADK request into OpenAI chat parameters.
func buildChatParams(req *model.LLMRequest, fallbackModel string) *openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: req.Model,
	}
	if req.Model == "" {
		params.Model = fallbackModel
	}

	messages := convertContentsToMessages(req.Contents)
	if len(messages) > 0 {
		params.Messages = messages
	}

	if req.Config != nil {
		if req.Config.Temperature != nil {
			params.Temperature = openai.Float(float64(*req.Config.Temperature))
		}
		if req.Config.MaxOutputTokens > 0 {
			params.MaxTokens = openai.Int(int64(req.Config.MaxOutputTokens))
		}
		if req.Config.TopP != nil {
			params.TopP = openai.Float(float64(*req.Config.TopP))
		}
		// A genai response schema does not translate directly; JSON mode
		// plus the schema spelled out in the prompt covers it.
		if req.Config.ResponseMIMEType == "application/json" {
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
			}
		}
	}

	return &params
}

// convertContentsToMessages flattens genai contents into chat messages. Only
// text parts carry dialogue; anything else is dropped.
func convertContentsToMessages(contents []*genai.Content) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	for _, content := range contents {
		if content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range content.Parts {
			if part != nil && part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
		text := sb.String()
		if text == "" {
			continue
		}
		switch content.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(text))
		case "model", "assistant":
			messages = append(messages, openai.AssistantMessage(text))
		default:
			messages = append(messages, openai.UserMessage(text))
		}
	}
	return messages
}
