// Package models provides chat-model adapters for the dialogue pipeline.
// Every adapter speaks the OpenAI-compatible chat API and satisfies the ADK
// model.LLM interface, so the scene runner does not care which provider is
// behind it.
package models

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"runtime"
	"strings"

	"github.com/openai/openai-go/v3"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// openaiModel wraps an OpenAI-compatible chat client. Scene dialogue is pure
// text with structured JSON outputs; tool calling is not part of the pipeline.
type openaiModel struct {
	client             *openai.Client
	name               string
	versionHeaderValue string
}

func userAgentFor(provider string) string {
	return fmt.Sprintf("%s-go/%s go/%s",
		provider, "1.0.0", strings.TrimPrefix(runtime.Version(), "go"))
}

func (m *openaiModel) Name() string {
	return m.name
}

func (m *openaiModel) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	m.maybeAppendUserContent(req)

	if req.Config == nil {
		req.Config = &genai.GenerateContentConfig{}
	}
	if req.Config.HTTPOptions == nil {
		req.Config.HTTPOptions = &genai.HTTPOptions{}
	}
	if req.Config.HTTPOptions.Headers == nil {
		req.Config.HTTPOptions.Headers = make(http.Header)
	}
	req.Config.HTTPOptions.Headers.Set("user-agent", m.versionHeaderValue)

	if stream {
		return m.generateStream(ctx, req)
	}

	return func(yield func(*model.LLMResponse, error) bool) {
		resp, err := m.generate(ctx, req)
		yield(resp, err)
	}
}

func (m *openaiModel) generate(ctx context.Context, req *model.LLMRequest) (*model.LLMResponse, error) {
	params := buildChatParams(req, m.name)

	resp, err := m.client.Chat.Completions.New(ctx, *params)
	if err != nil {
		slog.Error("failed to call llm API", "model", m.name, "error", err.Error())
		return nil, fmt.Errorf("failed to call chat API: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return &model.LLMResponse{}, nil
	}

	message := resp.Choices[0].Message
	content := &genai.Content{
		Role:  string(message.Role),
		Parts: []*genai.Part{},
	}
	if message.Content != "" {
		content.Parts = append(content.Parts, &genai.Part{
			Text: message.Content,
		})
	}

	return &model.LLMResponse{Content: content}, nil
}

func (m *openaiModel) generateStream(ctx context.Context, req *model.LLMRequest) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		params := buildChatParams(req, m.name)

		stream := m.client.Chat.Completions.NewStreaming(ctx, *params)
		defer func() {
			if err := stream.Close(); err != nil {
				slog.Error("failed to close stream", "error", err.Error())
			}
		}()

		var fullText strings.Builder
		sentFinal := false
		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			choice := chunk.Choices[0]
			isFinished := choice.FinishReason != ""

			if choice.Delta.Content != "" {
				fullText.WriteString(choice.Delta.Content)
				llmResp := &model.LLMResponse{
					Content: &genai.Content{
						Role: "model",
						Parts: []*genai.Part{
							{Text: choice.Delta.Content},
						},
					},
					Partial:      true,
					TurnComplete: isFinished,
				}
				if llmResp.TurnComplete {
					sentFinal = true
				}
				if !yield(llmResp, nil) {
					return
				}
			}

			if isFinished && !sentFinal {
				text := strings.TrimSpace(fullText.String())
				var parts []*genai.Part
				if text != "" {
					parts = append(parts, &genai.Part{Text: text})
				}
				llmResp := &model.LLMResponse{
					Content: &genai.Content{
						Role:  "model",
						Parts: parts,
					},
					Partial:      false,
					TurnComplete: true,
				}
				sentFinal = true
				if !yield(llmResp, nil) {
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				yield(nil, fmt.Errorf("context cancelled: %w", err))
				return
			}
			slog.Error("failed to stream call llm API", "error", err.Error())
			yield(nil, fmt.Errorf("stream error: %w", err))
		}
	}
}

// maybeAppendUserContent guarantees the conversation ends on a user message,
// which OpenAI-compatible APIs require.
func (m *openaiModel) maybeAppendUserContent(req *model.LLMRequest) {
	if len(req.Contents) == 0 {
		req.Contents = append(req.Contents, genai.NewContentFromText("Handle the requests as specified in the System Instruction.", "user"))
	}

	if last := req.Contents[len(req.Contents)-1]; last != nil && last.Role != "user" {
		req.Contents = append(req.Contents, genai.NewContentFromText("Continue processing previous requests as instructed.", "user"))
	}
}
