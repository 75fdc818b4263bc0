// Package prompt renders dialogue contexts into model instructions.
package prompt

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/emberworks/dramatis/internal/dialogue"
	"github.com/emberworks/dramatis/internal/interject"
)

// Builder assembles prompts for the three generation calls a beat makes.
type Builder struct{}

// NewBuilder creates a prompt Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Turn renders the prompt for one speaking turn.
func (b *Builder) Turn(ctx dialogue.TurnContext) (string, error) {
	if ctx.Speaker == "" {
		return "", fmt.Errorf("speaker is required")
	}
	var buf bytes.Buffer
	if err := turnTemplate.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("failed to build turn prompt: %w", err)
	}
	return buf.String(), nil
}

// Interjection renders the prompt asking a triggered observer whether they
// actually break in.
func (b *Builder) Interjection(ctx dialogue.InterjectionContext) (string, error) {
	if ctx.Observer == "" || ctx.Speaker == "" {
		return "", fmt.Errorf("observer and speaker are required")
	}
	var buf bytes.Buffer
	if err := interjectionTemplate.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("failed to build interjection prompt: %w", err)
	}
	return buf.String(), nil
}

// Reflection renders the beat-end reflection prompt for one agent.
func (b *Builder) Reflection(ctx dialogue.ReflectionContext) (string, error) {
	if ctx.Persona.Name == "" {
		return "", fmt.Errorf("persona is required")
	}
	var buf bytes.Buffer
	if err := reflectionTemplate.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("failed to build reflection prompt: %w", err)
	}
	return buf.String(), nil
}

func joinStrings(items []string, sep string) string {
	return strings.Join(items, sep)
}

// describeReason turns a trigger code into prose for the prompt.
func describeReason(reason string) string {
	switch reason {
	case interject.TriggerEmotional:
		return "your feelings are running too high to stay quiet"
	case interject.TriggerDefense:
		return "someone you trust is being attacked"
	case interject.TriggerStress:
		return "it touched a raw nerve"
	case interject.TriggerInfoCorrection:
		return "you know what was just said is not true"
	default:
		return "it demanded a response"
	}
}
