package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/emberworks/dramatis/internal/dialogue"
)

const chroniclerInstruction = `You are a scene chronicler. Compress a transcript of one scene beat into a short third-person summary.
Keep:
1. Who confronted, accused, defended, or confided in whom
2. Information revealed or denied
3. How the encounter ended
Output requirements:
- Two to three sentences, past tense
- Return a valid JSON object matching the output schema, nothing else`

// Chronicle summarizes a beat transcript for the archive and for beat-end
// reflections.
func (g *LLMGenerator) Chronicle(ctx context.Context, turns []dialogue.TurnView) (string, error) {
	transcript := formatTranscript(turns)
	if transcript == "" {
		return "", nil
	}
	raw, err := g.run(ctx, g.chronicler, "chronicle", transcript)
	if err != nil {
		return "", err
	}
	return parseChronicleJSON(raw)
}

func formatTranscript(turns []dialogue.TurnView) string {
	var sb strings.Builder
	for _, turn := range turns {
		if turn.Content == "" {
			continue
		}
		sb.WriteString(turn.Speaker)
		if turn.Tone != "" {
			sb.WriteString(" (")
			sb.WriteString(turn.Tone)
			sb.WriteString(")")
		}
		sb.WriteString(": ")
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

func chronicleOutputSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {
				Type: genai.TypeString,
			},
		},
		Required: []string{"summary"},
	}
}

// parseChronicleJSON extracts JSON from model output and decodes it.
func parseChronicleJSON(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		clean = clean[start : end+1]
	}
	var out struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return "", fmt.Errorf("failed to parse chronicle json: %w", err)
	}
	summary := strings.TrimSpace(out.Summary)
	if summary == "" {
		return "", fmt.Errorf("missing summary")
	}
	return summary, nil
}
