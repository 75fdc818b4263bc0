// Package agent wires the dialogue collaborator on top of ADK agents.
package agent

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"github.com/emberworks/dramatis/internal/dialogue"
	"github.com/emberworks/dramatis/internal/prompt"
	"github.com/emberworks/dramatis/internal/utils"
)

const (
	generatorAppName = "dramatis_scene"
	generatorUserID  = "scene_director"
)

const actorInstruction = `You are the performance engine of a narrative scene simulator. Each request fully describes one character and one moment; play that character for exactly one turn.
Rules:
- Stay strictly inside the character described in the request.
- Never speak for other characters, never describe their inner thoughts.
- Return a valid JSON object matching the output schema, nothing else.`

const interjectorInstruction = `You decide whether a listening character interrupts a conversation, and with what words. Interruptions are rare and cost social capital; only interject when the described character truly could not stay quiet.
Return a valid JSON object matching the output schema, nothing else.`

const reflectorInstruction = `You are a character processing what just happened in a scene. Judge honestly how the events changed their view of each other participant. Small moments deserve small deltas; betrayals and rescues deserve large ones.
Return a valid JSON object matching the output schema, nothing else.`

// LLMGenerator produces turns, interjections, and reflections through three
// single-purpose ADK agents sharing one in-memory session service. Each call
// runs in a fresh session; all continuity lives in the prompt.
type LLMGenerator struct {
	actor       *runner.Runner
	interjector *runner.Runner
	reflector   *runner.Runner
	chronicler  *runner.Runner

	builder        *prompt.Builder
	sessionService session.Service
	counter        uint64
}

// NewLLMGenerator builds the generator on the given chat model.
func NewLLMGenerator(ctx context.Context, llm model.LLM) (*LLMGenerator, error) {
	if llm == nil {
		return nil, fmt.Errorf("llm model is required")
	}

	sessionService := session.InMemoryService()
	g := &LLMGenerator{
		builder:        prompt.NewBuilder(),
		sessionService: sessionService,
	}

	var err error
	if g.actor, err = newRunner(llm, sessionService, "scene_actor",
		"performs one character turn", actorInstruction, dialogue.TurnOutputSchema()); err != nil {
		return nil, err
	}
	if g.interjector, err = newRunner(llm, sessionService, "scene_interjector",
		"decides whether a listener interrupts", interjectorInstruction, dialogue.InterjectionOutputSchema()); err != nil {
		return nil, err
	}
	if g.reflector, err = newRunner(llm, sessionService, "scene_reflector",
		"reflects on a finished scene", reflectorInstruction, dialogue.ReflectionOutputSchema()); err != nil {
		return nil, err
	}
	if g.chronicler, err = newRunner(llm, sessionService, "scene_chronicler",
		"summarizes a beat transcript", chroniclerInstruction, chronicleOutputSchema()); err != nil {
		return nil, err
	}
	return g, nil
}

func newRunner(llm model.LLM, sessionService session.Service, name, description, instruction string, schema *genai.Schema) (*runner.Runner, error) {
	llmAgent, err := llmagent.New(llmagent.Config{
		Name:            name,
		Description:     description,
		Model:           llm,
		Instruction:     instruction,
		OutputSchema:    schema,
		IncludeContents: llmagent.IncludeContentsNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s agent: %w", name, err)
	}
	r, err := runner.New(runner.Config{
		AppName:        generatorAppName,
		Agent:          llmAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s runner: %w", name, err)
	}
	return r, nil
}

// Turn asks the model for the speaker's next turn.
func (g *LLMGenerator) Turn(ctx context.Context, tc dialogue.TurnContext) (dialogue.TurnIntent, error) {
	text, err := g.builder.Turn(tc)
	if err != nil {
		return dialogue.TurnIntent{}, err
	}
	raw, err := g.run(ctx, g.actor, "turn", text)
	if err != nil {
		return dialogue.TurnIntent{}, err
	}
	return dialogue.ParseTurnIntent(raw)
}

// Interjection asks the model whether a triggered observer breaks in.
func (g *LLMGenerator) Interjection(ctx context.Context, ic dialogue.InterjectionContext) (dialogue.InterjectionIntent, error) {
	text, err := g.builder.Interjection(ic)
	if err != nil {
		return dialogue.InterjectionIntent{}, err
	}
	raw, err := g.run(ctx, g.interjector, "interject", text)
	if err != nil {
		return dialogue.InterjectionIntent{}, err
	}
	return dialogue.ParseInterjectionIntent(raw)
}

// Reflection asks the model for an agent's beat-end reflection.
func (g *LLMGenerator) Reflection(ctx context.Context, rc dialogue.ReflectionContext) (dialogue.Reflection, error) {
	text, err := g.builder.Reflection(rc)
	if err != nil {
		return dialogue.Reflection{}, err
	}
	raw, err := g.run(ctx, g.reflector, "reflect", text)
	if err != nil {
		return dialogue.Reflection{}, err
	}
	return dialogue.ParseReflection(raw)
}

// run executes one request in a throwaway session and returns the final text.
func (g *LLMGenerator) run(ctx context.Context, r *runner.Runner, kind, text string) (string, error) {
	sessionID := fmt.Sprintf("%s-%d", kind, atomic.AddUint64(&g.counter, 1))
	if _, err := g.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   generatorAppName,
		UserID:    generatorUserID,
		SessionID: sessionID,
	}); err != nil {
		if _, getErr := g.sessionService.Get(ctx, &session.GetRequest{
			AppName:   generatorAppName,
			UserID:    generatorUserID,
			SessionID: sessionID,
		}); getErr != nil {
			return "", fmt.Errorf("failed to create %s session: %w", kind, err)
		}
	}
	msg := genai.NewContentFromText(text, "user")
	events := r.Run(ctx, generatorUserID, sessionID, msg, agent.RunConfig{
		StreamingMode: agent.StreamingModeNone,
	})

	var last string
	for event, err := range events {
		if err != nil {
			return "", err
		}
		if event == nil || event.Content == nil {
			continue
		}
		if event.Author == "user" {
			continue
		}
		text := strings.TrimSpace(utils.ExtractContentText(event.Content))
		if text == "" {
			continue
		}
		last = text
		if event.IsFinalResponse() {
			break
		}
	}
	if last == "" {
		return "", fmt.Errorf("empty %s response", kind)
	}
	return last, nil
}
