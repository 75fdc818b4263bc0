package scene

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/emberworks/dramatis/internal/conversation"
	"github.com/emberworks/dramatis/internal/dialogue"
	"github.com/emberworks/dramatis/internal/interject"
	"github.com/emberworks/dramatis/internal/personality"
	"github.com/emberworks/dramatis/internal/relationship"
)

// fakeGenerator scripts the collaborator per call kind. Nil functions fall
// back to harmless defaults.
type fakeGenerator struct {
	turnFn      func(dialogue.TurnContext) (dialogue.TurnIntent, error)
	interjectFn func(dialogue.InterjectionContext) (dialogue.InterjectionIntent, error)
	reflectFn   func(dialogue.ReflectionContext) (dialogue.Reflection, error)
	chronicleFn func([]dialogue.TurnView) (string, error)
}

func (f *fakeGenerator) Turn(ctx context.Context, tc dialogue.TurnContext) (dialogue.TurnIntent, error) {
	if f.turnFn == nil {
		return dialogue.TurnIntent{Content: "mm-hm", Tone: "neutral"}, nil
	}
	return f.turnFn(tc)
}

func (f *fakeGenerator) Interjection(ctx context.Context, ic dialogue.InterjectionContext) (dialogue.InterjectionIntent, error) {
	if f.interjectFn == nil {
		return dialogue.InterjectionIntent{}, nil
	}
	return f.interjectFn(ic)
}

func (f *fakeGenerator) Reflection(ctx context.Context, rc dialogue.ReflectionContext) (dialogue.Reflection, error) {
	if f.reflectFn == nil {
		return dialogue.Reflection{}, nil
	}
	return f.reflectFn(rc)
}

func (f *fakeGenerator) Chronicle(ctx context.Context, turns []dialogue.TurnView) (string, error) {
	if f.chronicleFn == nil {
		return "a quiet exchange", nil
	}
	return f.chronicleFn(turns)
}

// fakeTranscript collects everything flushed through AppendBeat.
type fakeTranscript struct {
	turns []conversation.Turn
}

func (f *fakeTranscript) AppendBeat(ctx context.Context, sceneTitle string, beatNumber int, turns []conversation.Turn) error {
	f.turns = append(f.turns, turns...)
	return nil
}

func testCast(t *testing.T, names ...string) *Cast {
	t.Helper()
	states := make([]*personality.State, 0, len(names))
	for _, name := range names {
		states = append(states, personality.NewState(name, personality.GenerateNature("loyal_quiet")))
	}
	cast, err := NewCast(states)
	if err != nil {
		t.Fatalf("new cast: %v", err)
	}
	return cast
}

func TestBeatRunsToForcedEnd(t *testing.T) {
	cast := testCast(t, "Alice", "Bob")
	director, err := NewDirector(cast, &fakeGenerator{}, Options{})
	if err != nil {
		t.Fatalf("new director: %v", err)
	}

	result, err := director.RunBeat(context.Background(), Scene{Title: "Evening"}, 1, Beat{
		Situation:    "two neighbors on a porch",
		Participants: []string{"Alice", "Bob"},
	})
	if err != nil {
		t.Fatalf("run beat: %v", err)
	}

	if result.EndReason != conversation.EndMaximumRounds {
		t.Fatalf("expected forced end, got %q", result.EndReason)
	}
	// Soft round completion: two speakers, one turn each per round, 7 rounds.
	if len(result.Turns) != 14 {
		t.Fatalf("expected 14 turns, got %d", len(result.Turns))
	}
	if result.Stats.RoundsCompleted != 7 {
		t.Fatalf("expected 7 completed rounds, got %d", result.Stats.RoundsCompleted)
	}
	if result.Summary != "a quiet exchange" {
		t.Fatalf("unexpected summary %q", result.Summary)
	}
}

func TestMajorityExitEndsBeatEarly(t *testing.T) {
	cast := testCast(t, "Alice", "Bob")
	gen := &fakeGenerator{
		turnFn: func(tc dialogue.TurnContext) (dialogue.TurnIntent, error) {
			return dialogue.TurnIntent{
				Content:   "time to go",
				Tone:      "tired",
				WantsExit: tc.CanExit,
			}, nil
		},
	}
	director, err := NewDirector(cast, gen, Options{})
	if err != nil {
		t.Fatalf("new director: %v", err)
	}

	result, err := director.RunBeat(context.Background(), Scene{Title: "Evening"}, 1, Beat{
		Situation:    "winding down",
		Participants: []string{"Alice", "Bob"},
	})
	if err != nil {
		t.Fatalf("run beat: %v", err)
	}
	if result.EndReason != conversation.EndMajorityExit {
		t.Fatalf("expected majority exit, got %q", result.EndReason)
	}
	// Rounds 1-3 are outside the window; both request exit in round 4.
	if len(result.Turns) != 8 {
		t.Fatalf("expected 8 turns, got %d", len(result.Turns))
	}
}

func TestGeneratorFailureDegradesToSkips(t *testing.T) {
	cast := testCast(t, "Alice", "Bob")
	gen := &fakeGenerator{
		turnFn: func(tc dialogue.TurnContext) (dialogue.TurnIntent, error) {
			return dialogue.TurnIntent{}, fmt.Errorf("model unavailable")
		},
		chronicleFn: func(turns []dialogue.TurnView) (string, error) {
			return "", fmt.Errorf("model unavailable")
		},
	}
	director, err := NewDirector(cast, gen, Options{})
	if err != nil {
		t.Fatalf("new director: %v", err)
	}

	result, err := director.RunBeat(context.Background(), Scene{Title: "Outage"}, 1, Beat{
		Situation:    "silence",
		Participants: []string{"Alice", "Bob"},
	})
	if err != nil {
		t.Fatalf("a failing collaborator must never abort the beat: %v", err)
	}
	if result.EndReason != conversation.EndMaximumRounds {
		t.Fatalf("expected forced end, got %q", result.EndReason)
	}
	for _, turn := range result.Turns {
		if !turn.Skipped {
			t.Fatalf("expected every turn skipped, got %+v", turn)
		}
	}
	if result.Summary != "" {
		t.Fatalf("failed chronicle should leave no summary, got %q", result.Summary)
	}
}

func TestReflectionEstablishesRelationshipsAndSpreadsGossip(t *testing.T) {
	cast := testCast(t, "Alice", "Bob", "Charlie")
	gen := &fakeGenerator{
		reflectFn: func(rc dialogue.ReflectionContext) (dialogue.Reflection, error) {
			if rc.Persona.Name != "Alice" {
				return dialogue.Reflection{}, nil
			}
			return dialogue.Reflection{
				Relationships: map[string]dialogue.RelationshipDelta{
					"Bob": {TrustDelta: 3, AffectionDelta: 2, Memory: "he carried the water without being asked"},
				},
				GossipWorthy: []dialogue.GossipItem{
					{About: "Bob", Text: "Bob stayed to help after dark"},
				},
				EmotionalState: "grateful",
				ConfidenceHint: 1,
			}, nil
		},
	}
	director, err := NewDirector(cast, gen, Options{
		Limits: conversation.Limits{ForcedExitRound: 2},
	})
	if err != nil {
		t.Fatalf("new director: %v", err)
	}

	_, err = director.RunBeat(context.Background(), Scene{Title: "The Well"}, 1, Beat{
		Situation:    "hauling water together",
		Participants: []string{"Alice", "Bob"},
	})
	if err != nil {
		t.Fatalf("run beat: %v", err)
	}

	rel, err := cast.Matrix.Get("Alice", "Bob")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rel.Status != relationship.StatusKnown || rel.Trust != 8 || rel.Affection != 7 {
		t.Fatalf("first meeting not established from deltas: %+v", rel)
	}
	if rel.Label != "trusted ally" {
		t.Fatalf("unexpected label %q", rel.Label)
	}
	if len(rel.History()) != 1 || !strings.Contains(rel.History()[0], "carried the water") {
		t.Fatalf("memory not recorded: %v", rel.History())
	}

	// The reverse direction is Known too, at neutral.
	back, err := cast.Matrix.Get("Bob", "Alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if back.Status != relationship.StatusKnown || back.Trust != 5 {
		t.Fatalf("reverse direction should be neutral Known: %+v", back)
	}

	// Charlie was absent and hears the gossip.
	heard, err := cast.Matrix.Context("Charlie", "Bob")
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	if len(heard.Gossip) != 1 || !strings.Contains(heard.Gossip[0], "after dark") {
		t.Fatalf("gossip did not reach Charlie: %+v", heard)
	}

	// Alice's own state absorbed the reflection.
	alice, err := cast.Persona("Alice")
	if err != nil {
		t.Fatalf("persona: %v", err)
	}
	if alice.Nurture.EmotionalState != "grateful" {
		t.Fatalf("emotional state not applied: %q", alice.Nurture.EmotionalState)
	}
	// +1 hint and +1 positive experience on the default 5.
	if alice.Nurture.Confidence != 7 {
		t.Fatalf("confidence not applied, got %d", alice.Nurture.Confidence)
	}
	if alice.Nurture.RecentTreatment != "appreciated" {
		t.Fatalf("experience not applied, got %q", alice.Nurture.RecentTreatment)
	}
}

func TestInterjectionConsumesSlotAndIsRecorded(t *testing.T) {
	cast := testCast(t, "Alice", "Bob")
	if err := cast.Matrix.EstablishFirstMeeting("Alice", "Bob", 8, 6, 5, 5); err != nil {
		t.Fatalf("establish: %v", err)
	}
	gen := &fakeGenerator{
		turnFn: func(tc dialogue.TurnContext) (dialogue.TurnIntent, error) {
			if tc.Speaker == "Bob" {
				return dialogue.TurnIntent{Content: "you all left me to fix it alone", Tone: "accusatory"}, nil
			}
			return dialogue.TurnIntent{Content: "long day", Tone: "neutral"}, nil
		},
		interjectFn: func(ic dialogue.InterjectionContext) (dialogue.InterjectionIntent, error) {
			return dialogue.InterjectionIntent{WantsTo: true, Content: "that is not fair", Tone: "sharp"}, nil
		},
	}
	transcript := &fakeTranscript{}
	director, err := NewDirector(cast, gen, Options{
		Limits:     conversation.Limits{ForcedExitRound: 2},
		Transcript: transcript,
	})
	if err != nil {
		t.Fatalf("new director: %v", err)
	}

	result, err := director.RunBeat(context.Background(), Scene{Title: "The Repair"}, 1, Beat{
		Situation:    "after the repair",
		Participants: []string{"Alice", "Bob"},
	})
	if err != nil {
		t.Fatalf("run beat: %v", err)
	}

	if len(result.Interjections) != 1 {
		t.Fatalf("expected one interjection, got %+v", result.Interjections)
	}
	interjection := result.Interjections[0]
	if interjection.Observer != "Alice" || interjection.Reason != interject.TriggerDefense {
		t.Fatalf("unexpected interjection: %+v", interjection)
	}
	// The interjection went through the scheduler, so it shows up as a
	// flagged turn.
	last := result.Turns[len(result.Turns)-1]
	if last.Speaker != "Alice" || last.Content != "that is not fair" || !last.Interjection {
		t.Fatalf("interjection should consume a scheduling slot: %+v", last)
	}

	// The transcript carries the interjection as exactly one row.
	rows := 0
	for _, turn := range transcript.turns {
		if turn.Content != "that is not fair" {
			continue
		}
		rows++
		if !turn.Interjection {
			t.Fatalf("persisted interjection should be flagged: %+v", turn)
		}
	}
	if rows != 1 {
		t.Fatalf("interjection should persist as exactly one row, got %d", rows)
	}
}
