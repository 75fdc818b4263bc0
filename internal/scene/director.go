package scene

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emberworks/dramatis/internal/conversation"
	"github.com/emberworks/dramatis/internal/dialogue"
	"github.com/emberworks/dramatis/internal/interject"
	"github.com/emberworks/dramatis/internal/personality"
	"github.com/emberworks/dramatis/internal/relationship"
)

// Generator is the dialogue collaborator. Every call may fail or time out;
// the director degrades failures to skipped turns and empty reflections, it
// never lets them break the scheduling invariants.
type Generator interface {
	Turn(ctx context.Context, tc dialogue.TurnContext) (dialogue.TurnIntent, error)
	Interjection(ctx context.Context, ic dialogue.InterjectionContext) (dialogue.InterjectionIntent, error)
	Reflection(ctx context.Context, rc dialogue.ReflectionContext) (dialogue.Reflection, error)
	Chronicle(ctx context.Context, turns []dialogue.TurnView) (string, error)
}

// PersonalityStore persists personality snapshots at beat end.
type PersonalityStore interface {
	SavePersonality(ctx context.Context, snapshot personality.Snapshot) error
}

// RelationshipStore persists the relationship matrix at beat end.
type RelationshipStore interface {
	SaveMatrix(ctx context.Context, snaps []relationship.Snapshot) error
}

// TranscriptStore persists the turn log.
type TranscriptStore interface {
	AppendBeat(ctx context.Context, sceneTitle string, beatNumber int, turns []conversation.Turn) error
}

// Archive recalls past beats into prompts and records finished ones.
type Archive interface {
	Recall(ctx context.Context, participant, situation string) ([]string, error)
	Record(ctx context.Context, sceneTitle string, beatNumber int, summary string, participants []string) error
}

// Options configures a Director. All stores are optional; a nil store means
// the corresponding state stays in memory only.
type Options struct {
	Limits          conversation.Limits
	RecentTurnLimit int

	Personalities PersonalityStore
	Relationships RelationshipStore
	Transcript    TranscriptStore
	Archive       Archive
}

const defaultRecentTurnLimit = 3

// Director runs scenes over a cast. One director per cast; beats run one at
// a time.
type Director struct {
	cast *Cast
	gen  Generator
	eval *interject.Evaluator
	opts Options
}

// NewDirector wires a director over the cast and generator.
func NewDirector(cast *Cast, gen Generator, opts Options) (*Director, error) {
	if cast == nil {
		return nil, fmt.Errorf("cast is required")
	}
	if gen == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if opts.RecentTurnLimit <= 0 {
		opts.RecentTurnLimit = defaultRecentTurnLimit
	}
	return &Director{
		cast: cast,
		gen:  gen,
		eval: interject.NewEvaluator(cast.Matrix),
		opts: opts,
	}, nil
}

// RunScene plays every beat of the scene in order.
func (d *Director) RunScene(ctx context.Context, sc Scene) ([]BeatResult, error) {
	results := make([]BeatResult, 0, len(sc.Beats))
	for i, beat := range sc.Beats {
		result, err := d.RunBeat(ctx, sc, i+1, beat)
		if err != nil {
			return results, fmt.Errorf("beat %d: %w", i+1, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// RunBeat plays one beat to its end and flushes the durable state.
func (d *Director) RunBeat(ctx context.Context, sc Scene, beatNumber int, beat Beat) (BeatResult, error) {
	for _, name := range beat.Participants {
		if !d.cast.Contains(name) {
			return BeatResult{}, fmt.Errorf("participant %q is not in the cast", name)
		}
	}
	if len(beat.Participants) == 0 {
		return BeatResult{}, fmt.Errorf("beat has no participants")
	}

	scheduler := conversation.NewScheduler(beat.Participants, d.opts.Limits)
	echoes := d.recallEchoes(ctx, beat)
	result := BeatResult{BeatNumber: beatNumber}

	var lastTarget string
	for {
		if ended, reason := scheduler.ShouldEnd(); ended {
			result.EndReason = reason
			break
		}

		speaker := scheduler.NextSpeaker()
		addressee := ""
		if lastTarget == speaker {
			addressee = d.lastSpeaker(scheduler)
		}
		lastTarget = ""

		intent, spoke := d.generateTurn(ctx, sc, beat, scheduler, speaker, addressee, echoes[speaker])
		turn, events, err := scheduler.RecordTurn(speaker, intent.Content, intent.Tone, intent.Action, intent.Target)
		if err != nil {
			return result, err
		}
		d.surfaceEvents(events)
		if turn.Target != "" {
			lastTarget = turn.Target
		}

		if spoke {
			d.absorbTurn(speaker, intent, scheduler)
		}
		if !turn.Skipped {
			interjections := d.interjectionPass(ctx, beat, scheduler, turn)
			result.Interjections = append(result.Interjections, interjections...)
		}
	}

	result.Turns = scheduler.Turns()
	result.Stats = scheduler.Stats()
	result.Summary = d.chronicle(ctx, result.Turns)

	d.reflect(ctx, beat, result)
	d.flush(ctx, sc, beatNumber, beat, result)
	return result, nil
}

// generateTurn asks the collaborator for the speaker's turn. Any failure
// degrades to a skip; the second return reports whether a real intent came
// back.
func (d *Director) generateTurn(ctx context.Context, sc Scene, beat Beat, scheduler *conversation.Scheduler, speaker, addressee string, echoes []string) (dialogue.TurnIntent, bool) {
	persona, err := d.cast.Persona(speaker)
	if err != nil {
		slog.Error("speaker missing from cast", "speaker", speaker, "error", err.Error())
		return dialogue.TurnIntent{}, false
	}

	relations := make(map[string]relationship.Context)
	for _, other := range beat.Participants {
		if other == speaker {
			continue
		}
		relCtx, err := d.cast.Matrix.Context(speaker, other)
		if err != nil {
			slog.Warn("no relationship context", "from", speaker, "to", other, "error", err.Error())
			continue
		}
		relations[other] = relCtx
	}

	tc := dialogue.TurnContext{
		Speaker:       speaker,
		Addressee:     addressee,
		Round:         scheduler.Round(),
		Energy:        string(scheduler.Energy()),
		Situation:     beat.Situation,
		Location:      beat.Location,
		Premise:       sc.Premise,
		Stakes:        sc.Stakes,
		RecentTurns:   toTurnViews(scheduler.RecentTurns(d.opts.RecentTurnLimit)),
		Relationships: relations,
		Persona:       persona.Snapshot(),
		Complication:  beat.Complications[speaker],
		CanExit:       scheduler.CanRequestExit(),
		PastEchoes:    echoes,
	}

	intent, err := d.gen.Turn(ctx, tc)
	if err != nil {
		slog.Warn("turn generation failed, recording skip", "speaker", speaker, "round", scheduler.Round(), "error", err.Error())
		return dialogue.TurnIntent{}, false
	}
	return intent, true
}

// absorbTurn folds a spoken intent back into scheduler and personality state.
func (d *Director) absorbTurn(speaker string, intent dialogue.TurnIntent, scheduler *conversation.Scheduler) {
	persona, err := d.cast.Persona(speaker)
	if err != nil {
		return
	}
	if intent.EmotionalState != "" {
		persona.Nurture.EmotionalState = intent.EmotionalState
	}
	if intent.WantsExit && scheduler.CanRequestExit() {
		if scheduler.RequestExit(speaker) {
			slog.Info("exit requested", "agent", speaker, "round", scheduler.Round())
		}
	}
}

// interjectionPass gives every observer with a remaining budget the chance to
// break in after a spoken turn. An accepted interjection consumes the
// observer's scheduling slot like any other turn.
func (d *Director) interjectionPass(ctx context.Context, beat Beat, scheduler *conversation.Scheduler, turn conversation.Turn) []Interjection {
	var interjections []Interjection
	for _, observer := range beat.Participants {
		if observer == turn.Speaker || !scheduler.CanInterject(observer) {
			continue
		}
		persona, err := d.cast.Persona(observer)
		if err != nil {
			continue
		}

		decision := d.eval.Evaluate(interject.Observer{
			Persona:      persona,
			Complication: beat.Complications[observer],
		}, turn.Speaker, turn.Content, turn.Tone)
		if !decision.ShouldInterject {
			continue
		}

		relCtx, err := d.cast.Matrix.Context(observer, turn.Speaker)
		if err != nil {
			continue
		}
		intent, err := d.gen.Interjection(ctx, dialogue.InterjectionContext{
			Observer:     observer,
			Speaker:      turn.Speaker,
			Statement:    turn.Content,
			Tone:         turn.Tone,
			Reason:       decision.PrimaryReason,
			Persona:      persona.Snapshot(),
			Relationship: relCtx,
		})
		if err != nil {
			slog.Warn("interjection generation failed", "observer", observer, "error", err.Error())
			continue
		}
		if !intent.WantsTo {
			continue
		}
		if !scheduler.MarkInterjected(observer) {
			continue
		}

		round := scheduler.Round()
		if _, events, err := scheduler.RecordInterjection(observer, intent.Content, intent.Tone); err != nil {
			slog.Warn("interjection could not be recorded", "observer", observer, "error", err.Error())
			continue
		} else {
			d.surfaceEvents(events)
		}
		slog.Info("interjection", "observer", observer, "speaker", turn.Speaker, "reason", decision.PrimaryReason)
		interjections = append(interjections, Interjection{
			Observer: observer,
			Round:    round,
			Content:  intent.Content,
			Tone:     intent.Tone,
			Reason:   decision.PrimaryReason,
		})
	}
	return interjections
}

// reflect runs the beat-end reflection for every participant in participant
// order and applies the results to the matrix and personalities.
func (d *Director) reflect(ctx context.Context, beat Beat, result BeatResult) {
	recent := recentEvents(result.Turns)
	for _, name := range beat.Participants {
		persona, err := d.cast.Persona(name)
		if err != nil {
			continue
		}
		others := make([]string, 0, len(beat.Participants)-1)
		for _, other := range beat.Participants {
			if other != name {
				others = append(others, other)
			}
		}

		reflection, err := d.gen.Reflection(ctx, dialogue.ReflectionContext{
			Persona:      persona.Snapshot(),
			BeatSummary:  result.Summary,
			Participants: others,
			RecentEvents: recent,
		})
		if err != nil {
			slog.Warn("reflection failed, applying nothing", "agent", name, "error", err.Error())
			continue
		}
		d.applyReflection(name, others, reflection, beat)
	}
}

// applyReflection feeds one agent's reflection into the durable state. Deltas
// are applied in participant order; a delta toward a stranger establishes the
// relationship first.
func (d *Director) applyReflection(name string, others []string, reflection dialogue.Reflection, beat Beat) {
	matrix := d.cast.Matrix
	for _, other := range others {
		delta, ok := reflection.Relationships[other]
		if !ok {
			continue
		}
		rel, err := matrix.Get(name, other)
		if err != nil {
			slog.Warn("reflection names unknown agent", "agent", name, "other", other)
			continue
		}
		if rel.Status == relationship.StatusUnknown {
			trust := relationship.ScoreNeutral + delta.TrustDelta
			affection := relationship.ScoreNeutral + delta.AffectionDelta
			if err := matrix.EstablishFirstMeeting(name, other, trust, affection,
				relationship.ScoreNeutral, relationship.ScoreNeutral); err != nil {
				slog.Error("failed to establish first meeting", "a", name, "b", other, "error", err.Error())
				continue
			}
			if delta.Memory != "" {
				_ = matrix.UpdateRelationship(name, other, 0, 0, delta.Memory)
			}
			continue
		}
		if err := matrix.UpdateRelationship(name, other, delta.TrustDelta, delta.AffectionDelta, delta.Memory); err != nil {
			slog.Error("failed to update relationship", "from", name, "to", other, "error", err.Error())
		}
	}

	// Gossip reaches the cast members who were not in the room.
	for _, item := range reflection.GossipWorthy {
		if !d.cast.Contains(item.About) {
			continue
		}
		for _, listener := range d.cast.Roster() {
			if listener == name || listener == item.About || inRoster(beat.Participants, listener) {
				continue
			}
			if err := matrix.AddGossip(listener, item.About, item.Text); err != nil {
				slog.Warn("failed to spread gossip", "listener", listener, "about", item.About, "error", err.Error())
			}
		}
	}

	persona, err := d.cast.Persona(name)
	if err != nil {
		return
	}
	if reflection.EmotionalState != "" {
		persona.Nurture.EmotionalState = reflection.EmotionalState
	}
	if reflection.ConfidenceHint != 0 {
		persona.Nurture.UpdateConfidence(clampHint(reflection.ConfidenceHint))
	}
	d.applyExperiences(name, reflection)
}

// applyExperiences translates an agent's own reflection deltas into lived
// experience: a sharp trust drop toward someone is felt as betrayal.
func (d *Director) applyExperiences(name string, reflection dialogue.Reflection) {
	persona, err := d.cast.Persona(name)
	if err != nil {
		return
	}
	var net float64
	betrayedBy := ""
	for other, delta := range reflection.Relationships {
		net += delta.TrustDelta
		if delta.TrustDelta <= -3 && betrayedBy == "" {
			betrayedBy = other
		}
	}
	switch {
	case betrayedBy != "":
		persona.ApplyExperience(personality.ExperienceBetrayal, betrayedBy)
	case net > 0:
		persona.ApplyExperience(personality.ExperiencePositive, "")
	case net < 0:
		persona.ApplyExperience(personality.ExperienceNegative, "")
	}
}

// chronicle asks the collaborator for a beat summary; on failure the beat
// simply has none.
func (d *Director) chronicle(ctx context.Context, turns []conversation.Turn) string {
	summary, err := d.gen.Chronicle(ctx, toTurnViews(turns))
	if err != nil {
		slog.Warn("beat chronicle failed", "error", err.Error())
		return ""
	}
	return summary
}

// recallEchoes fetches past-beat memories for every participant up front.
func (d *Director) recallEchoes(ctx context.Context, beat Beat) map[string][]string {
	echoes := make(map[string][]string)
	if d.opts.Archive == nil || beat.Situation == "" {
		return echoes
	}
	for _, name := range beat.Participants {
		recalled, err := d.opts.Archive.Recall(ctx, name, beat.Situation)
		if err != nil {
			slog.Warn("beat memory recall failed", "agent", name, "error", err.Error())
			continue
		}
		echoes[name] = recalled
	}
	return echoes
}

// flush writes the beat's durable state through whichever stores are wired.
func (d *Director) flush(ctx context.Context, sc Scene, beatNumber int, beat Beat, result BeatResult) {
	if d.opts.Transcript != nil {
		if err := d.opts.Transcript.AppendBeat(ctx, sc.Title, beatNumber, result.Turns); err != nil {
			slog.Error("failed to persist transcript", "scene", sc.Title, "beat", beatNumber, "error", err.Error())
		}
	}
	if d.opts.Relationships != nil {
		if err := d.opts.Relationships.SaveMatrix(ctx, d.cast.Matrix.Snapshots()); err != nil {
			slog.Error("failed to persist relationships", "error", err.Error())
		}
	}
	if d.opts.Personalities != nil {
		for _, snap := range d.cast.PersonaSnapshots() {
			if err := d.opts.Personalities.SavePersonality(ctx, snap); err != nil {
				slog.Error("failed to persist personality", "agent", snap.Name, "error", err.Error())
			}
		}
	}
	if d.opts.Archive != nil && result.Summary != "" {
		if err := d.opts.Archive.Record(ctx, sc.Title, beatNumber, result.Summary, beat.Participants); err != nil {
			slog.Error("failed to archive beat memory", "scene", sc.Title, "beat", beatNumber, "error", err.Error())
		}
	}
}

func (d *Director) surfaceEvents(events []conversation.Event) {
	for _, event := range events {
		switch event.Code {
		case conversation.EventUnknownTarget:
			slog.Warn("turn targeted an unknown agent", "agent", event.Agent, "detail", event.Detail)
		default:
			slog.Info("scheduler event", "code", event.Code, "agent", event.Agent, "detail", event.Detail)
		}
	}
}

// lastSpeaker returns who spoke most recently, or empty at beat start.
func (d *Director) lastSpeaker(scheduler *conversation.Scheduler) string {
	recent := scheduler.RecentTurns(1)
	if len(recent) == 0 {
		return ""
	}
	return recent[0].Speaker
}

func toTurnViews(turns []conversation.Turn) []dialogue.TurnView {
	views := make([]dialogue.TurnView, 0, len(turns))
	for _, turn := range turns {
		views = append(views, dialogue.TurnView{
			Speaker: turn.Speaker,
			Content: turn.Content,
			Tone:    turn.Tone,
			Action:  turn.Action,
		})
	}
	return views
}

// recentEvents condenses the last spoken turns for reflection contexts.
func recentEvents(turns []conversation.Turn) []string {
	const limit = 6
	var events []string
	for _, turn := range turns {
		if turn.Skipped {
			continue
		}
		events = append(events, fmt.Sprintf("%s: %s", turn.Speaker, turn.Content))
	}
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events
}

func inRoster(roster []string, name string) bool {
	for _, agent := range roster {
		if agent == name {
			return true
		}
	}
	return false
}

func clampHint(hint int) int {
	if hint > 2 {
		return 2
	}
	if hint < -2 {
		return -2
	}
	return hint
}
