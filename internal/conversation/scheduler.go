package conversation

import (
	"fmt"
)

// Limits bounds a beat's conversation. Zero values fall back to defaults.
type Limits struct {
	TurnsPerRound   int // per-agent cap within one round, default 2
	ForcedExitRound int // conversation must end at this round, default 8
	ExitWindowStart int // first round agents may request exit, default 4
	ExitWindowEnd   int // last round agents may request exit, default 7
}

// DefaultLimits returns the standard beat shape: 2 turns per agent per round,
// exit window rounds 4-7, forced end at round 8.
func DefaultLimits() Limits {
	return Limits{
		TurnsPerRound:   2,
		ForcedExitRound: 8,
		ExitWindowStart: 4,
		ExitWindowEnd:   7,
	}
}

func (l Limits) withDefaults() Limits {
	def := DefaultLimits()
	if l.TurnsPerRound <= 0 {
		l.TurnsPerRound = def.TurnsPerRound
	}
	if l.ForcedExitRound <= 0 {
		l.ForcedExitRound = def.ForcedExitRound
	}
	if l.ExitWindowStart <= 0 {
		l.ExitWindowStart = def.ExitWindowStart
	}
	if l.ExitWindowEnd <= 0 {
		l.ExitWindowEnd = def.ExitWindowEnd
	}
	return l
}

// Scheduler runs one beat's conversation. It owns the round counters, the
// rotation index, and the priority override set by targeting. A scheduler is
// scoped to a single beat and discarded afterward.
type Scheduler struct {
	roster []string
	limits Limits

	round      int
	turns      []Turn
	spoken     map[string]bool
	roundTurns map[string]int
	interjects map[string]bool
	exits      map[string]bool
	energy     Energy

	rotation int
	override *string

	ended     bool
	endReason string
}

// NewScheduler creates a scheduler for the given participants.
func NewScheduler(roster []string, limits Limits) *Scheduler {
	s := &Scheduler{
		roster: append([]string(nil), roster...),
		limits: limits.withDefaults(),
		round:  1,
		energy: energyForRound(1),
	}
	s.resetRoundTrackers()
	return s
}

func (s *Scheduler) resetRoundTrackers() {
	s.spoken = make(map[string]bool)
	s.roundTurns = make(map[string]int)
	s.interjects = make(map[string]bool)
}

// Roster returns the beat participants.
func (s *Scheduler) Roster() []string {
	return append([]string(nil), s.roster...)
}

// Round returns the current round number, starting at 1.
func (s *Scheduler) Round() int {
	return s.round
}

// Energy returns the current pacing signal.
func (s *Scheduler) Energy() Energy {
	return s.energy
}

// Turns returns the full recorded history of the beat.
func (s *Scheduler) Turns() []Turn {
	return append([]Turn(nil), s.turns...)
}

// RecentTurns returns up to limit of the most recent turns, oldest first.
func (s *Scheduler) RecentTurns(limit int) []Turn {
	if limit <= 0 || len(s.turns) == 0 {
		return nil
	}
	if limit > len(s.turns) {
		limit = len(s.turns)
	}
	out := make([]Turn, limit)
	copy(out, s.turns[len(s.turns)-limit:])
	return out
}

// NextSpeaker returns who speaks next: a pending priority override if one was
// set by targeting, otherwise the next agent in rotation.
func (s *Scheduler) NextSpeaker() string {
	if s.override != nil {
		speaker := *s.override
		s.override = nil
		return speaker
	}
	speaker := s.roster[s.rotation%len(s.roster)]
	s.rotation++
	return speaker
}

// RecordTurn appends a turn for the speaker. Empty content records a skipped
// turn that still consumes the scheduling slot, so a collaborator declining
// to speak can never deadlock the round. Targeting a valid other participant
// below the per-round cap makes them the next priority speaker; anything else
// is dropped and reported as an event. Returns the recorded turn and the
// events the caller should surface.
func (s *Scheduler) RecordTurn(speaker, content, tone, action, target string) (Turn, []Event, error) {
	if s.ended {
		return Turn{}, nil, fmt.Errorf("conversation already ended: %s", s.endReason)
	}
	if !s.inRoster(speaker) {
		return Turn{}, nil, fmt.Errorf("unknown speaker %q", speaker)
	}

	turn := Turn{
		Speaker: speaker,
		Round:   s.round,
		Index:   len(s.turns) + 1,
		Content: content,
		Tone:    tone,
		Action:  action,
		Target:  target,
		Skipped: content == "",
	}
	s.turns = append(s.turns, turn)
	s.spoken[speaker] = true
	s.roundTurns[speaker]++

	var events []Event
	if target != "" {
		events = append(events, s.applyTarget(speaker, target))
	}

	if s.ShouldAdvanceRound() {
		events = append(events, s.advanceRound())
	}
	return turn, events, nil
}

// RecordInterjection appends a turn that broke into the rotation. It goes
// through the same bookkeeping as RecordTurn, so the interjection consumes the
// observer's scheduling slot, and the recorded turn is flagged so the
// transcript carries a single row for it.
func (s *Scheduler) RecordInterjection(speaker, content, tone string) (Turn, []Event, error) {
	turn, events, err := s.RecordTurn(speaker, content, tone, "", "")
	if err != nil {
		return turn, events, err
	}
	s.turns[len(s.turns)-1].Interjection = true
	turn.Interjection = true
	return turn, events, nil
}

// applyTarget validates a targeting request and sets the priority override
// when it holds up.
func (s *Scheduler) applyTarget(speaker, target string) Event {
	switch {
	case target == speaker:
		return Event{Code: EventSelfTarget, Agent: speaker, Detail: "targeting yourself is ignored"}
	case !s.inRoster(target):
		return Event{Code: EventUnknownTarget, Agent: speaker, Detail: fmt.Sprintf("no participant named %q", target)}
	case s.roundTurns[target] >= s.limits.TurnsPerRound:
		return Event{Code: EventTargetAtCap, Agent: target, Detail: fmt.Sprintf("%s already took %d turns this round", target, s.limits.TurnsPerRound)}
	default:
		t := target
		s.override = &t
		return Event{Code: EventTargetSet, Agent: target, Detail: fmt.Sprintf("%s will speak next", target)}
	}
}

// ShouldAdvanceRound reports whether the round is over: either every agent
// hit the per-round cap, or every agent has spoken at least once. The second
// rule allows short rounds when the conversation lulls, which means the cap
// is often never reached.
func (s *Scheduler) ShouldAdvanceRound() bool {
	allAtCap := true
	allSpoke := true
	for _, agent := range s.roster {
		if s.roundTurns[agent] < s.limits.TurnsPerRound {
			allAtCap = false
		}
		if !s.spoken[agent] {
			allSpoke = false
		}
	}
	return allAtCap || allSpoke
}

func (s *Scheduler) advanceRound() Event {
	s.round++
	s.resetRoundTrackers()
	s.energy = energyForRound(s.round)
	return Event{Code: EventRoundAdvanced, Detail: fmt.Sprintf("round %d, energy %s", s.round, s.energy)}
}

// CanRequestExit reports whether exit requests are currently accepted.
func (s *Scheduler) CanRequestExit() bool {
	return s.round >= s.limits.ExitWindowStart && s.round <= s.limits.ExitWindowEnd
}

// RequestExit records that an agent wants the conversation to end. Outside
// the exit window the request is rejected, not an error.
func (s *Scheduler) RequestExit(agent string) bool {
	if !s.CanRequestExit() || !s.inRoster(agent) {
		return false
	}
	if s.exits == nil {
		s.exits = make(map[string]bool)
	}
	s.exits[agent] = true
	return true
}

// ShouldEnd reports whether the conversation is over and why. Hitting the
// forced-exit round always ends it; within the exit window a strict majority
// of exit requests ends it early. Once ended the state is terminal.
func (s *Scheduler) ShouldEnd() (bool, string) {
	if s.ended {
		return true, s.endReason
	}
	if s.round >= s.limits.ForcedExitRound {
		s.end(EndMaximumRounds)
		return true, s.endReason
	}
	if s.CanRequestExit() {
		majority := len(s.roster)/2 + 1
		if len(s.exits) >= majority {
			s.end(EndMajorityExit)
			return true, s.endReason
		}
	}
	return false, ""
}

func (s *Scheduler) end(reason string) {
	s.ended = true
	s.endReason = reason
}

// CanInterject reports whether the agent still has their one interjection
// for this round.
func (s *Scheduler) CanInterject(agent string) bool {
	return s.inRoster(agent) && !s.interjects[agent]
}

// MarkInterjected spends the agent's interjection for this round.
func (s *Scheduler) MarkInterjected(agent string) bool {
	if !s.CanInterject(agent) {
		return false
	}
	s.interjects[agent] = true
	return true
}

// Stats summarizes the beat so far.
func (s *Scheduler) Stats() Stats {
	byAgent := make(map[string]int, len(s.roster))
	for _, agent := range s.roster {
		byAgent[agent] = 0
	}
	for _, turn := range s.turns {
		byAgent[turn.Speaker]++
	}
	return Stats{
		TotalTurns:      len(s.turns),
		RoundsCompleted: s.round - 1,
		TurnsByAgent:    byAgent,
	}
}

func (s *Scheduler) inRoster(name string) bool {
	for _, agent := range s.roster {
		if agent == name {
			return true
		}
	}
	return false
}
