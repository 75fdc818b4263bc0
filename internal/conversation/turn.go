// Package conversation owns the round and turn bookkeeping for one beat: who
// speaks next, when a round rolls over, and when the conversation is allowed
// to end.
package conversation

// Turn is one recorded speaking action. Turns are immutable once recorded and
// form an append-only sequence.
type Turn struct {
	Speaker string
	Round   int
	Index   int // ordinal position in the beat, starting at 1
	Content string
	Tone    string
	Action  string
	Target  string
	Skipped bool // the agent declined (or failed) to produce dialogue
	// Interjection marks a turn that broke into the rotation instead of
	// being scheduled.
	Interjection bool
}

// Energy is the conversation's pacing signal, derived from the round number.
type Energy string

const (
	EnergyHigh   Energy = "high"   // rounds 1-3
	EnergyMedium Energy = "medium" // rounds 4-6
	EnergyLow    Energy = "low"    // round 7 onward
)

func energyForRound(round int) Energy {
	switch {
	case round <= 3:
		return EnergyHigh
	case round <= 6:
		return EnergyMedium
	default:
		return EnergyLow
	}
}

// Event codes surfaced by scheduler operations. The scheduler never logs;
// callers decide how to report these.
const (
	EventRoundAdvanced = "round_advanced"
	EventTargetSet     = "target_set"
	EventTargetAtCap   = "target_at_cap"
	EventUnknownTarget = "unknown_target"
	EventSelfTarget    = "self_target"
	EventExitRequested = "exit_requested"
)

// Event is a notable scheduling occurrence returned from an operation.
type Event struct {
	Code   string
	Agent  string
	Detail string
}

// End reasons reported by ShouldEnd.
const (
	EndMaximumRounds = "maximum_rounds_reached"
	EndMajorityExit  = "majority_exit_request"
)

// Stats summarizes a beat's turn distribution.
type Stats struct {
	TotalTurns      int
	RoundsCompleted int
	TurnsByAgent    map[string]int
}
