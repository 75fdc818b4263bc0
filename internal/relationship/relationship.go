// Package relationship tracks directed trust and affection between agents.
// Every ordered pair of distinct agents has its own relationship, so what A
// feels toward B can diverge arbitrarily from what B feels toward A.
package relationship

import (
	"fmt"

	"github.com/emberworks/dramatis/internal/ring"
)

// Status describes whether a directed relationship carries scores.
type Status int

const (
	// StatusUnknown means the pair never interacted; scores are meaningless.
	StatusUnknown Status = iota
	// StatusKnown means scores and label are live.
	StatusKnown
	// StatusForgotten means the relationship faded after long neglect.
	StatusForgotten
)

// String returns the persisted form of the status.
func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusKnown:
		return "known"
	case StatusForgotten:
		return "forgotten"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseStatus converts a persisted status string back into a Status. It fails
// on anything outside the three valid values rather than defaulting.
func ParseStatus(raw string) (Status, error) {
	switch raw {
	case "unknown":
		return StatusUnknown, nil
	case "known":
		return StatusKnown, nil
	case "forgotten":
		return StatusForgotten, nil
	default:
		return StatusUnknown, fmt.Errorf("invalid relationship status %q", raw)
	}
}

const (
	historyCapacity = 5
	gossipCapacity  = 3

	// ScoreMin and ScoreMax bound trust and affection.
	ScoreMin = 0.0
	ScoreMax = 10.0
	// ScoreNeutral is the value decay converges to.
	ScoreNeutral = 5.0

	decayRatePerDay = 0.1
	forgottenAfter  = 10.0 // cumulative decay-days before an eventless relationship fades
)

// Relationship is one direction of a pair: how From currently sees To.
// Trust and Affection are only meaningful while Status is StatusKnown.
type Relationship struct {
	From string
	To   string

	Status          Status
	Trust           float64
	Affection       float64
	Label           string
	LastInteraction string

	history   *ring.Buffer[string]
	gossip    *ring.Buffer[string]
	decayDays float64
}

func newRelationship(from, to string) *Relationship {
	return &Relationship{
		From:    from,
		To:      to,
		history: ring.New[string](historyCapacity),
		gossip:  ring.New[string](gossipCapacity),
	}
}

// DeriveLabel maps trust and affection to a two-word description. The rules
// are evaluated in priority order, so the first matching band wins.
func DeriveLabel(trust, affection float64) string {
	switch {
	case trust >= 8 && affection >= 8:
		return "beloved friend"
	case trust >= 7 && affection >= 7:
		return "trusted ally"
	case trust >= 7 && affection <= 3:
		return "reliable stranger"
	case trust <= 3 && affection >= 7:
		return "charming liar"
	case trust <= 3 && affection <= 3:
		return "dangerous enemy"
	case trust >= 6 && affection >= 4 && affection <= 6:
		return "cautious ally"
	case trust >= 4 && trust <= 6 && affection >= 7:
		return "likeable acquaintance"
	default:
		return "complicated person"
	}
}

// establish transitions Unknown -> Known with the given first impression.
func (r *Relationship) establish(trust, affection float64) {
	r.Status = StatusKnown
	r.Trust = clampScore(trust)
	r.Affection = clampScore(affection)
	r.Label = DeriveLabel(r.Trust, r.Affection)
}

// applyDelta shifts scores, relabels, and records the memory in one step so
// callers never observe a half-updated relationship.
func (r *Relationship) applyDelta(trustDelta, affectionDelta float64, memory string) {
	r.Trust = clampScore(r.Trust + trustDelta)
	r.Affection = clampScore(r.Affection + affectionDelta)
	r.Label = DeriveLabel(r.Trust, r.Affection)
	if memory != "" {
		r.history.Push(memory)
		r.LastInteraction = memory
	}
}

// decay pulls both scores toward neutral without overshooting it, then
// fades eventless relationships after enough cumulative decay-days.
func (r *Relationship) decay(daysPassed float64) {
	rate := decayRatePerDay * daysPassed
	r.Trust = decayToward(r.Trust, rate)
	r.Affection = decayToward(r.Affection, rate)
	r.Label = DeriveLabel(r.Trust, r.Affection)

	r.decayDays += daysPassed
	if r.history.Len() == 0 && r.decayDays >= forgottenAfter {
		r.Status = StatusForgotten
	}
}

func decayToward(score, rate float64) float64 {
	switch {
	case score > ScoreNeutral:
		score -= rate
		if score < ScoreNeutral {
			score = ScoreNeutral
		}
	case score < ScoreNeutral:
		score += rate
		if score > ScoreNeutral {
			score = ScoreNeutral
		}
	}
	return score
}

// History returns remembered events, oldest first.
func (r *Relationship) History() []string {
	return r.history.Items()
}

// Gossip returns heard gossip, oldest first.
func (r *Relationship) Gossip() []string {
	return r.gossip.Items()
}

func clampScore(score float64) float64 {
	switch {
	case score < ScoreMin:
		return ScoreMin
	case score > ScoreMax:
		return ScoreMax
	default:
		return score
	}
}
