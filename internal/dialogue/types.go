// Package dialogue defines the contract between the scene core and the
// dialogue-generation collaborator: the context records the core hands out,
// the intent records it expects back, and the parsing of model output into
// them. The core never depends on how the collaborator produces text.
package dialogue

import (
	"github.com/emberworks/dramatis/internal/personality"
	"github.com/emberworks/dramatis/internal/relationship"
)

// TurnView is one recent turn as seen by the collaborator.
type TurnView struct {
	Speaker string
	Content string
	Tone    string
	Action  string
}

// TurnContext is everything the collaborator needs to produce one turn.
type TurnContext struct {
	Speaker   string
	Addressee string
	Round     int
	Energy    string

	Situation string
	Location  string
	Premise   string
	Stakes    string

	RecentTurns []TurnView
	// Relationships maps every other present agent to the speaker's view of
	// them.
	Relationships map[string]relationship.Context
	Persona       personality.Snapshot
	Complication  string
	CanExit       bool
	// PastEchoes are retrieved memories of earlier beats relevant to the
	// current situation.
	PastEchoes []string
}

// TurnIntent is the collaborator's answer for one turn. An empty Content
// means the agent chose to stay silent; the scheduler still burns the slot.
type TurnIntent struct {
	Content        string `json:"speaks"`
	Tone           string `json:"tone"`
	Action         string `json:"does"`
	Target         string `json:"target"`
	EmotionalState string `json:"emotional_state"`
	WantsExit      bool   `json:"wants_exit"`
}

// InterjectionContext asks whether a triggered observer actually breaks in,
// and with what words.
type InterjectionContext struct {
	Observer  string
	Speaker   string
	Statement string
	Tone      string
	// Reason is the trigger that made the observer a candidate.
	Reason       string
	Persona      personality.Snapshot
	Relationship relationship.Context
}

// InterjectionIntent is the collaborator's interjection decision.
type InterjectionIntent struct {
	WantsTo bool   `json:"wants_to_interject"`
	Content string `json:"speaks"`
	Tone    string `json:"tone"`
}

// ReflectionContext is handed to the collaborator once per participant at
// beat end.
type ReflectionContext struct {
	Persona      personality.Snapshot
	BeatSummary  string
	Participants []string
	RecentEvents []string
}

// RelationshipDelta is one relationship adjustment out of a reflection.
type RelationshipDelta struct {
	TrustDelta     float64 `json:"trust_delta"`
	AffectionDelta float64 `json:"affection_delta"`
	Memory         string  `json:"memory"`
}

// GossipItem is something worth repeating to agents who were not there.
type GossipItem struct {
	About string `json:"about"`
	Text  string `json:"text"`
}

// Reflection is the collaborator's beat-end output for one agent.
type Reflection struct {
	Relationships  map[string]RelationshipDelta `json:"relationships"`
	GossipWorthy   []GossipItem                 `json:"gossip_worthy"`
	EmotionalState string                       `json:"emotional_state"`
	ConfidenceHint int                          `json:"confidence_delta"`
}
