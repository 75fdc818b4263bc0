// Package personality models an agent's two-layer personality: a fixed
// Nature chosen at creation and a Nurture layer that shifts with every scene
// and cools down between them.
package personality

import (
	"github.com/emberworks/dramatis/internal/ring"
)

const (
	learnedBehaviorCapacity = 5
	temporaryBeliefCapacity = 3

	// ConfidenceMin and ConfidenceMax bound the nurture confidence scale.
	ConfidenceMin = 0
	ConfidenceMax = 10

	// IntensityFloor is the resting emotional intensity; daily cooldown never
	// drops below it.
	IntensityFloor = 1
	// IntensityMax caps emotional intensity.
	IntensityMax = 10

	// StressThreshold is the intensity at which the stress response fires.
	StressThreshold = 8
)

// Nature is the permanent personality core. It never changes after creation.
type Nature struct {
	CoreTraits     []string
	CognitiveStyle string
	StressResponse string
	MoralCompass   string
}

// Nurture is the mutable layer shaped by recent treatment and events.
type Nurture struct {
	RecentTreatment    string
	Confidence         int
	EmotionalState     string
	EmotionalIntensity int
	SocialMask         string

	learnedBehaviors *ring.Buffer[string]
	temporaryBeliefs *ring.Buffer[string]
}

func newNurture() *Nurture {
	return &Nurture{
		RecentTreatment:    "neutral",
		Confidence:         5,
		EmotionalState:     "neutral",
		EmotionalIntensity: 5,
		SocialMask:         "authentic",
		learnedBehaviors:   ring.New[string](learnedBehaviorCapacity),
		temporaryBeliefs:   ring.New[string](temporaryBeliefCapacity),
	}
}

// UpdateConfidence shifts confidence, clamped to [0,10].
func (n *Nurture) UpdateConfidence(delta int) {
	n.Confidence = clamp(n.Confidence+delta, ConfidenceMin, ConfidenceMax)
}

// RaiseIntensity shifts emotional intensity, clamped to [0,10].
func (n *Nurture) RaiseIntensity(delta int) {
	n.EmotionalIntensity = clamp(n.EmotionalIntensity+delta, 0, IntensityMax)
}

// LearnBehavior records a behavior pattern, bounded and deduplicated.
func (n *Nurture) LearnBehavior(behavior string) {
	n.learnedBehaviors.PushUnique(behavior)
}

// AdoptBelief records a temporary belief, bounded and deduplicated.
func (n *Nurture) AdoptBelief(belief string) {
	n.temporaryBeliefs.PushUnique(belief)
}

// LearnedBehaviors returns recorded behaviors, oldest first.
func (n *Nurture) LearnedBehaviors() []string {
	return n.learnedBehaviors.Items()
}

// TemporaryBeliefs returns held beliefs, oldest first.
func (n *Nurture) TemporaryBeliefs() []string {
	return n.temporaryBeliefs.Items()
}

// State is one agent's full personality: who they are and how they currently
// feel.
type State struct {
	Name    string
	Nature  Nature
	Nurture *Nurture
}

// NewState creates a personality with the given fixed nature and a neutral
// nurture layer.
func NewState(name string, nature Nature) *State {
	return &State{
		Name:    name,
		Nature:  nature,
		Nurture: newNurture(),
	}
}

// PrimaryTrait returns the most prominent core trait.
func (s *State) PrimaryTrait() string {
	if len(s.Nature.CoreTraits) == 0 {
		return "neutral"
	}
	return s.Nature.CoreTraits[0]
}

// StressTriggered reports whether the stress response fires at the current
// emotional intensity.
func (s *State) StressTriggered() bool {
	return s.Nurture.EmotionalIntensity >= StressThreshold
}

// DecayPerDay cools emotional intensity by one per simulated day, never below
// the resting floor. It is a cooldown, not a reset.
func (s *State) DecayPerDay(days int) {
	for i := 0; i < days; i++ {
		if s.Nurture.EmotionalIntensity > IntensityFloor {
			s.Nurture.EmotionalIntensity--
		}
	}
}

// Experience is a category of event an agent lives through during a beat.
type Experience string

const (
	ExperiencePositive Experience = "positive_interaction"
	ExperienceNegative Experience = "negative_interaction"
	ExperienceBetrayal Experience = "betrayal"
	ExperienceSuccess  Experience = "success"
	ExperienceFailure  Experience = "failure"
)

// ApplyExperience mutates the nurture layer for a lived experience. The
// detail string names the other party where relevant (e.g. the betrayer).
func (s *State) ApplyExperience(exp Experience, detail string) {
	switch exp {
	case ExperiencePositive:
		s.Nurture.UpdateConfidence(1)
		s.Nurture.RecentTreatment = "appreciated"
	case ExperienceNegative:
		s.Nurture.UpdateConfidence(-1)
		s.Nurture.RecentTreatment = "dismissed"
	case ExperienceBetrayal:
		s.Nurture.UpdateConfidence(-2)
		s.Nurture.RecentTreatment = "betrayed"
		if detail != "" {
			s.Nurture.LearnBehavior(detail + " is untrustworthy")
		}
	case ExperienceSuccess:
		s.Nurture.UpdateConfidence(2)
		s.Nurture.RecentTreatment = "successful"
	case ExperienceFailure:
		s.Nurture.UpdateConfidence(-1)
		s.Nurture.EmotionalState = "disappointed"
	}
}

func clamp(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

// Snapshot is the persisted form of one personality.
type Snapshot struct {
	Name               string   `json:"name"`
	CoreTraits         []string `json:"core_traits"`
	CognitiveStyle     string   `json:"cognitive_style"`
	StressResponse     string   `json:"stress_response"`
	MoralCompass       string   `json:"moral_compass"`
	RecentTreatment    string   `json:"recent_treatment"`
	Confidence         int      `json:"confidence"`
	EmotionalState     string   `json:"emotional_state"`
	EmotionalIntensity int      `json:"emotional_intensity"`
	SocialMask         string   `json:"social_mask"`
	LearnedBehaviors   []string `json:"learned_behaviors"`
	TemporaryBeliefs   []string `json:"temporary_beliefs"`
}

// Snapshot exports the personality for persistence.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Name:               s.Name,
		CoreTraits:         append([]string(nil), s.Nature.CoreTraits...),
		CognitiveStyle:     s.Nature.CognitiveStyle,
		StressResponse:     s.Nature.StressResponse,
		MoralCompass:       s.Nature.MoralCompass,
		RecentTreatment:    s.Nurture.RecentTreatment,
		Confidence:         s.Nurture.Confidence,
		EmotionalState:     s.Nurture.EmotionalState,
		EmotionalIntensity: s.Nurture.EmotionalIntensity,
		SocialMask:         s.Nurture.SocialMask,
		LearnedBehaviors:   s.Nurture.LearnedBehaviors(),
		TemporaryBeliefs:   s.Nurture.TemporaryBeliefs(),
	}
}

// Restore rebuilds a personality from its persisted form.
func Restore(snap Snapshot) *State {
	s := NewState(snap.Name, Nature{
		CoreTraits:     append([]string(nil), snap.CoreTraits...),
		CognitiveStyle: snap.CognitiveStyle,
		StressResponse: snap.StressResponse,
		MoralCompass:   snap.MoralCompass,
	})
	s.Nurture.RecentTreatment = snap.RecentTreatment
	s.Nurture.Confidence = clamp(snap.Confidence, ConfidenceMin, ConfidenceMax)
	s.Nurture.EmotionalState = snap.EmotionalState
	s.Nurture.EmotionalIntensity = clamp(snap.EmotionalIntensity, 0, IntensityMax)
	s.Nurture.SocialMask = snap.SocialMask
	s.Nurture.learnedBehaviors = ring.FromSlice(learnedBehaviorCapacity, snap.LearnedBehaviors)
	s.Nurture.temporaryBeliefs = ring.FromSlice(temporaryBeliefCapacity, snap.TemporaryBeliefs)
	return s
}
