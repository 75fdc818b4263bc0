// Package interject decides whether an observing agent should break into the
// rotation after hearing a statement. The decision is computed from
// relationship state and the observer's personality; the scheduler separately
// enforces the one-interjection-per-round budget.
package interject

import (
	"strings"

	"github.com/emberworks/dramatis/internal/personality"
	"github.com/emberworks/dramatis/internal/relationship"
)

// Trigger reasons, in priority order. PrimaryReason is the first that fired.
const (
	TriggerEmotional      = "emotional_trigger"
	TriggerDefense        = "relationship_defense"
	TriggerStress         = "stress_response"
	TriggerInfoCorrection = "information_correction"
)

const (
	defenseTrustThreshold = 7.0
	emotionalIntensityBar = 8
)

// Stress keywords beyond the observer's own name.
var stressKeywords = []string{"liar", "thief", "betrayer"}

// Denial keywords that can contradict a held secret.
var denialKeywords = []string{"never", "didn't"}

// Observer is the listening agent's view into the evaluation: their
// personality plus any secret complication they carry this beat.
type Observer struct {
	Persona      *personality.State
	Complication string
}

// Decision is the evaluation result. Triggers lists every rule that fired,
// in priority order; PrimaryReason is the first.
type Decision struct {
	ShouldInterject bool
	Triggers        []string
	PrimaryReason   string
}

// Evaluator checks interjection triggers against the relationship matrix.
type Evaluator struct {
	Relationships *relationship.Matrix
}

// NewEvaluator returns an evaluator over the given matrix.
func NewEvaluator(matrix *relationship.Matrix) *Evaluator {
	return &Evaluator{Relationships: matrix}
}

// Evaluate checks, in fixed priority order:
//  1. the observer is emotionally overwhelmed (intensity >= 8);
//  2. a trusted ally (trust >= 7) is being attacked (accusatory/hostile tone);
//  3. the statement hits a stress keyword and the observer's stress response
//     fires;
//  4. the observer holds a secret contradicted by a denial in the statement.
func (e *Evaluator) Evaluate(observer Observer, speaker, statement, tone string) Decision {
	var triggers []string
	intensity := observer.Persona.Nurture.EmotionalIntensity

	if intensity >= emotionalIntensityBar {
		triggers = append(triggers, TriggerEmotional)
	}

	if e.Relationships != nil {
		relCtx, err := e.Relationships.Context(observer.Persona.Name, speaker)
		if err == nil && relCtx.Status == relationship.StatusKnown &&
			relCtx.Trust >= defenseTrustThreshold && (tone == "accusatory" || tone == "hostile") {
			triggers = append(triggers, TriggerDefense)
		}
	}

	lowered := strings.ToLower(statement)
	if containsStressKeyword(lowered, observer.Persona.Name) && observer.Persona.StressTriggered() {
		triggers = append(triggers, TriggerStress)
	}

	if observer.Complication != "" && containsAny(lowered, denialKeywords) {
		triggers = append(triggers, TriggerInfoCorrection)
	}

	decision := Decision{
		ShouldInterject: len(triggers) > 0,
		Triggers:        triggers,
	}
	if len(triggers) > 0 {
		decision.PrimaryReason = triggers[0]
	}
	return decision
}

func containsStressKeyword(lowered, observerName string) bool {
	if observerName != "" && strings.Contains(lowered, strings.ToLower(observerName)) {
		return true
	}
	return containsAny(lowered, stressKeywords)
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
