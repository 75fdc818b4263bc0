package personality

import "math/rand"

// Trait pools for the balanced archetype draw.
var (
	positiveTraits = []string{"generous", "brave", "hardworking", "optimistic", "loyal", "honest", "patient"}
	negativeTraits = []string{"selfish", "cowardly", "lazy", "pessimistic", "disloyal", "deceptive", "impatient"}
	neutralTraits  = []string{"analytical", "quiet", "talkative", "curious", "cautious", "practical", "creative"}

	cognitiveStyles = []string{"overthinking", "impulsive", "analytical", "intuitive", "methodical"}
	stressResponses = []string{"people-pleasing", "aggressive", "withdrawal", "denial", "hypervigilance"}
	moralCompasses  = []string{"fairness-first", "loyalty-first", "pragmatic", "rule-following", "compassionate"}
)

// GenerateNature returns a Nature for a named archetype, or a balanced random
// draw for anything unrecognized.
func GenerateNature(archetype string) Nature {
	switch archetype {
	case "generous_anxious":
		return Nature{
			CoreTraits:     []string{"generous", "anxious", "hardworking"},
			CognitiveStyle: "overthinking",
			StressResponse: "people-pleasing",
			MoralCompass:   "fairness-first",
		}
	case "selfish_cunning":
		return Nature{
			CoreTraits:     []string{"selfish", "cunning", "charismatic"},
			CognitiveStyle: "analytical",
			StressResponse: "aggressive",
			MoralCompass:   "pragmatic",
		}
	case "loyal_quiet":
		return Nature{
			CoreTraits:     []string{"loyal", "quiet", "observant"},
			CognitiveStyle: "intuitive",
			StressResponse: "withdrawal",
			MoralCompass:   "loyalty-first",
		}
	default:
		return Nature{
			CoreTraits: []string{
				positiveTraits[rand.Intn(len(positiveTraits))],
				negativeTraits[rand.Intn(len(negativeTraits))],
				neutralTraits[rand.Intn(len(neutralTraits))],
			},
			CognitiveStyle: cognitiveStyles[rand.Intn(len(cognitiveStyles))],
			StressResponse: stressResponses[rand.Intn(len(stressResponses))],
			MoralCompass:   moralCompasses[rand.Intn(len(moralCompasses))],
		}
	}
}

// DefaultCast returns natures for the stock three-agent roster used by the
// director binary and tests.
func DefaultCast() map[string]Nature {
	return map[string]Nature{
		"Alice":   GenerateNature("generous_anxious"),
		"Bob":     GenerateNature("selfish_cunning"),
		"Charlie": GenerateNature("loyal_quiet"),
	}
}
