package interject

import (
	"reflect"
	"testing"

	"github.com/emberworks/dramatis/internal/personality"
	"github.com/emberworks/dramatis/internal/relationship"
)

func observerWithIntensity(name string, intensity int) Observer {
	persona := personality.NewState(name, personality.Nature{StressResponse: "people-pleasing"})
	persona.Nurture.EmotionalIntensity = intensity
	return Observer{Persona: persona}
}

func TestEmotionalTriggerFiresAlone(t *testing.T) {
	// A stranger speaking in a neutral tone still triggers an interjection
	// when the observer is emotionally overwhelmed.
	matrix := relationship.NewMatrix([]string{"Alice", "Bob"})
	ev := NewEvaluator(matrix)

	decision := ev.Evaluate(observerWithIntensity("Alice", 9), "Bob", "the weather held up", "neutral")
	if !decision.ShouldInterject {
		t.Fatal("expected interjection")
	}
	if decision.PrimaryReason != TriggerEmotional {
		t.Fatalf("expected emotional_trigger, got %q", decision.PrimaryReason)
	}
}

func TestCalmObserverStaysQuiet(t *testing.T) {
	matrix := relationship.NewMatrix([]string{"Alice", "Bob"})
	ev := NewEvaluator(matrix)

	decision := ev.Evaluate(observerWithIntensity("Alice", 5), "Bob", "nothing much happened", "neutral")
	if decision.ShouldInterject || decision.PrimaryReason != "" || len(decision.Triggers) != 0 {
		t.Fatalf("expected silence, got %+v", decision)
	}
}

func TestRelationshipDefense(t *testing.T) {
	matrix := relationship.NewMatrix([]string{"Alice", "Bob"})
	if err := matrix.EstablishFirstMeeting("Alice", "Bob", 8, 6, 5, 5); err != nil {
		t.Fatalf("establish: %v", err)
	}
	ev := NewEvaluator(matrix)

	decision := ev.Evaluate(observerWithIntensity("Alice", 5), "Bob", "you all abandoned the post", "accusatory")
	if decision.PrimaryReason != TriggerDefense {
		t.Fatalf("expected relationship_defense, got %+v", decision)
	}

	// Same statement in a calm tone does not warrant defense.
	decision = ev.Evaluate(observerWithIntensity("Alice", 5), "Bob", "you all abandoned the post", "tired")
	if decision.ShouldInterject {
		t.Fatalf("calm tone should not trigger defense: %+v", decision)
	}
}

func TestStressResponseNeedsBothKeywordAndIntensity(t *testing.T) {
	matrix := relationship.NewMatrix([]string{"Alice", "Bob"})
	ev := NewEvaluator(matrix)

	// Keyword without intensity: quiet.
	decision := ev.Evaluate(observerWithIntensity("Alice", 5), "Bob", "someone here is a liar", "neutral")
	if decision.ShouldInterject {
		t.Fatalf("keyword alone should not trigger: %+v", decision)
	}

	// The observer's own name counts as a stress keyword.
	decision = ev.Evaluate(observerWithIntensity("Alice", 8), "Bob", "Alice was the last one there", "neutral")
	want := []string{TriggerEmotional, TriggerStress}
	if !reflect.DeepEqual(decision.Triggers, want) {
		t.Fatalf("expected triggers %v, got %v", want, decision.Triggers)
	}
	if decision.PrimaryReason != TriggerEmotional {
		t.Fatalf("priority order broken: %+v", decision)
	}
}

func TestInformationCorrection(t *testing.T) {
	matrix := relationship.NewMatrix([]string{"Alice", "Bob"})
	ev := NewEvaluator(matrix)

	observer := observerWithIntensity("Alice", 5)
	observer.Complication = "saw Bob leave the storehouse at midnight"

	decision := ev.Evaluate(observer, "Bob", "I never left my house that night", "neutral")
	if decision.PrimaryReason != TriggerInfoCorrection {
		t.Fatalf("expected information_correction, got %+v", decision)
	}

	// Without the held secret there is nothing to correct.
	decision = ev.Evaluate(observerWithIntensity("Alice", 5), "Bob", "I never left my house that night", "neutral")
	if decision.ShouldInterject {
		t.Fatalf("no complication should mean no correction: %+v", decision)
	}
}
