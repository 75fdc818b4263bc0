package personality

import (
	"reflect"
	"testing"
)

func TestUpdateConfidenceClamps(t *testing.T) {
	s := NewState("Alice", GenerateNature("generous_anxious"))
	s.Nurture.UpdateConfidence(100)
	if s.Nurture.Confidence != ConfidenceMax {
		t.Fatalf("expected confidence %d, got %d", ConfidenceMax, s.Nurture.Confidence)
	}
	s.Nurture.UpdateConfidence(-100)
	if s.Nurture.Confidence != ConfidenceMin {
		t.Fatalf("expected confidence %d, got %d", ConfidenceMin, s.Nurture.Confidence)
	}
}

func TestLearnBehaviorBoundedAndIdempotent(t *testing.T) {
	s := NewState("Alice", Nature{})
	for _, b := range []string{"b1", "b1", "b2", "b3", "b4", "b5", "b6"} {
		s.Nurture.LearnBehavior(b)
	}
	if got := s.Nurture.LearnedBehaviors(); !reflect.DeepEqual(got, []string{"b2", "b3", "b4", "b5", "b6"}) {
		t.Fatalf("unexpected behaviors: %v", got)
	}
}

func TestAdoptBeliefBounded(t *testing.T) {
	s := NewState("Alice", Nature{})
	for _, b := range []string{"x", "y", "z", "w"} {
		s.Nurture.AdoptBelief(b)
	}
	if got := s.Nurture.TemporaryBeliefs(); !reflect.DeepEqual(got, []string{"y", "z", "w"}) {
		t.Fatalf("unexpected beliefs: %v", got)
	}
}

func TestDecayPerDayCoolsWithFloor(t *testing.T) {
	s := NewState("Alice", Nature{})
	s.Nurture.EmotionalIntensity = 3
	s.DecayPerDay(1)
	if s.Nurture.EmotionalIntensity != 2 {
		t.Fatalf("expected 2, got %d", s.Nurture.EmotionalIntensity)
	}
	s.DecayPerDay(10)
	if s.Nurture.EmotionalIntensity != IntensityFloor {
		t.Fatalf("expected floor %d, got %d", IntensityFloor, s.Nurture.EmotionalIntensity)
	}
}

func TestStressTriggeredThreshold(t *testing.T) {
	s := NewState("Alice", Nature{})
	s.Nurture.EmotionalIntensity = 7
	if s.StressTriggered() {
		t.Fatal("intensity 7 should not trigger stress response")
	}
	s.Nurture.EmotionalIntensity = 8
	if !s.StressTriggered() {
		t.Fatal("intensity 8 should trigger stress response")
	}
}

func TestApplyExperienceBetrayal(t *testing.T) {
	s := NewState("Alice", Nature{})
	s.ApplyExperience(ExperienceBetrayal, "Bob")
	if s.Nurture.Confidence != 3 {
		t.Fatalf("expected confidence 3, got %d", s.Nurture.Confidence)
	}
	if s.Nurture.RecentTreatment != "betrayed" {
		t.Fatalf("unexpected treatment: %q", s.Nurture.RecentTreatment)
	}
	if got := s.Nurture.LearnedBehaviors(); !reflect.DeepEqual(got, []string{"Bob is untrustworthy"}) {
		t.Fatalf("unexpected behaviors: %v", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := NewState("Alice", GenerateNature("loyal_quiet"))
	s.Nurture.UpdateConfidence(2)
	s.Nurture.EmotionalState = "wary"
	s.Nurture.EmotionalIntensity = 9
	s.Nurture.SocialMask = "competent leader"
	s.Nurture.LearnBehavior("Bob responds to guilt")
	s.Nurture.AdoptBelief("we might survive")

	restored := Restore(s.Snapshot())
	if !reflect.DeepEqual(restored.Snapshot(), s.Snapshot()) {
		t.Fatal("snapshot round trip diverged")
	}
}
