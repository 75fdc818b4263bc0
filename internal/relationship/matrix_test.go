package relationship

import (
	"errors"
	"reflect"
	"testing"
)

func newKnownMatrix(t *testing.T, roster ...string) *Matrix {
	t.Helper()
	m := NewMatrix(roster)
	for i, a := range roster {
		for _, b := range roster[i+1:] {
			if err := m.EstablishFirstMeeting(a, b, 5, 5, 5, 5); err != nil {
				t.Fatalf("establish %s/%s: %v", a, b, err)
			}
		}
	}
	return m
}

func TestUpdateClampsScores(t *testing.T) {
	m := newKnownMatrix(t, "Alice", "Bob")

	for i := 0; i < 20; i++ {
		if err := m.UpdateRelationship("Alice", "Bob", 3, -3, ""); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	rel, err := m.Get("Alice", "Bob")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rel.Trust != 10 || rel.Affection != 0 {
		t.Fatalf("expected trust 10 affection 0, got %.1f/%.1f", rel.Trust, rel.Affection)
	}

	for i := 0; i < 20; i++ {
		if err := m.UpdateRelationship("Alice", "Bob", -5, 5, ""); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	if rel.Trust != 0 || rel.Affection != 10 {
		t.Fatalf("expected trust 0 affection 10, got %.1f/%.1f", rel.Trust, rel.Affection)
	}
}

func TestUpdateIgnoresUnknownRelationship(t *testing.T) {
	m := NewMatrix([]string{"Alice", "Bob"})
	if err := m.UpdateRelationship("Alice", "Bob", 3, 3, "met in the square"); err != nil {
		t.Fatalf("update: %v", err)
	}
	rel, _ := m.Get("Alice", "Bob")
	if rel.Status != StatusUnknown || rel.Trust != 0 || len(rel.History()) != 0 {
		t.Fatalf("unknown relationship should be untouched: %+v", rel)
	}
}

func TestGetMissingPairFails(t *testing.T) {
	m := NewMatrix([]string{"Alice", "Bob"})
	if _, err := m.Get("Alice", "Mallory"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := m.Context("Mallory", "Alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeriveLabelTable(t *testing.T) {
	cases := []struct {
		trust, affection float64
		want             string
	}{
		{8, 8, "beloved friend"},
		{7, 7, "trusted ally"},
		{7, 3, "reliable stranger"},
		{2, 8, "charming liar"},
		{2, 2, "dangerous enemy"},
		{6, 5, "cautious ally"},
		{5, 8, "likeable acquaintance"},
		{5, 5, "complicated person"},
	}
	for _, tc := range cases {
		if got := DeriveLabel(tc.trust, tc.affection); got != tc.want {
			t.Fatalf("DeriveLabel(%.0f, %.0f) = %q, want %q", tc.trust, tc.affection, got, tc.want)
		}
	}
}

func TestAsymmetricFirstMeeting(t *testing.T) {
	m := NewMatrix([]string{"A", "B"})
	if err := m.EstablishFirstMeeting("A", "B", 8, 8, 2, 2); err != nil {
		t.Fatalf("establish: %v", err)
	}

	ab, _ := m.Get("A", "B")
	ba, _ := m.Get("B", "A")
	if ab.Label != "beloved friend" {
		t.Fatalf("A->B label = %q", ab.Label)
	}
	if ba.Label != "dangerous enemy" {
		t.Fatalf("B->A label = %q", ba.Label)
	}

	asymmetries := m.DetectAsymmetries()
	if len(asymmetries) != 1 {
		t.Fatalf("expected 1 asymmetry, got %d", len(asymmetries))
	}
	got := asymmetries[0]
	if got.TrustGap != 6 || got.AffectionGap != 6 {
		t.Fatalf("expected gaps 6/6, got %.1f/%.1f", got.TrustGap, got.AffectionGap)
	}
	if got.AToB.Label != "beloved friend" || got.BToA.Label != "dangerous enemy" {
		t.Fatalf("unexpected directional views: %+v", got)
	}
}

func TestSymmetricMatrixHasNoAsymmetries(t *testing.T) {
	m := newKnownMatrix(t, "A", "B", "C")
	if got := m.DetectAsymmetries(); len(got) != 0 {
		t.Fatalf("expected no asymmetries, got %v", got)
	}
}

func TestDecayConvergesWithoutOvershoot(t *testing.T) {
	m := NewMatrix([]string{"A", "B"})
	if err := m.EstablishFirstMeeting("A", "B", 5.05, 4.95, 9, 1); err != nil {
		t.Fatalf("establish: %v", err)
	}

	// Within one decay step of neutral: a single day must land exactly on 5.
	m.Decay(1)
	ab, _ := m.Get("A", "B")
	if ab.Trust != 5 || ab.Affection != 5 {
		t.Fatalf("expected exactly neutral, got %.3f/%.3f", ab.Trust, ab.Affection)
	}

	// Repeated decay converges to 5 and never oscillates past it.
	ba, _ := m.Get("B", "A")
	for i := 0; i < 100; i++ {
		m.Decay(1)
		if ba.Trust < 5 || ba.Affection > 5 {
			t.Fatalf("decay crossed neutral at step %d: %.3f/%.3f", i, ba.Trust, ba.Affection)
		}
	}
	if ba.Trust != 5 || ba.Affection != 5 {
		t.Fatalf("expected convergence to neutral, got %.3f/%.3f", ba.Trust, ba.Affection)
	}
}

func TestDecayForgetsEventlessRelationships(t *testing.T) {
	m := NewMatrix([]string{"A", "B"})
	if err := m.EstablishFirstMeeting("A", "B", 7, 7, 7, 7); err != nil {
		t.Fatalf("establish: %v", err)
	}
	if err := m.UpdateRelationship("A", "B", 0, 0, "shared a watch shift"); err != nil {
		t.Fatalf("update: %v", err)
	}

	for i := 0; i < 10; i++ {
		m.Decay(1)
	}

	ab, _ := m.Get("A", "B")
	ba, _ := m.Get("B", "A")
	if ab.Status != StatusKnown {
		t.Fatalf("relationship with history should survive, got %v", ab.Status)
	}
	if ba.Status != StatusForgotten {
		t.Fatalf("eventless relationship should be forgotten, got %v", ba.Status)
	}
}

func TestGossipBoundedAndDeduplicated(t *testing.T) {
	m := NewMatrix([]string{"A", "B"})
	for _, g := range []string{"one", "one", "two", "three", "four"} {
		if err := m.AddGossip("A", "B", g); err != nil {
			t.Fatalf("add gossip: %v", err)
		}
	}
	rel, _ := m.Get("A", "B")
	if got := rel.Gossip(); !reflect.DeepEqual(got, []string{"two", "three", "four"}) {
		t.Fatalf("unexpected gossip: %v", got)
	}
}

func TestContextProjections(t *testing.T) {
	m := NewMatrix([]string{"A", "B"})
	if err := m.AddGossip("A", "B", "they say B cheats at dice"); err != nil {
		t.Fatalf("add gossip: %v", err)
	}

	ctx, err := m.Context("A", "B")
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	if ctx.Status != StatusUnknown || ctx.Label != "stranger" {
		t.Fatalf("unexpected unknown projection: %+v", ctx)
	}
	if len(ctx.Gossip) != 1 {
		t.Fatalf("advance gossip should be exposed: %+v", ctx)
	}

	if err := m.EstablishFirstMeeting("A", "B", 8, 8, 2, 2); err != nil {
		t.Fatalf("establish: %v", err)
	}
	for _, mem := range []string{"m1", "m2", "m3", "m4"} {
		if err := m.UpdateRelationship("A", "B", 0, 0, mem); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	ctx, err = m.Context("A", "B")
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	if ctx.Status != StatusKnown || ctx.Label != "beloved friend" {
		t.Fatalf("unexpected known projection: %+v", ctx)
	}
	if !reflect.DeepEqual(ctx.RecentMemories, []string{"m2", "m3", "m4"}) {
		t.Fatalf("expected 3 newest memories, got %v", ctx.RecentMemories)
	}
	if ctx.LastInteraction != "m4" {
		t.Fatalf("unexpected last interaction: %q", ctx.LastInteraction)
	}
}

func TestMemoryHistoryBounded(t *testing.T) {
	m := newKnownMatrix(t, "A", "B")
	for _, mem := range []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7"} {
		if err := m.UpdateRelationship("A", "B", 0, 0, mem); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	rel, _ := m.Get("A", "B")
	if got := rel.History(); !reflect.DeepEqual(got, []string{"m3", "m4", "m5", "m6", "m7"}) {
		t.Fatalf("unexpected history: %v", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	m := NewMatrix([]string{"A", "B", "C"})
	if err := m.EstablishFirstMeeting("A", "B", 8, 8, 2, 2); err != nil {
		t.Fatalf("establish: %v", err)
	}
	if err := m.UpdateRelationship("A", "B", -1, 0.5, "argued about rations"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := m.AddGossip("C", "A", "A hoards supplies"); err != nil {
		t.Fatalf("gossip: %v", err)
	}
	m.Decay(2)

	restored, err := RestoreMatrix(m.Roster(), m.Snapshots())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !reflect.DeepEqual(restored.Snapshots(), m.Snapshots()) {
		t.Fatal("snapshot round trip diverged")
	}
}

func TestRestoreRejectsBadStatus(t *testing.T) {
	snaps := []Snapshot{{From: "A", To: "B", Status: "acquainted"}}
	if _, err := RestoreMatrix([]string{"A", "B"}, snaps); err == nil {
		t.Fatal("expected invalid status to fail")
	}
}

func TestRestoreClampsCorruptScores(t *testing.T) {
	snaps := []Snapshot{{
		From:      "A",
		To:        "B",
		Status:    "known",
		Trust:     15,
		Affection: -2,
		Label:     "trusted ally",
	}}
	m, err := RestoreMatrix([]string{"A", "B"}, snaps)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	rel, err := m.Get("A", "B")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rel.Trust != ScoreMax || rel.Affection != ScoreMin {
		t.Fatalf("out-of-range scores should clamp on restore: %+v", rel)
	}
}
