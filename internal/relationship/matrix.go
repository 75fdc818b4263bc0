package relationship

import (
	"errors"
	"fmt"
	"math"

	"github.com/emberworks/dramatis/internal/ring"
)

// ErrNotFound is returned when a queried pair was never part of the roster.
// An Unknown relationship is a valid state; a missing matrix entry is a
// caller bug.
var ErrNotFound = errors.New("relationship not found")

// Matrix holds every directed relationship for a fixed roster.
type Matrix struct {
	roster []string
	rels   map[string]*Relationship
}

// NewMatrix initializes an Unknown relationship for every ordered pair of
// distinct agents in the roster.
func NewMatrix(roster []string) *Matrix {
	m := &Matrix{
		roster: append([]string(nil), roster...),
		rels:   make(map[string]*Relationship),
	}
	for _, from := range roster {
		for _, to := range roster {
			if from != to {
				m.rels[pairKey(from, to)] = newRelationship(from, to)
			}
		}
	}
	return m
}

func pairKey(from, to string) string {
	return from + "->" + to
}

// Roster returns the agents covered by this matrix.
func (m *Matrix) Roster() []string {
	return append([]string(nil), m.roster...)
}

// Get returns the directed relationship from one agent to another, or
// ErrNotFound when the pair is not in the roster.
func (m *Matrix) Get(from, to string) (*Relationship, error) {
	rel, ok := m.rels[pairKey(from, to)]
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNotFound, from, to)
	}
	return rel, nil
}

// EstablishFirstMeeting transitions both directions of a pair to Known, with
// independently chosen first impressions for each direction.
func (m *Matrix) EstablishFirstMeeting(a, b string, trustAB, affAB, trustBA, affBA float64) error {
	ab, err := m.Get(a, b)
	if err != nil {
		return err
	}
	ba, err := m.Get(b, a)
	if err != nil {
		return err
	}
	ab.establish(trustAB, affAB)
	ba.establish(trustBA, affBA)
	return nil
}

// UpdateRelationship applies score deltas and an optional memory to a Known
// relationship. Updates to Unknown or Forgotten relationships are silently
// skipped; the pair simply has no live scores to move.
func (m *Matrix) UpdateRelationship(from, to string, trustDelta, affectionDelta float64, memory string) error {
	rel, err := m.Get(from, to)
	if err != nil {
		return err
	}
	if rel.Status != StatusKnown {
		return nil
	}
	rel.applyDelta(trustDelta, affectionDelta, memory)
	return nil
}

// AddGossip records something the listener heard about another agent. The
// buffer is bounded and deduplicated, and gossip may arrive before the pair
// has ever met.
func (m *Matrix) AddGossip(listener, about, text string) error {
	rel, err := m.Get(listener, about)
	if err != nil {
		return err
	}
	rel.gossip.PushUnique(text)
	return nil
}

// Decay moves every Known relationship toward neutral by 0.1 per day and
// fades eventless ones once they accumulate ten decay-days.
func (m *Matrix) Decay(daysPassed float64) {
	if daysPassed <= 0 {
		return
	}
	for _, rel := range m.rels {
		if rel.Status == StatusKnown {
			rel.decay(daysPassed)
		}
	}
}

// DirectedView is one direction's scores inside an asymmetry report.
type DirectedView struct {
	Trust     float64
	Affection float64
	Label     string
}

// Asymmetry reports a pair whose two directions have drifted at least three
// points apart on trust or affection.
type Asymmetry struct {
	A            string
	B            string
	AToB         DirectedView
	BToA         DirectedView
	TrustGap     float64
	AffectionGap float64
}

// DetectAsymmetries scans every unordered pair where both directions are
// Known and reports the ones with a trust or affection gap of three or more.
func (m *Matrix) DetectAsymmetries() []Asymmetry {
	var found []Asymmetry
	for i, a := range m.roster {
		for _, b := range m.roster[i+1:] {
			ab, errAB := m.Get(a, b)
			ba, errBA := m.Get(b, a)
			if errAB != nil || errBA != nil {
				continue
			}
			if ab.Status != StatusKnown || ba.Status != StatusKnown {
				continue
			}
			trustGap := math.Abs(ab.Trust - ba.Trust)
			affectionGap := math.Abs(ab.Affection - ba.Affection)
			if trustGap < 3 && affectionGap < 3 {
				continue
			}
			found = append(found, Asymmetry{
				A:            a,
				B:            b,
				AToB:         DirectedView{Trust: ab.Trust, Affection: ab.Affection, Label: ab.Label},
				BToA:         DirectedView{Trust: ba.Trust, Affection: ba.Affection, Label: ba.Label},
				TrustGap:     trustGap,
				AffectionGap: affectionGap,
			})
		}
	}
	return found
}

// Context is the read-only projection handed to prompt assembly.
type Context struct {
	Status          Status
	Trust           float64
	Affection       float64
	Label           string
	LastInteraction string
	RecentMemories  []string
	Gossip          []string
}

// Context projects a directed relationship for the dialogue collaborator.
// Unknown pairs expose only a stranger label plus any gossip heard in
// advance; Known and Forgotten pairs expose scores, label, and recent
// memories.
func (m *Matrix) Context(from, to string) (Context, error) {
	rel, err := m.Get(from, to)
	if err != nil {
		return Context{}, err
	}
	switch rel.Status {
	case StatusUnknown:
		return Context{
			Status: StatusUnknown,
			Label:  "stranger",
			Gossip: rel.gossip.Newest(2),
		}, nil
	case StatusKnown, StatusForgotten:
		return Context{
			Status:          rel.Status,
			Trust:           rel.Trust,
			Affection:       rel.Affection,
			Label:           rel.Label,
			LastInteraction: rel.LastInteraction,
			RecentMemories:  rel.history.Newest(3),
			Gossip:          rel.gossip.Newest(2),
		}, nil
	default:
		return Context{}, fmt.Errorf("invalid relationship status %d", rel.Status)
	}
}

// AllContexts projects every relationship one agent holds toward the rest of
// the roster.
func (m *Matrix) AllContexts(from string) (map[string]Context, error) {
	if !m.inRoster(from) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, from)
	}
	contexts := make(map[string]Context)
	for _, other := range m.roster {
		if other == from {
			continue
		}
		ctx, err := m.Context(from, other)
		if err != nil {
			return nil, err
		}
		contexts[other] = ctx
	}
	return contexts, nil
}

// Summary lists the Known relationships as from -> to -> scores.
func (m *Matrix) Summary() map[string]map[string]DirectedView {
	summary := make(map[string]map[string]DirectedView)
	for _, from := range m.roster {
		for _, to := range m.roster {
			if from == to {
				continue
			}
			rel := m.rels[pairKey(from, to)]
			if rel.Status != StatusKnown {
				continue
			}
			if summary[from] == nil {
				summary[from] = make(map[string]DirectedView)
			}
			summary[from][to] = DirectedView{Trust: rel.Trust, Affection: rel.Affection, Label: rel.Label}
		}
	}
	return summary
}

func (m *Matrix) inRoster(name string) bool {
	for _, agent := range m.roster {
		if agent == name {
			return true
		}
	}
	return false
}

// Snapshot is the persisted form of one directed relationship.
type Snapshot struct {
	From            string   `json:"from"`
	To              string   `json:"to"`
	Status          string   `json:"status"`
	Trust           float64  `json:"trust"`
	Affection       float64  `json:"affection"`
	Label           string   `json:"label"`
	LastInteraction string   `json:"last_interaction"`
	History         []string `json:"history"`
	Gossip          []string `json:"gossip"`
	DecayDays       float64  `json:"decay_days"`
}

// Snapshots exports every directed relationship for persistence.
func (m *Matrix) Snapshots() []Snapshot {
	snaps := make([]Snapshot, 0, len(m.rels))
	for _, from := range m.roster {
		for _, to := range m.roster {
			if from == to {
				continue
			}
			rel := m.rels[pairKey(from, to)]
			snaps = append(snaps, Snapshot{
				From:            rel.From,
				To:              rel.To,
				Status:          rel.Status.String(),
				Trust:           rel.Trust,
				Affection:       rel.Affection,
				Label:           rel.Label,
				LastInteraction: rel.LastInteraction,
				History:         rel.history.Items(),
				Gossip:          rel.gossip.Items(),
				DecayDays:       rel.decayDays,
			})
		}
	}
	return snaps
}

// RestoreMatrix rebuilds a matrix from persisted snapshots. Snapshots for
// pairs outside the roster fail fast instead of being silently dropped.
func RestoreMatrix(roster []string, snaps []Snapshot) (*Matrix, error) {
	m := NewMatrix(roster)
	for _, snap := range snaps {
		rel, err := m.Get(snap.From, snap.To)
		if err != nil {
			return nil, err
		}
		status, err := ParseStatus(snap.Status)
		if err != nil {
			return nil, fmt.Errorf("relationship %s -> %s: %w", snap.From, snap.To, err)
		}
		rel.Status = status
		rel.Trust = clampScore(snap.Trust)
		rel.Affection = clampScore(snap.Affection)
		rel.Label = snap.Label
		rel.LastInteraction = snap.LastInteraction
		rel.history = ring.FromSlice(historyCapacity, snap.History)
		rel.gossip = ring.FromSlice(gossipCapacity, snap.Gossip)
		rel.decayDays = snap.DecayDays
	}
	return m, nil
}
