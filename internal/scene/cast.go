package scene

import (
	"fmt"

	"github.com/emberworks/dramatis/internal/personality"
	"github.com/emberworks/dramatis/internal/relationship"
)

// Cast is the durable simulation state: every agent's personality plus the
// relationship matrix over the full roster. A cast outlives scenes and beats.
type Cast struct {
	roster   []string
	personas map[string]*personality.State
	Matrix   *relationship.Matrix
}

// NewCast builds a cast from personality states. Roster order follows the
// given slice and is the default speaking rotation.
func NewCast(states []*personality.State) (*Cast, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("cast needs at least one agent")
	}
	roster := make([]string, 0, len(states))
	personas := make(map[string]*personality.State, len(states))
	for _, state := range states {
		if state == nil || state.Name == "" {
			return nil, fmt.Errorf("cast member without a name")
		}
		if _, dup := personas[state.Name]; dup {
			return nil, fmt.Errorf("duplicate cast member %q", state.Name)
		}
		roster = append(roster, state.Name)
		personas[state.Name] = state
	}
	return &Cast{
		roster:   roster,
		personas: personas,
		Matrix:   relationship.NewMatrix(roster),
	}, nil
}

// RestoreCast rebuilds a cast from persisted snapshots.
func RestoreCast(personaSnaps []personality.Snapshot, relSnaps []relationship.Snapshot) (*Cast, error) {
	states := make([]*personality.State, 0, len(personaSnaps))
	for _, snap := range personaSnaps {
		states = append(states, personality.Restore(snap))
	}
	cast, err := NewCast(states)
	if err != nil {
		return nil, err
	}
	matrix, err := relationship.RestoreMatrix(cast.roster, relSnaps)
	if err != nil {
		return nil, err
	}
	cast.Matrix = matrix
	return cast, nil
}

// Roster returns the cast member names in rotation order.
func (c *Cast) Roster() []string {
	return append([]string(nil), c.roster...)
}

// Persona returns the personality of a cast member.
func (c *Cast) Persona(name string) (*personality.State, error) {
	state, ok := c.personas[name]
	if !ok {
		return nil, fmt.Errorf("no cast member named %q", name)
	}
	return state, nil
}

// Contains reports whether the name is in the roster.
func (c *Cast) Contains(name string) bool {
	_, ok := c.personas[name]
	return ok
}

// PassTime advances the simulation clock: relationships decay toward neutral
// and emotional intensity cools.
func (c *Cast) PassTime(days float64) {
	if days <= 0 {
		return
	}
	c.Matrix.Decay(days)
	for _, state := range c.personas {
		state.DecayPerDay(int(days))
	}
}

// PersonaSnapshots exports every personality for persistence.
func (c *Cast) PersonaSnapshots() []personality.Snapshot {
	snaps := make([]personality.Snapshot, 0, len(c.roster))
	for _, name := range c.roster {
		snaps = append(snaps, c.personas[name].Snapshot())
	}
	return snaps
}
